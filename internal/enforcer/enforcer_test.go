package enforcer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modguard/internal/audit"
	"modguard/internal/executor"
	"modguard/internal/filter"
)

type fakeExecutor struct {
	deletes  []executor.Ref
	timeouts []executor.Ref
	kicks    []executor.Ref
	bans     []executor.Ref
	notifies []string
	fail     error
}

func (f *fakeExecutor) DeleteMessage(ref executor.Ref) error {
	f.deletes = append(f.deletes, ref)
	return f.fail
}

func (f *fakeExecutor) TimeoutActor(ref executor.Ref, _ time.Duration, _ string) error {
	f.timeouts = append(f.timeouts, ref)
	return f.fail
}

func (f *fakeExecutor) KickActor(ref executor.Ref, _ string) error {
	f.kicks = append(f.kicks, ref)
	return f.fail
}

func (f *fakeExecutor) BanActor(ref executor.Ref, _ string) error {
	f.bans = append(f.bans, ref)
	return f.fail
}

func (f *fakeExecutor) StripRoles(ref executor.Ref, _ string) error {
	return f.fail
}

func (f *fakeExecutor) NotifyActor(ref executor.Ref, content string) error {
	f.notifies = append(f.notifies, content)
	return f.fail
}

type fakeViolationStore struct {
	records []*audit.Record
}

func (f *fakeViolationStore) InsertViolation(rec *audit.Record) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeSettings struct {
	settings GuildSettings
}

func (f *fakeSettings) GuildSettings(string) (*GuildSettings, error) {
	s := f.settings
	return &s, nil
}

type staticRules struct {
	rules []filter.FilterRule
}

func (s *staticRules) Rules(string) ([]filter.FilterRule, error) {
	return s.rules, nil
}

type noopWriter struct{}

func (noopWriter) InsertRule(*filter.FilterRule) error { return nil }
func (noopWriter) UpdateRule(*filter.FilterRule) error { return nil }
func (noopWriter) DeleteRule(string, string) error { return nil }

func testRule(name, pattern string, action filter.Action, severity int) filter.FilterRule {
	return filter.FilterRule{
		ID:        1,
		GuildID:   "g1",
		Name:      name,
		Pattern:   pattern,
		MatchType: filter.MatchPartial,
		Action:    action,
		Severity:  severity,
		Enabled:   true,
	}
}

func testCoordinator(rules []filter.FilterRule, settings GuildSettings) (*Coordinator, *fakeExecutor, *fakeViolationStore, *Cooldown) {
	exec := &fakeExecutor{}
	store := &fakeViolationStore{}
	ruleStore := filter.NewStore(&staticRules{rules: rules}, nil, noopWriter{}, time.Minute)
	cooldown := NewCooldown(5 * time.Second)

	c := NewCoordinator(
		ruleStore,
		filter.NewCompiler(),
		&fakeSettings{settings: settings},
		exec,
		audit.NewSink(store, nil),
		cooldown,
	)
	return c, exec, store, cooldown
}

func enabledSettings() GuildSettings {
	return GuildSettings{FilterEnabled: true, DefaultAction: filter.ActionDelete}
}

func message(content string) *Message {
	return &Message{
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: "m1",
		AuthorID:  "u1",
		Content:   content,
	}
}

func TestHandleMessageEnforces(t *testing.T) {
	rules := []filter.FilterRule{testRule("no-bad", "bad", filter.ActionDelete, 50)}
	c, exec, store, _ := testCoordinator(rules, enabledSettings())

	c.HandleMessage(message("this is bad"))

	assert.Len(t, exec.deletes, 1)
	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, "no-bad", rec.RuleName)
	assert.Equal(t, "u1", rec.ActorID)
	assert.Equal(t, string(filter.ActionDelete), rec.ActionTaken)
}

func TestHandleMessageBypasses(t *testing.T) {
	rules := []filter.FilterRule{testRule("no-bad", "bad", filter.ActionDelete, 50)}

	t.Run("bot author ignored", func(t *testing.T) {
		c, exec, store, _ := testCoordinator(rules, enabledSettings())
		msg := message("bad")
		msg.AuthorIsBot = true
		c.HandleMessage(msg)
		assert.Empty(t, exec.deletes)
		assert.Empty(t, store.records)
	})

	t.Run("no guild context ignored", func(t *testing.T) {
		c, exec, _, _ := testCoordinator(rules, enabledSettings())
		msg := message("bad")
		msg.GuildID = ""
		c.HandleMessage(msg)
		assert.Empty(t, exec.deletes)
	})

	t.Run("moderator bypasses", func(t *testing.T) {
		c, exec, _, _ := testCoordinator(rules, enabledSettings())
		msg := message("bad")
		msg.AuthorIsModerator = true
		c.HandleMessage(msg)
		assert.Empty(t, exec.deletes)
	})

	t.Run("filter disabled", func(t *testing.T) {
		c, exec, _, _ := testCoordinator(rules, GuildSettings{FilterEnabled: false})
		c.HandleMessage(message("bad"))
		assert.Empty(t, exec.deletes)
	})

	t.Run("clean message untouched", func(t *testing.T) {
		c, exec, store, _ := testCoordinator(rules, enabledSettings())
		c.HandleMessage(message("perfectly fine"))
		assert.Empty(t, exec.deletes)
		assert.Empty(t, store.records)
	})
}

func TestCooldownSuppression(t *testing.T) {
	rules := []filter.FilterRule{testRule("no-bad", "bad", filter.ActionTimeout, 50)}
	c, exec, store, cooldown := testCoordinator(rules, enabledSettings())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cooldown.SetClock(func() time.Time { return now })

	c.HandleMessage(message("bad one"))
	now = now.Add(time.Second)
	c.HandleMessage(message("bad two"))

	// One full enforcement, one delete-only suppression.
	assert.Len(t, exec.timeouts, 1, "escalation runs once")
	assert.Len(t, exec.deletes, 2, "deletion still happens during cooldown")
	assert.Len(t, store.records, 1, "suppressed violation is not recorded")

	// Past the window, enforcement resumes in full.
	now = now.Add(10 * time.Second)
	c.HandleMessage(message("bad three"))
	assert.Len(t, exec.timeouts, 2)
	assert.Len(t, store.records, 2)
}

func TestExemptionsAreAPreFilter(t *testing.T) {
	exemptRule := testRule("exempted", "bad", filter.ActionBan, 90)
	exemptRule.ExemptChannelIDs = map[string]struct{}{"c1": {}}
	fallback := testRule("fallback", "bad", filter.ActionDelete, 10)

	c, exec, store, _ := testCoordinator([]filter.FilterRule{exemptRule, fallback}, enabledSettings())
	c.HandleMessage(message("bad"))

	// The higher-severity rule is exempt in this channel, so the lower one wins.
	assert.Empty(t, exec.bans)
	assert.Len(t, exec.deletes, 1)
	require.Len(t, store.records, 1)
	assert.Equal(t, "fallback", store.records[0].RuleName)
}

func TestRoleExemption(t *testing.T) {
	exemptRule := testRule("exempted", "bad", filter.ActionDelete, 50)
	exemptRule.ExemptRoleIDs = map[string]struct{}{"trusted-role": {}}

	c, exec, _, _ := testCoordinator([]filter.FilterRule{exemptRule}, enabledSettings())
	msg := message("bad")
	msg.AuthorRoles = []string{"trusted-role"}
	c.HandleMessage(msg)

	assert.Empty(t, exec.deletes)
}

func TestActionDispatch(t *testing.T) {
	t.Run("kick", func(t *testing.T) {
		rules := []filter.FilterRule{testRule("r", "bad", filter.ActionKick, 50)}
		c, exec, _, _ := testCoordinator(rules, enabledSettings())
		c.HandleMessage(message("bad"))
		assert.Len(t, exec.kicks, 1)
		assert.Len(t, exec.deletes, 1)
	})

	t.Run("ban", func(t *testing.T) {
		rules := []filter.FilterRule{testRule("r", "bad", filter.ActionBan, 50)}
		c, exec, _, _ := testCoordinator(rules, enabledSettings())
		c.HandleMessage(message("bad"))
		assert.Len(t, exec.bans, 1)
	})

	t.Run("log_only leaves the message", func(t *testing.T) {
		rules := []filter.FilterRule{testRule("r", "bad", filter.ActionLogOnly, 50)}
		c, exec, store, _ := testCoordinator(rules, enabledSettings())
		c.HandleMessage(message("bad"))
		assert.Empty(t, exec.deletes)
		assert.Len(t, store.records, 1, "log_only still records the violation")
	})

	t.Run("warn notifies the actor", func(t *testing.T) {
		rule := testRule("r", "bad", filter.ActionWarn, 50)
		rule.WarnMessage = "watch your language"
		c, exec, _, _ := testCoordinator([]filter.FilterRule{rule}, enabledSettings())
		c.HandleMessage(message("bad"))
		require.NotEmpty(t, exec.notifies)
		assert.Equal(t, "watch your language", exec.notifies[0])
	})
}

func TestExecutorFailuresAreSwallowed(t *testing.T) {
	rules := []filter.FilterRule{testRule("r", "bad", filter.ActionBan, 50)}
	c, exec, store, _ := testCoordinator(rules, enabledSettings())
	exec.fail = assert.AnError

	assert.NotPanics(t, func() {
		c.HandleMessage(message("bad"))
	})
	assert.Len(t, store.records, 1, "record is written even when the action fails")
}

func TestNoRawContentPersisted(t *testing.T) {
	rules := []filter.FilterRule{testRule("r", "badword", filter.ActionDelete, 50)}
	c, _, store, _ := testCoordinator(rules, enabledSettings())

	raw := "a very badword message with secrets"
	c.HandleMessage(message(raw))

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.NotEqual(t, raw, rec.ContentHash)
	assert.NotContains(t, rec.ContentHash, "secrets")
	assert.NotContains(t, rec.MatchedPattern, "secrets")
	assert.Equal(t, filter.ContentHash(raw), rec.ContentHash)
}
