package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"modguard/internal/tracker"
)

type fakeAudit struct {
	entries map[int]*AuditEntry
}

func (f *fakeAudit) LatestEntry(_ string, actionCode int) (*AuditEntry, error) {
	return f.entries[actionCode], nil
}

type fakeWhitelist struct {
	ids map[string]struct{}
}

func (f *fakeWhitelist) IsWhitelisted(_, targetID string, _ tracker.ActionType) bool {
	_, ok := f.ids[targetID]
	return ok
}

type mitigationRecorder struct {
	calls []Summary
}

func (m *mitigationRecorder) fn(_, _ string, summary Summary) {
	m.calls = append(m.calls, summary)
}

func newTestCoordinator(entries map[int]*AuditEntry, whitelisted ...string) (*Coordinator, *mitigationRecorder, *time.Time) {
	limits := tracker.StaticLimits{}
	for _, action := range tracker.AllActionTypes {
		limits[action] = tracker.Limit{Max: 3, Window: 10 * time.Second}
	}
	tr := tracker.New(limits)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.SetClock(func() time.Time { return now })

	wl := &fakeWhitelist{ids: make(map[string]struct{})}
	for _, id := range whitelisted {
		wl.ids[id] = struct{}{}
	}

	rec := &mitigationRecorder{}
	c := NewCoordinator(tr, &fakeAudit{entries: entries}, wl, rec.fn, "bot-id")
	c.SetClock(func() time.Time { return now })
	return c, rec, &now
}

func freshEntry(actorID string, at time.Time) *AuditEntry {
	return &AuditEntry{ActorID: actorID, CreatedAt: at}
}

func TestHandleEventThreshold(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	audit := map[int]*AuditEntry{auditBanAdd: freshEntry("attacker", base)}
	c, rec, now := newTestCoordinator(audit)

	for i := 0; i < 3; i++ {
		audit[auditBanAdd].CreatedAt = *now
		c.HandleEvent("g1", tracker.ActionBanAdd)
		*now = now.Add(time.Second)
	}

	assert.Len(t, rec.calls, 1, "mitigation fires exactly once per crossing")
	assert.Equal(t, tracker.ActionBanAdd, rec.calls[0].Action)
	assert.Equal(t, 3, rec.calls[0].Count)
}

func TestHandleEventResetsAfterMitigation(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	audit := map[int]*AuditEntry{auditChannelDelete: freshEntry("attacker", base)}
	c, rec, now := newTestCoordinator(audit)

	for i := 0; i < 6; i++ {
		audit[auditChannelDelete].CreatedAt = *now
		c.HandleEvent("g1", tracker.ActionChannelDelete)
		*now = now.Add(time.Second)
	}

	// Counter resets after each mitigation, so six events in a row cross twice.
	assert.Len(t, rec.calls, 2)
}

func TestOwnActionsNeverTracked(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	audit := map[int]*AuditEntry{auditBanAdd: freshEntry("bot-id", base)}
	c, rec, _ := newTestCoordinator(audit)

	for i := 0; i < 10; i++ {
		c.HandleEvent("g1", tracker.ActionBanAdd)
	}

	assert.Empty(t, rec.calls)
}

func TestStaleEntriesDiscarded(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("default window is five seconds", func(t *testing.T) {
		audit := map[int]*AuditEntry{auditBanAdd: freshEntry("attacker", base.Add(-6*time.Second))}
		c, rec, _ := newTestCoordinator(audit)

		for i := 0; i < 5; i++ {
			c.HandleEvent("g1", tracker.ActionBanAdd)
		}
		assert.Empty(t, rec.calls)
	})

	t.Run("bot additions get ten seconds", func(t *testing.T) {
		audit := map[int]*AuditEntry{auditBotAdd: freshEntry("attacker", base.Add(-6*time.Second))}
		c, rec, _ := newTestCoordinator(audit)

		for i := 0; i < 3; i++ {
			c.HandleEvent("g1", tracker.ActionBotAdd)
		}
		assert.Len(t, rec.calls, 1, "six-second-old bot-add entries are still live")
	})
}

func TestWhitelistedActorBypasses(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	audit := map[int]*AuditEntry{auditBanAdd: freshEntry("trusted", base)}
	c, rec, now := newTestCoordinator(audit, "trusted")

	for i := 0; i < 5; i++ {
		audit[auditBanAdd].CreatedAt = *now
		c.HandleEvent("g1", tracker.ActionBanAdd)
	}

	assert.Empty(t, rec.calls)
}

func TestMissingAuditEntryIgnored(t *testing.T) {
	c, rec, _ := newTestCoordinator(map[int]*AuditEntry{})
	c.HandleEvent("g1", tracker.ActionBanAdd)
	assert.Empty(t, rec.calls)
}

func TestHandleRoleUpdate(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("dangerous grant tracked", func(t *testing.T) {
		audit := map[int]*AuditEntry{auditRoleUpdate: freshEntry("attacker", base)}
		c, rec, now := newTestCoordinator(audit)

		for i := 0; i < 3; i++ {
			audit[auditRoleUpdate].CreatedAt = *now
			c.HandleRoleUpdate("g1", 0, PermAdministrator)
			*now = now.Add(time.Second)
		}

		assert.Len(t, rec.calls, 1)
		assert.Contains(t, rec.calls[0].Reason, "Administrator")
	})

	t.Run("permission removal never tracked", func(t *testing.T) {
		audit := map[int]*AuditEntry{auditRoleUpdate: freshEntry("attacker", base)}
		c, rec, _ := newTestCoordinator(audit)

		for i := 0; i < 10; i++ {
			c.HandleRoleUpdate("g1", PermAdministrator|PermBanMembers, PermBanMembers)
		}
		assert.Empty(t, rec.calls)
	})

	t.Run("non-dangerous grant never tracked", func(t *testing.T) {
		audit := map[int]*AuditEntry{auditRoleUpdate: freshEntry("attacker", base)}
		c, rec, _ := newTestCoordinator(audit)

		// Bit 6 is AddReactions: harmless.
		for i := 0; i < 10; i++ {
			c.HandleRoleUpdate("g1", 0, 1<<6)
		}
		assert.Empty(t, rec.calls)
	})
}

func TestPermDiff(t *testing.T) {
	t.Run("added bits", func(t *testing.T) {
		assert.Equal(t, PermBanMembers, AddedPermissions(PermAdministrator, PermAdministrator|PermBanMembers))
	})

	t.Run("removed bits", func(t *testing.T) {
		assert.Equal(t, PermAdministrator, RemovedPermissions(PermAdministrator|PermBanMembers, PermBanMembers))
	})

	t.Run("dangerous filter", func(t *testing.T) {
		assert.Zero(t, DangerousAdded(0, 1<<6))
		assert.Equal(t, PermManageWebhooks, DangerousAdded(0, PermManageWebhooks|1<<6))
	})

	t.Run("names rendered", func(t *testing.T) {
		names := PermissionNames(PermAdministrator | PermKickMembers)
		assert.Contains(t, names, "Administrator")
		assert.Contains(t, names, "KickMembers")
	})
}
