package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modguard/internal/audit"
	"modguard/internal/filter"
	"modguard/internal/tracker"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGuildSettingsDefaults(t *testing.T) {
	db := openTestDB(t)

	row, err := db.GetGuildSettings("missing-guild")
	require.NoError(t, err)
	assert.True(t, row.FilterEnabled)
	assert.Equal(t, "delete", row.DefaultAction)
	assert.Equal(t, "[]", row.WordList)
	assert.Empty(t, row.LogChannelID)
}

func TestGuildSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	err := db.UpsertGuildSettings(&GuildSettingsRow{
		GuildID:       "g1",
		FilterEnabled: false,
		LogChannelID:  "c1",
		DefaultAction: "timeout",
		WordList:      `["spam"]`,
	})
	require.NoError(t, err)

	row, err := db.GetGuildSettings("g1")
	require.NoError(t, err)
	assert.False(t, row.FilterEnabled)
	assert.Equal(t, "c1", row.LogChannelID)
	assert.Equal(t, "timeout", row.DefaultAction)
	assert.Equal(t, `["spam"]`, row.WordList)
}

func TestRuleTableCRUD(t *testing.T) {
	db := openTestDB(t)
	table := RuleTable{DB: db}

	rule := &filter.FilterRule{
		GuildID:          "g1",
		Name:             "no-invites",
		Pattern:          "discord.gg/",
		MatchType:        filter.MatchPartial,
		Action:           filter.ActionDelete,
		Severity:         3,
		CheckObfuscation: true,
		Enabled:          true,
		ExemptRoleIDs:    map[string]struct{}{"r1": {}},
	}
	require.NoError(t, table.InsertRule(rule))
	assert.NotZero(t, rule.ID)

	rules, err := table.Rules("g1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "no-invites", rules[0].Name)
	assert.Equal(t, filter.MatchPartial, rules[0].MatchType)
	assert.Contains(t, rules[0].ExemptRoleIDs, "r1")

	rule.Severity = 5
	require.NoError(t, table.UpdateRule(rule))
	rules, err = table.Rules("g1")
	require.NoError(t, err)
	assert.Equal(t, 5, rules[0].Severity)

	require.NoError(t, table.DeleteRule("g1", "no-invites"))
	rules, err = table.Rules("g1")
	require.NoError(t, err)
	assert.Empty(t, rules)

	assert.ErrorIs(t, table.DeleteRule("g1", "no-invites"), sql.ErrNoRows)
}

func TestWordListRules(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SetWordList("g1", []string{"badword", `/discord\.gg\/[a-z0-9]+/`}))

	rules, err := WordList{DB: db}.Rules("g1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.Empty(t, r.Action, "word-list entries defer to the guild default action")
		assert.True(t, r.CheckObfuscation)
		assert.True(t, r.Enabled)
	}

	word := rules[0]
	assert.Equal(t, "badword", word.Name)
	assert.Equal(t, "badword", word.Pattern)
	assert.Equal(t, filter.MatchExact, word.MatchType)

	// The /pattern/ form becomes a regex rule named after the full entry.
	re := rules[1]
	assert.Equal(t, `/discord\.gg\/[a-z0-9]+/`, re.Name)
	assert.Equal(t, `discord\.gg\/[a-z0-9]+`, re.Pattern)
	assert.Equal(t, filter.MatchRegex, re.MatchType)
}

func TestSetWordListRejectsInvalidRegex(t *testing.T) {
	db := openTestDB(t)

	err := db.SetWordList("g1", []string{"fine", "/[unclosed/"})
	require.Error(t, err)

	// Nothing was written.
	row, err := db.GetGuildSettings("g1")
	require.NoError(t, err)
	assert.Equal(t, "[]", row.WordList)
}

func TestWhitelistBlanketAndScoped(t *testing.T) {
	db := openTestDB(t)
	wl := Whitelist{DB: db}

	require.NoError(t, db.AddWhitelist("g1", "u1", "user", ""))
	require.NoError(t, db.AddWhitelist("g1", "u2", "user", tracker.ActionBanAdd.String()))

	// Blanket entry exempts every action.
	assert.True(t, wl.IsWhitelisted("g1", "u1", tracker.ActionBanAdd))
	assert.True(t, wl.IsWhitelisted("g1", "u1", tracker.ActionChannelDelete))

	// Scoped entry exempts only its own action.
	assert.True(t, wl.IsWhitelisted("g1", "u2", tracker.ActionBanAdd))
	assert.False(t, wl.IsWhitelisted("g1", "u2", tracker.ActionChannelDelete))

	assert.False(t, wl.IsWhitelisted("g2", "u1", tracker.ActionBanAdd))

	require.NoError(t, db.RemoveWhitelist("g1", "u1", ""))
	assert.False(t, wl.IsWhitelisted("g1", "u1", tracker.ActionBanAdd))
}

func TestLimitsOverrideAndFallback(t *testing.T) {
	db := openTestDB(t)
	defaults := tracker.StaticLimits{
		tracker.ActionBanAdd: {Max: 3, Window: 15 * time.Second},
	}
	limits := Limits{DB: db, Defaults: defaults}

	got := limits.Limit("g1", tracker.ActionBanAdd)
	assert.Equal(t, 3, got.Max)
	assert.Equal(t, 15*time.Second, got.Window)

	require.NoError(t, db.UpsertActionLimit(&ActionLimit{
		GuildID:    "g1",
		Action:     tracker.ActionBanAdd.String(),
		MaxActions: 1,
		TimeWindow: 60,
	}))

	got = limits.Limit("g1", tracker.ActionBanAdd)
	assert.Equal(t, 1, got.Max)
	assert.Equal(t, time.Minute, got.Window)

	// Another guild still sees the defaults.
	got = limits.Limit("g2", tracker.ActionBanAdd)
	assert.Equal(t, 3, got.Max)
}

func TestMitigatedUsers(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.AddMitigatedUser("g1", "u1", "mass channel deletion", "ban"))
	assert.True(t, db.IsMitigatedUser("g1", "u1"))
	assert.False(t, db.IsMitigatedUser("g1", "u2"))

	rec, err := db.GetMitigatedUser("g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "mass channel deletion", rec.Reason)
	assert.Equal(t, "ban", rec.ActionTaken)

	require.NoError(t, db.RemoveMitigatedUser("g1", "u1"))
	assert.False(t, db.IsMitigatedUser("g1", "u1"))
}

func TestViolationsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	rec := &audit.Record{
		ID:             uuid.NewString(),
		GuildID:        "g1",
		RuleName:       "no-invites",
		ActorID:        "u1",
		ChannelID:      "c1",
		ContentHash:    "deadbeefdeadbeef",
		MatchedPattern: "discord.gg/",
		Confidence:     "high",
		ActionTaken:    "delete",
		Timestamp:      time.Now(),
	}
	require.NoError(t, db.InsertViolation(rec))

	count, err := db.CountViolations("g1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := db.GetActorViolations("g1", "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, rec.ContentHash, got[0].ContentHash)
	assert.Equal(t, rec.Timestamp.Unix(), got[0].Timestamp.Unix())
}
