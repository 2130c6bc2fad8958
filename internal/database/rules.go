package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"modguard/internal/filter"
)

// RuleTable adapts the filter_rules table to the rule source and writer
// interfaces consumed by the filter store.
type RuleTable struct {
	DB *Database
}

// Rules returns every rule stored for a guild.
func (t RuleTable) Rules(guildID string) ([]filter.FilterRule, error) {
	rows, err := t.DB.db.Query(
		`SELECT id, guild_id, name, pattern, match_type, action, severity, case_sensitive,
		        check_obfuscation, action_duration, warn_message, enabled, exempt_role_ids, exempt_channel_ids
		 FROM filter_rules WHERE guild_id = ? ORDER BY name`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []filter.FilterRule
	for rows.Next() {
		var (
			rule                       filter.FilterRule
			matchType, action          string
			caseSensitive, obfuscation int
			enabled                    int
			exemptRoles, exemptChans   string
		)
		if err := rows.Scan(&rule.ID, &rule.GuildID, &rule.Name, &rule.Pattern, &matchType, &action,
			&rule.Severity, &caseSensitive, &obfuscation, &rule.ActionDuration, &rule.WarnMessage,
			&enabled, &exemptRoles, &exemptChans); err != nil {
			return nil, err
		}

		rule.MatchType = filter.MatchType(matchType)
		rule.Action = filter.Action(action)
		rule.CaseSensitive = caseSensitive != 0
		rule.CheckObfuscation = obfuscation != 0
		rule.Enabled = enabled != 0
		if rule.ExemptRoleIDs, err = decodeIDSet(exemptRoles); err != nil {
			return nil, fmt.Errorf("rule %q exempt roles: %w", rule.Name, err)
		}
		if rule.ExemptChannelIDs, err = decodeIDSet(exemptChans); err != nil {
			return nil, fmt.Errorf("rule %q exempt channels: %w", rule.Name, err)
		}

		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// InsertRule persists a new rule. The (guild_id, name) pair is unique, so a
// duplicate name surfaces as a constraint error.
func (t RuleTable) InsertRule(rule *filter.FilterRule) error {
	now := time.Now().Unix()
	res, err := t.DB.db.Exec(
		`INSERT INTO filter_rules (guild_id, name, pattern, match_type, action, severity, case_sensitive,
		        check_obfuscation, action_duration, warn_message, enabled, exempt_role_ids, exempt_channel_ids,
		        created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.GuildID, rule.Name, rule.Pattern, string(rule.MatchType), string(rule.Action), rule.Severity,
		boolInt(rule.CaseSensitive), boolInt(rule.CheckObfuscation), rule.ActionDuration, rule.WarnMessage,
		boolInt(rule.Enabled), encodeIDSet(rule.ExemptRoleIDs), encodeIDSet(rule.ExemptChannelIDs), now, now,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rule.ID = id
	}
	return nil
}

// UpdateRule rewrites a rule addressed by guild and name.
func (t RuleTable) UpdateRule(rule *filter.FilterRule) error {
	res, err := t.DB.db.Exec(
		`UPDATE filter_rules SET pattern = ?, match_type = ?, action = ?, severity = ?, case_sensitive = ?,
		        check_obfuscation = ?, action_duration = ?, warn_message = ?, enabled = ?,
		        exempt_role_ids = ?, exempt_channel_ids = ?, updated_at = ?
		 WHERE guild_id = ? AND name = ?`,
		rule.Pattern, string(rule.MatchType), string(rule.Action), rule.Severity,
		boolInt(rule.CaseSensitive), boolInt(rule.CheckObfuscation), rule.ActionDuration, rule.WarnMessage,
		boolInt(rule.Enabled), encodeIDSet(rule.ExemptRoleIDs), encodeIDSet(rule.ExemptChannelIDs),
		time.Now().Unix(), rule.GuildID, rule.Name,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteRule removes a rule by guild and name.
func (t RuleTable) DeleteRule(guildID, name string) error {
	res, err := t.DB.db.Exec(
		`DELETE FROM filter_rules WHERE guild_id = ? AND name = ?`,
		guildID, name,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// WordList adapts the word/regex list stored on guild settings to the rule
// source interface. Plain entries become exact-match rules; entries written
// as /pattern/ become regex rules. Either way the rule is named after the
// full entry, so a structured rule with the same name shadows it on merge.
type WordList struct {
	DB *Database
}

func (w WordList) Rules(guildID string) ([]filter.FilterRule, error) {
	var raw string
	err := w.DB.db.QueryRow(
		`SELECT word_list FROM guild_settings WHERE guild_id = ?`, guildID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var words []string
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &words); err != nil {
			return nil, fmt.Errorf("word list for guild %s: %w", guildID, err)
		}
	}

	rules := make([]filter.FilterRule, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		rule := filter.FilterRule{
			GuildID:   guildID,
			Name:      word,
			Pattern:   word,
			MatchType: filter.MatchExact,
			// Empty action defers to the guild's configured default.
			Action:           "",
			CheckObfuscation: true,
			Enabled:          true,
		}
		if pattern, ok := regexListEntry(word); ok {
			rule.Pattern = pattern
			rule.MatchType = filter.MatchRegex
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// regexListEntry reports whether a word-list entry uses the /pattern/ regex
// form, returning the inner pattern.
func regexListEntry(entry string) (string, bool) {
	if len(entry) > 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
		return entry[1 : len(entry)-1], true
	}
	return "", false
}

func encodeIDSet(set map[string]struct{}) string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeIDSet(raw string) (map[string]struct{}, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
