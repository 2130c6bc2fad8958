package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"modguard/internal/enforcer"
	"modguard/internal/filter"
	"modguard/internal/logging"
)

// GetGuildSettings retrieves the settings row for a guild, or defaults when
// none has been written yet.
func (d *Database) GetGuildSettings(guildID string) (*GuildSettingsRow, error) {
	var (
		row                     GuildSettingsRow
		filterEnabled, notifyOn int
	)
	err := d.db.QueryRow(
		`SELECT guild_id, filter_enabled, log_channel_id, default_action, notify_on_delete, word_list, created_at, updated_at
		 FROM guild_settings WHERE guild_id = ?`,
		guildID,
	).Scan(&row.GuildID, &filterEnabled, &row.LogChannelID, &row.DefaultAction, &notifyOn, &row.WordList, &row.CreatedAt, &row.UpdatedAt)

	if err == sql.ErrNoRows {
		now := time.Now().Unix()
		return &GuildSettingsRow{
			GuildID:       guildID,
			FilterEnabled: true,
			DefaultAction: string(filter.ActionDelete),
			WordList:      "[]",
			CreatedAt:     now,
			UpdatedAt:     now,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	row.FilterEnabled = filterEnabled != 0
	row.NotifyOnDelete = notifyOn != 0
	return &row, nil
}

// UpsertGuildSettings creates or updates the settings row.
func (d *Database) UpsertGuildSettings(row *GuildSettingsRow) error {
	now := time.Now().Unix()
	row.UpdatedAt = now
	if row.CreatedAt == 0 {
		row.CreatedAt = now
	}
	if row.WordList == "" {
		row.WordList = "[]"
	}

	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO guild_settings (guild_id, filter_enabled, log_channel_id, default_action, notify_on_delete, word_list, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.GuildID, boolInt(row.FilterEnabled), row.LogChannelID, row.DefaultAction,
		boolInt(row.NotifyOnDelete), row.WordList, row.CreatedAt, row.UpdatedAt,
	)
	return err
}

// SetWordList replaces the guild's word/regex list. Regex entries (the
// /pattern/ form) are validated before anything is written.
func (d *Database) SetWordList(guildID string, words []string) error {
	for _, word := range words {
		if pattern, ok := regexListEntry(word); ok {
			if err := filter.ValidateRegex(pattern); err != nil {
				return fmt.Errorf("word list entry %q: %w", word, err)
			}
		}
	}

	row, err := d.GetGuildSettings(guildID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("encode word list: %w", err)
	}
	row.WordList = string(data)
	return d.UpsertGuildSettings(row)
}

// Settings adapts guild_settings rows to the enforcement coordinator's
// settings source and the reporter's log channel lookup.
type Settings struct {
	DB *Database
}

func (s Settings) GuildSettings(guildID string) (*enforcer.GuildSettings, error) {
	row, err := s.DB.GetGuildSettings(guildID)
	if err != nil {
		return nil, err
	}

	action := filter.Action(row.DefaultAction)
	if !action.Valid() {
		action = filter.ActionDelete
	}

	return &enforcer.GuildSettings{
		FilterEnabled:  row.FilterEnabled,
		LogChannelID:   row.LogChannelID,
		DefaultAction:  action,
		NotifyOnDelete: row.NotifyOnDelete,
	}, nil
}

// LogChannel returns the guild's configured log channel, empty when unset or
// unreadable.
func (s Settings) LogChannel(guildID string) string {
	row, err := s.DB.GetGuildSettings(guildID)
	if err != nil {
		logging.Warn("Log channel lookup failed for guild %s: %v", guildID, err)
		return ""
	}
	return row.LogChannelID
}
