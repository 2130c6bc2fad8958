package database

import (
	"time"

	"modguard/internal/tracker"
)

// AddWhitelist exempts a user or role from abuse tracking. An empty action
// means a blanket exemption across all tracked actions.
func (d *Database) AddWhitelist(guildID, targetID, targetType, action string) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO whitelist (guild_id, target_id, target_type, action, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		guildID, targetID, targetType, action, time.Now().Unix(),
	)
	return err
}

// RemoveWhitelist removes a whitelist entry. An empty action removes only the
// blanket entry; per-action entries are addressed individually.
func (d *Database) RemoveWhitelist(guildID, targetID, action string) error {
	_, err := d.db.Exec(
		`DELETE FROM whitelist WHERE guild_id = ? AND target_id = ? AND action = ?`,
		guildID, targetID, action,
	)
	return err
}

// GetWhitelist retrieves all whitelist entries for a guild.
func (d *Database) GetWhitelist(guildID string) ([]*WhitelistEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, guild_id, target_id, target_type, action, created_at
		 FROM whitelist WHERE guild_id = ? ORDER BY created_at`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*WhitelistEntry
	for rows.Next() {
		var entry WhitelistEntry
		if err := rows.Scan(&entry.ID, &entry.GuildID, &entry.TargetID, &entry.TargetType, &entry.Action, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Whitelist adapts whitelist rows to the guard's exemption check.
type Whitelist struct {
	DB *Database
}

// IsWhitelisted reports whether the target holds a blanket or per-action
// exemption. Query errors read as not-whitelisted; the guard degrades to
// tracking rather than silently exempting on a broken database.
func (w Whitelist) IsWhitelisted(guildID, targetID string, action tracker.ActionType) bool {
	var count int
	err := w.DB.db.QueryRow(
		`SELECT COUNT(*) FROM whitelist WHERE guild_id = ? AND target_id = ? AND (action = ? OR action = '')`,
		guildID, targetID, action.String(),
	).Scan(&count)
	return err == nil && count > 0
}
