package database

import (
	"database/sql"
	"time"
)

// AddMitigatedUser records an actor the bot has acted against, replacing any
// previous record for the same actor.
func (d *Database) AddMitigatedUser(guildID, userID, reason, actionTaken string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO mitigated_users (guild_id, user_id, reason, action_taken, mitigated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		guildID, userID, reason, actionTaken, time.Now().Unix(),
	)
	return err
}

// IsMitigatedUser reports whether the actor has an active mitigation record.
func (d *Database) IsMitigatedUser(guildID, userID string) bool {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM mitigated_users WHERE guild_id = ? AND user_id = ?`,
		guildID, userID,
	).Scan(&count)
	return err == nil && count > 0
}

// GetMitigatedUser retrieves a single mitigation record.
func (d *Database) GetMitigatedUser(guildID, userID string) (*MitigatedUser, error) {
	var user MitigatedUser
	err := d.db.QueryRow(
		`SELECT id, guild_id, user_id, reason, action_taken, mitigated_at
		 FROM mitigated_users WHERE guild_id = ? AND user_id = ?`,
		guildID, userID,
	).Scan(&user.ID, &user.GuildID, &user.UserID, &user.Reason, &user.ActionTaken, &user.MitigatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RemoveMitigatedUser clears the record, used when a moderator reverses the
// mitigation.
func (d *Database) RemoveMitigatedUser(guildID, userID string) error {
	_, err := d.db.Exec(
		`DELETE FROM mitigated_users WHERE guild_id = ? AND user_id = ?`,
		guildID, userID,
	)
	return err
}

// GetMitigatedUsers retrieves all mitigation records for a guild, newest
// first.
func (d *Database) GetMitigatedUsers(guildID string) ([]*MitigatedUser, error) {
	rows, err := d.db.Query(
		`SELECT id, guild_id, user_id, reason, action_taken, mitigated_at
		 FROM mitigated_users WHERE guild_id = ? ORDER BY mitigated_at DESC`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*MitigatedUser
	for rows.Next() {
		var user MitigatedUser
		if err := rows.Scan(&user.ID, &user.GuildID, &user.UserID, &user.Reason, &user.ActionTaken, &user.MitigatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
