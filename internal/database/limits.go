package database

import (
	"database/sql"
	"time"

	"modguard/internal/logging"
	"modguard/internal/tracker"
)

// UpsertActionLimit creates or updates a per-guild threshold override.
func (d *Database) UpsertActionLimit(limit *ActionLimit) error {
	now := time.Now().Unix()
	limit.UpdatedAt = now
	if limit.CreatedAt == 0 {
		limit.CreatedAt = now
	}

	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO action_limits (guild_id, action, max_actions, time_window, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		limit.GuildID, limit.Action, limit.MaxActions, limit.TimeWindow, limit.CreatedAt, limit.UpdatedAt,
	)
	return err
}

// GetActionLimit retrieves the stored override for one action, or nil when
// the guild has none.
func (d *Database) GetActionLimit(guildID, action string) (*ActionLimit, error) {
	var limit ActionLimit
	err := d.db.QueryRow(
		`SELECT id, guild_id, action, max_actions, time_window, created_at, updated_at
		 FROM action_limits WHERE guild_id = ? AND action = ?`,
		guildID, action,
	).Scan(&limit.ID, &limit.GuildID, &limit.Action, &limit.MaxActions, &limit.TimeWindow, &limit.CreatedAt, &limit.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &limit, nil
}

// GetAllActionLimits retrieves every stored override for a guild.
func (d *Database) GetAllActionLimits(guildID string) ([]*ActionLimit, error) {
	rows, err := d.db.Query(
		`SELECT id, guild_id, action, max_actions, time_window, created_at, updated_at
		 FROM action_limits WHERE guild_id = ? ORDER BY action`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var limits []*ActionLimit
	for rows.Next() {
		var limit ActionLimit
		if err := rows.Scan(&limit.ID, &limit.GuildID, &limit.Action, &limit.MaxActions, &limit.TimeWindow, &limit.CreatedAt, &limit.UpdatedAt); err != nil {
			return nil, err
		}
		limits = append(limits, &limit)
	}

	return limits, rows.Err()
}

// Limits layers stored per-guild overrides over the built-in defaults,
// implementing the tracker's limit provider.
type Limits struct {
	DB       *Database
	Defaults tracker.StaticLimits
}

func (l Limits) Limit(guildID string, action tracker.ActionType) tracker.Limit {
	stored, err := l.DB.GetActionLimit(guildID, action.String())
	if err != nil {
		logging.Warn("Action limit lookup failed for guild %s action %s: %v", guildID, action, err)
		return l.Defaults.Limit(guildID, action)
	}
	if stored == nil || stored.MaxActions <= 0 || stored.TimeWindow <= 0 {
		return l.Defaults.Limit(guildID, action)
	}
	return tracker.Limit{
		Max:    stored.MaxActions,
		Window: time.Duration(stored.TimeWindow) * time.Second,
	}
}
