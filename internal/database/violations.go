package database

import (
	"time"

	"modguard/internal/audit"
)

// InsertViolation persists one enforcement record. Only the content hash is
// stored; raw message text never reaches this layer.
func (d *Database) InsertViolation(rec *audit.Record) error {
	_, err := d.db.Exec(
		`INSERT INTO violations (id, guild_id, rule_id, rule_name, actor_id, channel_id, content_hash,
		        matched_pattern, confidence, was_obfuscated, action_taken, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.GuildID, rec.RuleID, rec.RuleName, rec.ActorID, rec.ChannelID, rec.ContentHash,
		rec.MatchedPattern, rec.Confidence, boolInt(rec.WasObfuscated), rec.ActionTaken, rec.Timestamp.Unix(),
	)
	return err
}

// GetRecentViolations retrieves the newest violation records for a guild.
func (d *Database) GetRecentViolations(guildID string, limit int) ([]*audit.Record, error) {
	rows, err := d.db.Query(
		`SELECT id, guild_id, rule_id, rule_name, actor_id, channel_id, content_hash,
		        matched_pattern, confidence, was_obfuscated, action_taken, timestamp
		 FROM violations WHERE guild_id = ? ORDER BY timestamp DESC LIMIT ?`,
		guildID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		rec, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetActorViolations retrieves the newest violation records for one actor in
// a guild, used by escalation lookups and the status surface.
func (d *Database) GetActorViolations(guildID, actorID string, limit int) ([]*audit.Record, error) {
	rows, err := d.db.Query(
		`SELECT id, guild_id, rule_id, rule_name, actor_id, channel_id, content_hash,
		        matched_pattern, confidence, was_obfuscated, action_taken, timestamp
		 FROM violations WHERE guild_id = ? AND actor_id = ? ORDER BY timestamp DESC LIMIT ?`,
		guildID, actorID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		rec, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountViolations returns the total violation count for a guild.
func (d *Database) CountViolations(guildID string) (int64, error) {
	var count int64
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM violations WHERE guild_id = ?`, guildID,
	).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanViolation(row rowScanner) (*audit.Record, error) {
	var (
		rec        audit.Record
		obfuscated int
		ts         int64
	)
	if err := row.Scan(&rec.ID, &rec.GuildID, &rec.RuleID, &rec.RuleName, &rec.ActorID, &rec.ChannelID,
		&rec.ContentHash, &rec.MatchedPattern, &rec.Confidence, &obfuscated, &rec.ActionTaken, &ts); err != nil {
		return nil, err
	}
	rec.WasObfuscated = obfuscated != 0
	rec.Timestamp = time.Unix(ts, 0)
	return &rec, nil
}
