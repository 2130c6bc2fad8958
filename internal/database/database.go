package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Database wraps the SQLite connection pool. Callers receive an instance
// from Open and inject it where needed; there is no package-level state.
type Database struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at dbPath and
// prepares the schema.
func Open(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	d := &Database{db: db}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping reports whether the connection is alive.
func (d *Database) Ping() error {
	return d.db.Ping()
}

func (d *Database) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS guild_settings (
		guild_id TEXT PRIMARY KEY,
		filter_enabled INTEGER DEFAULT 1,
		log_channel_id TEXT DEFAULT '',
		default_action TEXT DEFAULT 'delete',
		notify_on_delete INTEGER DEFAULT 0,
		word_list TEXT DEFAULT '[]',
		created_at INTEGER DEFAULT 0,
		updated_at INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS filter_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		name TEXT NOT NULL,
		pattern TEXT NOT NULL,
		match_type TEXT NOT NULL,
		action TEXT NOT NULL,
		severity INTEGER DEFAULT 0,
		case_sensitive INTEGER DEFAULT 0,
		check_obfuscation INTEGER DEFAULT 1,
		action_duration INTEGER DEFAULT 0,
		warn_message TEXT DEFAULT '',
		enabled INTEGER DEFAULT 1,
		exempt_role_ids TEXT DEFAULT '[]',
		exempt_channel_ids TEXT DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(guild_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_filter_rules_guild ON filter_rules(guild_id);

	CREATE TABLE IF NOT EXISTS violations (
		id TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL,
		rule_id INTEGER DEFAULT 0,
		rule_name TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		channel_id TEXT DEFAULT '',
		content_hash TEXT NOT NULL,
		matched_pattern TEXT NOT NULL,
		confidence TEXT NOT NULL,
		was_obfuscated INTEGER DEFAULT 0,
		action_taken TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_violations_guild ON violations(guild_id);
	CREATE INDEX IF NOT EXISTS idx_violations_actor ON violations(guild_id, actor_id);
	CREATE INDEX IF NOT EXISTS idx_violations_timestamp ON violations(timestamp);

	CREATE TABLE IF NOT EXISTS whitelist (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		target_type TEXT NOT NULL,
		action TEXT DEFAULT '',
		created_at INTEGER NOT NULL,
		UNIQUE(guild_id, target_id, action)
	);

	CREATE INDEX IF NOT EXISTS idx_whitelist_target ON whitelist(guild_id, target_id);

	CREATE TABLE IF NOT EXISTS action_limits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		action TEXT NOT NULL,
		max_actions INTEGER DEFAULT 3,
		time_window INTEGER DEFAULT 10,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(guild_id, action)
	);

	CREATE INDEX IF NOT EXISTS idx_action_limits_guild ON action_limits(guild_id);

	CREATE TABLE IF NOT EXISTS mitigated_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		action_taken TEXT NOT NULL,
		mitigated_at INTEGER NOT NULL,
		UNIQUE(guild_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_mitigated_users_guild ON mitigated_users(guild_id);
	`

	_, err := d.db.Exec(schema)
	return err
}
