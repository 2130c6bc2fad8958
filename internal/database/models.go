package database

// GuildSettingsRow is the persisted per-guild configuration record.
type GuildSettingsRow struct {
	GuildID        string
	FilterEnabled  bool
	LogChannelID   string
	DefaultAction  string
	NotifyOnDelete bool
	WordList       string // JSON array of plain words
	CreatedAt      int64
	UpdatedAt      int64
}

// ActionLimit is the persisted per-guild threshold override for one
// administrative action.
type ActionLimit struct {
	ID         int64
	GuildID    string
	Action     string
	MaxActions int
	TimeWindow int // seconds
	CreatedAt  int64
	UpdatedAt  int64
}

// WhitelistEntry marks a user or role as exempt from abuse tracking.
// Action is empty for a blanket exemption.
type WhitelistEntry struct {
	ID         int64
	GuildID    string
	TargetID   string
	TargetType string // "user" or "role"
	Action     string
	CreatedAt  int64
}

// MitigatedUser records an actor the bot has already acted against.
type MitigatedUser struct {
	ID          int64
	GuildID     string
	UserID      string
	Reason      string
	ActionTaken string
	MitigatedAt int64
}
