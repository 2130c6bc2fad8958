package executor

import "time"

// Ref identifies the target of a moderation action.
type Ref struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
}

// Executor is the moderation action capability consumed by the enforcement
// and mitigation coordinators. Every call may fail with a permission or
// not-found error; callers treat those as non-fatal and log them.
type Executor interface {
	DeleteMessage(ref Ref) error
	TimeoutActor(ref Ref, duration time.Duration, reason string) error
	KickActor(ref Ref, reason string) error
	BanActor(ref Ref, reason string) error
	StripRoles(ref Ref, reason string) error
	NotifyActor(ref Ref, content string) error
}
