package tracker

import "time"

// ActionType identifies a dangerous administrative action being counted.
type ActionType uint8

const (
	ActionRoleCreate ActionType = iota
	ActionRoleDelete
	ActionChannelCreate
	ActionChannelDelete
	ActionBanAdd
	ActionWebhookCreate
	ActionBotAdd
	ActionMemberKick
	ActionRoleUpdateGrant
)

// AllActionTypes lists every tracked action, used for reset sweeps and
// exhaustiveness checks in tests.
var AllActionTypes = []ActionType{
	ActionRoleCreate,
	ActionRoleDelete,
	ActionChannelCreate,
	ActionChannelDelete,
	ActionBanAdd,
	ActionWebhookCreate,
	ActionBotAdd,
	ActionMemberKick,
	ActionRoleUpdateGrant,
}

func (a ActionType) String() string {
	switch a {
	case ActionRoleCreate:
		return "role_create"
	case ActionRoleDelete:
		return "role_delete"
	case ActionChannelCreate:
		return "channel_create"
	case ActionChannelDelete:
		return "channel_delete"
	case ActionBanAdd:
		return "ban_add"
	case ActionWebhookCreate:
		return "webhook_create"
	case ActionBotAdd:
		return "bot_add"
	case ActionMemberKick:
		return "member_kick"
	case ActionRoleUpdateGrant:
		return "role_update_grant"
	default:
		return "unknown"
	}
}

// Limit is the threshold configuration for one action type: at most Max
// actions within Window before mitigation triggers.
type Limit struct {
	Max    int
	Window time.Duration
}

// LimitProvider resolves the effective limit for an action in a guild.
// Implementations layer per-guild overrides over the built-in defaults.
type LimitProvider interface {
	Limit(guildID string, action ActionType) Limit
}

// StaticLimits is a LimitProvider that ignores the guild and serves a fixed
// table, used for defaults and in tests.
type StaticLimits map[ActionType]Limit

func (s StaticLimits) Limit(_ string, action ActionType) Limit {
	if l, ok := s[action]; ok {
		return l
	}
	return Limit{Max: 3, Window: 10 * time.Second}
}
