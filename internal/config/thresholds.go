package config

import (
	"time"

	"modguard/internal/tracker"
)

// DefaultLimits is the built-in threshold table: how many of each
// administrative action an actor may perform inside the window before
// mitigation fires. Guild overrides in the database layer on top of these.
func DefaultLimits() tracker.StaticLimits {
	return tracker.StaticLimits{
		tracker.ActionRoleCreate:      {Max: 3, Window: 10 * time.Second},
		tracker.ActionRoleDelete:      {Max: 3, Window: 10 * time.Second},
		tracker.ActionChannelCreate:   {Max: 3, Window: 10 * time.Second},
		tracker.ActionChannelDelete:   {Max: 3, Window: 10 * time.Second},
		tracker.ActionBanAdd:          {Max: 3, Window: 15 * time.Second},
		tracker.ActionMemberKick:      {Max: 3, Window: 15 * time.Second},
		tracker.ActionWebhookCreate:   {Max: 2, Window: 10 * time.Second},
		tracker.ActionBotAdd:          {Max: 1, Window: 30 * time.Second},
		tracker.ActionRoleUpdateGrant: {Max: 2, Window: 10 * time.Second},
	}
}
