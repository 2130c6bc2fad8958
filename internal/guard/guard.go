package guard

import (
	"fmt"
	"time"

	"modguard/internal/logging"
	"modguard/internal/tracker"
)

// Discord audit log action codes consulted for actor attribution.
const (
	auditChannelCreate = 10
	auditChannelDelete = 12
	auditMemberKick    = 20
	auditBanAdd        = 22
	auditBotAdd        = 28
	auditRoleCreate    = 30
	auditRoleUpdate    = 31
	auditRoleDelete    = 32
	auditWebhookCreate = 50
)

// Audit entries older than this are treated as not attributable to a live
// action; the audit log propagates with nontrivial latency, so bot additions
// get a wider window.
const (
	defaultStaleness = 5 * time.Second
	botAddStaleness  = 10 * time.Second
)

// AuditEntry is the most recent audit log record for one action code.
type AuditEntry struct {
	ActorID    string
	TargetID   string
	ActorIsBot bool
	CreatedAt  time.Time
}

// AuditSource returns the latest audit entry for a guild and action code, or
// nil when none exists.
type AuditSource interface {
	LatestEntry(guildID string, actionCode int) (*AuditEntry, error)
}

// WhitelistChecker reports whether a target bypasses tracking for an action.
type WhitelistChecker interface {
	IsWhitelisted(guildID, targetID string, action tracker.ActionType) bool
}

// Summary describes a threshold crossing handed to the mitigation callback.
type Summary struct {
	Action tracker.ActionType
	Count  int
	Limit  int
	Reason string
}

// MitigationFunc performs whatever remediation the deployment configures.
// The guard only decides the trigger condition and timing.
type MitigationFunc func(guildID, actorID string, summary Summary)

// Coordinator evaluates administrative events against the abuse tracker and
// dispatches mitigation on threshold crossings.
type Coordinator struct {
	tracker   *tracker.Tracker
	audit     AuditSource
	whitelist WhitelistChecker
	mitigate  MitigationFunc
	botID     string
	now       func() time.Time
}

func NewCoordinator(tr *tracker.Tracker, audit AuditSource, whitelist WhitelistChecker, mitigate MitigationFunc, botID string) *Coordinator {
	return &Coordinator{
		tracker:   tr,
		audit:     audit,
		whitelist: whitelist,
		mitigate:  mitigate,
		botID:     botID,
		now:       time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// HandleEvent processes one administrative event of the given action type:
// resolve the actor from the audit log, discard stale or self-attributed
// entries, consult the whitelist, then track and possibly mitigate. Errors
// never propagate to the event dispatch loop.
func (c *Coordinator) HandleEvent(guildID string, action tracker.ActionType) {
	entry, err := c.audit.LatestEntry(guildID, auditCode(action))
	if err != nil {
		logging.Warn("Audit log fetch failed for guild %s action %s: %v", guildID, action, err)
		return
	}
	if entry == nil {
		return
	}

	c.evaluate(guildID, action, entry, "")
}

// HandleRoleUpdate processes a role update. Tracking happens only when the
// update grants at least one dangerous permission that was absent before;
// removals and cosmetic changes never count.
func (c *Coordinator) HandleRoleUpdate(guildID string, oldPerms, newPerms uint64) {
	added := DangerousAdded(oldPerms, newPerms)
	if added == 0 {
		return
	}

	entry, err := c.audit.LatestEntry(guildID, auditRoleUpdate)
	if err != nil {
		logging.Warn("Audit log fetch failed for guild %s role update: %v", guildID, err)
		return
	}
	if entry == nil {
		return
	}

	reason := fmt.Sprintf("granted dangerous permissions: %s", PermissionNames(added))
	c.evaluate(guildID, tracker.ActionRoleUpdateGrant, entry, reason)
}

func (c *Coordinator) evaluate(guildID string, action tracker.ActionType, entry *AuditEntry, reason string) {
	// The bot's own administrative changes (automated restorations and
	// mitigations) must never be tracked as abuse.
	if entry.ActorID == c.botID {
		return
	}

	if age := c.now().Sub(entry.CreatedAt); age > staleness(action) {
		logging.Debug("Discarding stale audit entry for guild %s action %s (age %v)", guildID, action, age)
		return
	}

	if c.whitelist != nil && c.whitelist.IsWhitelisted(guildID, entry.ActorID, action) {
		logging.Debug("Actor %s whitelisted for %s in guild %s", entry.ActorID, action, guildID)
		return
	}

	res := c.tracker.Track(guildID, entry.ActorID, action)
	if !res.Violated {
		return
	}

	if reason == "" {
		reason = fmt.Sprintf("%s threshold exceeded (%d/%d)", action, res.Count, res.Limit)
	}

	logging.Warn("Threshold crossed in guild %s: actor %s %s (%d/%d)",
		guildID, entry.ActorID, action, res.Count, res.Limit)

	c.mitigate(guildID, entry.ActorID, Summary{
		Action: action,
		Count:  res.Count,
		Limit:  res.Limit,
		Reason: reason,
	})
	c.tracker.Reset(guildID, entry.ActorID)
}

// ResetActor clears tracked state for an actor, used on unban or rejoin.
func (c *Coordinator) ResetActor(guildID, actorID string) {
	c.tracker.Reset(guildID, actorID)
}

// ResetGuild clears tracked state for a whole guild, used when the bot is
// (re)added.
func (c *Coordinator) ResetGuild(guildID string) {
	c.tracker.ResetGuild(guildID)
}

func auditCode(action tracker.ActionType) int {
	switch action {
	case tracker.ActionRoleCreate:
		return auditRoleCreate
	case tracker.ActionRoleDelete:
		return auditRoleDelete
	case tracker.ActionChannelCreate:
		return auditChannelCreate
	case tracker.ActionChannelDelete:
		return auditChannelDelete
	case tracker.ActionBanAdd:
		return auditBanAdd
	case tracker.ActionWebhookCreate:
		return auditWebhookCreate
	case tracker.ActionBotAdd:
		return auditBotAdd
	case tracker.ActionMemberKick:
		return auditMemberKick
	case tracker.ActionRoleUpdateGrant:
		return auditRoleUpdate
	default:
		return 0
	}
}

func staleness(action tracker.ActionType) time.Duration {
	if action == tracker.ActionBotAdd {
		return botAddStaleness
	}
	return defaultStaleness
}
