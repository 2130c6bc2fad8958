package enforcer

import (
	"fmt"
	"time"

	"modguard/internal/audit"
	"modguard/internal/executor"
	"modguard/internal/filter"
	"modguard/internal/logging"
)

// Message is the slice of an inbound message the coordinator needs.
type Message struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	AuthorID    string
	Content     string
	AuthorIsBot bool
	AuthorRoles []string
	// AuthorIsModerator is set by the gateway layer when the author holds
	// message-management or administrator capability; such actors bypass
	// filtering entirely.
	AuthorIsModerator bool
}

// GuildSettings is the per-guild enforcement configuration read per message.
type GuildSettings struct {
	FilterEnabled  bool
	LogChannelID   string
	DefaultAction  filter.Action
	NotifyOnDelete bool
}

// SettingsSource reads per-guild enforcement settings.
type SettingsSource interface {
	GuildSettings(guildID string) (*GuildSettings, error)
}

// Coordinator drives the message enforcement pipeline:
// received, bypass check, rule match, cooldown check, act, log.
type Coordinator struct {
	rules    *filter.Store
	compiler *filter.Compiler
	settings SettingsSource
	exec     executor.Executor
	sink     *audit.Sink
	cooldown *Cooldown
}

func NewCoordinator(rules *filter.Store, compiler *filter.Compiler, settings SettingsSource, exec executor.Executor, sink *audit.Sink, cooldown *Cooldown) *Coordinator {
	return &Coordinator{
		rules:    rules,
		compiler: compiler,
		settings: settings,
		exec:     exec,
		sink:     sink,
		cooldown: cooldown,
	}
}

// HandleMessage runs the full pipeline for one message. Nothing here ever
// propagates an error back into the event dispatch loop; failures are logged
// and swallowed.
func (c *Coordinator) HandleMessage(msg *Message) {
	// Bot-authored messages and messages without guild context are terminal.
	if msg.AuthorIsBot || msg.GuildID == "" {
		return
	}
	if msg.AuthorIsModerator {
		return
	}

	settings, err := c.settings.GuildSettings(msg.GuildID)
	if err != nil {
		logging.Warn("Guild settings read failed for %s: %v", msg.GuildID, err)
		return
	}
	if !settings.FilterEnabled {
		return
	}

	rules, err := c.rules.Rules(msg.GuildID, false)
	if err != nil {
		logging.Warn("Rule fetch failed for guild %s: %v", msg.GuildID, err)
		return
	}

	// Exemption is a pre-filter: exempt rules never participate in matching.
	eligible := rules[:0:0]
	for _, rule := range rules {
		if ruleExempts(&rule, msg) {
			continue
		}
		eligible = append(eligible, rule)
	}

	match, err := c.compiler.CheckFilters(msg.Content, eligible)
	if err != nil {
		logging.Warn("Filter evaluation error in guild %s: %v", msg.GuildID, err)
	}
	if match == nil {
		return
	}

	action := match.Rule.Action
	if action == "" {
		action = settings.DefaultAction
	}

	ref := executor.Ref{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.MessageID,
		UserID:    msg.AuthorID,
	}

	if !c.cooldown.Allow(msg.GuildID, msg.AuthorID) {
		// Within the cooldown window only the deleting side effect runs: no
		// escalation, no new violation record.
		if actionDeletes(action) {
			if err := c.exec.DeleteMessage(ref); err != nil {
				logging.Warn("Cooldown delete failed in guild %s: %v", msg.GuildID, err)
			}
		}
		return
	}

	c.act(ref, action, match, settings)

	rec := c.sink.Emit(msg.GuildID, msg.AuthorID, msg.ChannelID, msg.Content, string(action), match)
	logging.Info("Enforced violation in guild %s: %s", msg.GuildID, rec.Summary())
}

// act executes the configured action and awaits completion so the violation
// record is always written after the action. Executor failures are expected
// (missing permission, actor gone) and never propagate.
func (c *Coordinator) act(ref executor.Ref, action filter.Action, match *filter.MatchResult, settings *GuildSettings) {
	rule := match.Rule

	if actionDeletes(action) {
		if err := c.exec.DeleteMessage(ref); err != nil {
			logging.Warn("Message delete failed in guild %s: %v", ref.GuildID, err)
		} else if settings.NotifyOnDelete {
			c.notify(ref, rule)
		}
	}

	reason := fmt.Sprintf("Filter rule %q matched", rule.Name)

	switch action {
	case filter.ActionDelete, filter.ActionLogOnly:
		// Nothing further.
	case filter.ActionWarn:
		c.notify(ref, rule)
	case filter.ActionTimeout:
		duration := time.Duration(rule.ActionDuration) * time.Second
		if duration <= 0 {
			duration = 10 * time.Minute
		}
		if err := c.exec.TimeoutActor(ref, duration, reason); err != nil {
			logging.Warn("Timeout failed in guild %s for %s: %v", ref.GuildID, ref.UserID, err)
		}
	case filter.ActionKick:
		if err := c.exec.KickActor(ref, reason); err != nil {
			logging.Warn("Kick failed in guild %s for %s: %v", ref.GuildID, ref.UserID, err)
		}
	case filter.ActionBan:
		if err := c.exec.BanActor(ref, reason); err != nil {
			logging.Warn("Ban failed in guild %s for %s: %v", ref.GuildID, ref.UserID, err)
		}
	default:
		logging.Error("Unknown filter action %q for rule %s, no action taken", action, rule.Name)
	}
}

// notify sends a best-effort direct message; the actor may have DMs disabled
// and that failure is deliberately ignored.
func (c *Coordinator) notify(ref executor.Ref, rule *filter.FilterRule) {
	content := rule.WarnMessage
	if content == "" {
		content = fmt.Sprintf("Your message was removed because it matched the server's content filter (rule %q).", rule.Name)
	}
	if err := c.exec.NotifyActor(ref, content); err != nil {
		logging.Debug("Actor notification skipped for %s: %v", ref.UserID, err)
	}
}

// actionDeletes reports whether the action includes removing the message.
// Everything punitive deletes; log_only leaves the message in place.
func actionDeletes(action filter.Action) bool {
	switch action {
	case filter.ActionDelete, filter.ActionWarn, filter.ActionTimeout, filter.ActionKick, filter.ActionBan:
		return true
	case filter.ActionLogOnly:
		return false
	default:
		return false
	}
}

func ruleExempts(rule *filter.FilterRule, msg *Message) bool {
	if _, ok := rule.ExemptChannelIDs[msg.ChannelID]; ok {
		return true
	}
	for _, roleID := range msg.AuthorRoles {
		if _, ok := rule.ExemptRoleIDs[roleID]; ok {
			return true
		}
	}
	return false
}
