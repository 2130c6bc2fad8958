package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"modguard/internal/filter"
)

func (h *Handler) handleFilter(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	sub := subcommand(data)
	if sub == nil {
		return fmt.Errorf("missing subcommand")
	}

	switch sub.Name {
	case "add":
		return h.filterAdd(s, i, sub)
	case "remove":
		return h.filterRemove(s, i, sub)
	case "list":
		return h.filterList(s, i)
	default:
		return fmt.Errorf("unknown filter subcommand: %s", sub.Name)
	}
}

func (h *Handler) filterAdd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(sub.Options)

	rule := &filter.FilterRule{
		GuildID:          i.GuildID,
		Name:             opts["name"].StringValue(),
		Pattern:          opts["pattern"].StringValue(),
		MatchType:        filter.MatchType(opts["match"].StringValue()),
		Action:           filter.Action(opts["action"].StringValue()),
		CheckObfuscation: true,
		Enabled:          true,
	}
	if opt, ok := opts["severity"]; ok {
		rule.Severity = int(opt.IntValue())
	}
	if opt, ok := opts["obfuscation"]; ok {
		rule.CheckObfuscation = opt.BoolValue()
	}

	// Validation happens in the store: bad match types, out-of-range
	// severity and unsafe regex patterns are rejected before persisting.
	if err := h.rules.AddRule(rule); err != nil {
		return err
	}

	return respond(s, i, fmt.Sprintf("✅ Added rule **%s** (`%s` %s → %s).",
		rule.Name, rule.Pattern, rule.MatchType, rule.Action))
}

func (h *Handler) filterRemove(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(sub.Options)
	name := opts["name"].StringValue()

	if err := h.rules.RemoveRule(i.GuildID, name); err != nil {
		return err
	}

	return respond(s, i, fmt.Sprintf("✅ Removed rule **%s**.", name))
}

func (h *Handler) filterList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	rules, err := h.rules.Rules(i.GuildID, true)
	if err != nil {
		return err
	}

	if len(rules) == 0 {
		return respond(s, i, "No filter rules configured.")
	}

	var b strings.Builder
	for _, rule := range rules {
		state := "enabled"
		if !rule.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(&b, "**%s** · `%s` · %s → %s · severity %d · %s\n",
			rule.Name, rule.Pattern, rule.MatchType, rule.Action, rule.Severity, state)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🛡️ Filter Rules (%d)", len(rules)),
		Description: b.String(),
		Color:       0x2B2D31,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return respondEmbed(s, i, embed)
}
