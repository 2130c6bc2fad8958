package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"modguard/internal/database"
	"modguard/internal/tracker"
)

func (h *Handler) handleLimits(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	sub := subcommand(data)
	if sub == nil {
		return fmt.Errorf("missing subcommand")
	}

	switch sub.Name {
	case "set":
		return h.limitsSet(s, i, sub)
	case "view":
		return h.limitsView(s, i)
	default:
		return fmt.Errorf("unknown limits subcommand: %s", sub.Name)
	}
}

func (h *Handler) limitsSet(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(sub.Options)

	action := opts["action"].StringValue()
	max := int(opts["max"].IntValue())
	window := 10
	if opt, ok := opts["window"]; ok {
		window = int(opt.IntValue())
	}

	if max < 1 || max > 50 {
		return fmt.Errorf("max must be between 1 and 50")
	}
	if window < 1 || window > 300 {
		return fmt.Errorf("window must be between 1 and 300 seconds")
	}

	limit := &database.ActionLimit{
		GuildID:    i.GuildID,
		Action:     action,
		MaxActions: max,
		TimeWindow: window,
	}
	if err := h.db.UpsertActionLimit(limit); err != nil {
		return err
	}

	return respond(s, i, fmt.Sprintf("✅ Threshold for **%s** set to %d per %ds.", action, max, window))
}

func (h *Handler) limitsView(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	overrides, err := h.db.GetAllActionLimits(i.GuildID)
	if err != nil {
		return err
	}

	overridden := make(map[string]*database.ActionLimit, len(overrides))
	for _, o := range overrides {
		overridden[o.Action] = o
	}

	var b strings.Builder
	for _, action := range tracker.AllActionTypes {
		name := action.String()
		if o, ok := overridden[name]; ok {
			fmt.Fprintf(&b, "**%s** · %d per %ds · custom\n", name, o.MaxActions, o.TimeWindow)
			continue
		}
		limit := h.defaults.Limit(i.GuildID, action)
		fmt.Fprintf(&b, "**%s** · %d per %ds · default\n", name, limit.Max, int(limit.Window.Seconds()))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚙️ Abuse Thresholds",
		Description: b.String(),
		Color:       0x2B2D31,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return respondEmbed(s, i, embed)
}
