package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	sub := subcommand(data)
	if sub == nil {
		return fmt.Errorf("missing subcommand")
	}

	row, err := h.db.GetGuildSettings(i.GuildID)
	if err != nil {
		return err
	}

	switch sub.Name {
	case "logchannel":
		opts := optionMap(sub.Options)
		channel := opts["channel"].ChannelValue(s)
		if channel == nil {
			return fmt.Errorf("channel not found")
		}
		row.LogChannelID = channel.ID
		if err := h.db.UpsertGuildSettings(row); err != nil {
			return err
		}
		return respond(s, i, fmt.Sprintf("✅ Violations will be logged to <#%s>.", channel.ID))

	case "enable":
		row.FilterEnabled = true
		if err := h.db.UpsertGuildSettings(row); err != nil {
			return err
		}
		h.rules.ClearCache(i.GuildID)
		return respond(s, i, "✅ Content filter enabled.")

	case "disable":
		row.FilterEnabled = false
		if err := h.db.UpsertGuildSettings(row); err != nil {
			return err
		}
		return respond(s, i, "✅ Content filter disabled.")

	default:
		return fmt.Errorf("unknown settings subcommand: %s", sub.Name)
	}
}
