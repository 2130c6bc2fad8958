package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) handleWhitelist(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	sub := subcommand(data)
	if sub == nil {
		return fmt.Errorf("missing subcommand")
	}

	switch sub.Name {
	case "add":
		return h.whitelistAdd(s, i, sub)
	case "remove":
		return h.whitelistRemove(s, i, sub)
	case "view":
		return h.whitelistView(s, i)
	default:
		return fmt.Errorf("unknown whitelist subcommand: %s", sub.Name)
	}
}

// whitelistTarget pulls the user or role option from a subcommand.
func whitelistTarget(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) (id, targetType, name string) {
	for _, opt := range sub.Options {
		switch opt.Name {
		case "user":
			user := opt.UserValue(s)
			return user.ID, "user", user.Username
		case "role":
			role := opt.RoleValue(s, i.GuildID)
			return role.ID, "role", role.Name
		}
	}
	return "", "", ""
}

func (h *Handler) whitelistAdd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	targetID, targetType, targetName := whitelistTarget(s, i, sub)
	if targetID == "" {
		return fmt.Errorf("specify a user or a role")
	}

	// Blanket exemption across all tracked actions.
	if err := h.db.AddWhitelist(i.GuildID, targetID, targetType, ""); err != nil {
		return err
	}

	return respond(s, i, fmt.Sprintf("✅ Whitelisted %s **%s**; their administrative actions are no longer tracked.", targetType, targetName))
}

func (h *Handler) whitelistRemove(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	targetID, targetType, targetName := whitelistTarget(s, i, sub)
	if targetID == "" {
		return fmt.Errorf("specify a user or a role")
	}

	if err := h.db.RemoveWhitelist(i.GuildID, targetID, ""); err != nil {
		return err
	}

	return respond(s, i, fmt.Sprintf("✅ Removed %s **%s** from the whitelist.", targetType, targetName))
}

func (h *Handler) whitelistView(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	entries, err := h.db.GetWhitelist(i.GuildID)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return respond(s, i, "The whitelist is empty.")
	}

	var b strings.Builder
	for _, entry := range entries {
		mention := "<@" + entry.TargetID + ">"
		if entry.TargetType == "role" {
			mention = "<@&" + entry.TargetID + ">"
		}
		scope := "all actions"
		if entry.Action != "" {
			scope = entry.Action
		}
		fmt.Fprintf(&b, "%s (%s) · %s\n", mention, entry.TargetType, scope)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 Whitelist (%d)", len(entries)),
		Description: b.String(),
		Color:       0x2B2D31,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return respondEmbed(s, i, embed)
}
