package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"modguard/internal/database"
	"modguard/internal/filter"
	"modguard/internal/logging"
	"modguard/internal/tracker"
)

// Handler routes slash command interactions.
type Handler struct {
	db       *database.Database
	rules    *filter.Store
	defaults tracker.StaticLimits
}

func NewHandler(db *database.Database, rules *filter.Store, defaults tracker.StaticLimits) *Handler {
	return &Handler{db: db, rules: rules, defaults: defaults}
}

// HandleInteraction is registered on the gateway session.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" || i.Member == nil {
		respondError(s, i, "This command only works inside a server.")
		return
	}

	allowed, err := checkPermissions(s, i)
	if err != nil {
		logging.Warn("Permission check failed for %s: %v", i.Member.User.ID, err)
		respondError(s, i, "Could not verify your permissions.")
		return
	}
	if !allowed {
		respondError(s, i, "You need Administrator permission to use this.")
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "filter":
		err = h.handleFilter(s, i, data)
	case "whitelist":
		err = h.handleWhitelist(s, i, data)
	case "limits":
		err = h.handleLimits(s, i, data)
	case "settings":
		err = h.handleSettings(s, i, data)
	case "status":
		err = h.handleStatus(s, i)
	default:
		err = fmt.Errorf("unknown command: %s", data.Name)
	}

	if err != nil {
		logging.Error("Command error [%s]: %v", data.Name, err)
		respondError(s, i, err.Error())
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// subcommand returns the first subcommand option, which is how every command
// here is shaped.
func subcommand(data discordgo.ApplicationCommandInteractionData) *discordgo.ApplicationCommandInteractionDataOption {
	if len(data.Options) == 0 {
		return nil
	}
	return data.Options[0]
}

// optionMap flattens a subcommand's options by name.
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
