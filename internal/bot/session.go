package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"modguard/internal/logging"
)

// Session wraps the gateway connection. An instance is created in main and
// handed to whoever needs it.
type Session struct {
	discord *discordgo.Session
	BotID   string
}

func New(token string) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Message content plus the full guild surface: moderation needs to see
	// messages, members, bans, roles, channels and webhooks.
	dg.Identify.Intents = discordgo.IntentsAll

	return &Session{discord: dg}, nil
}

// Discord returns the underlying discordgo session.
func (s *Session) Discord() *discordgo.Session {
	return s.discord
}

// Connect opens the gateway connection and records the bot's own user ID.
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if s.discord.State.User != nil {
		s.BotID = s.discord.State.User.ID
		logging.Info("Connected as %s (ID %s)", s.discord.State.User.Username, s.BotID)
	}

	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// RegisterCommands registers slash commands globally.
func (s *Session) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	logging.Info("Registering %d slash commands...", len(commands))

	for _, cmd := range commands {
		if _, err := s.discord.ApplicationCommandCreate(s.discord.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		logging.Debug("Registered command: /%s", cmd.Name)
	}

	return nil
}

// AddHandler adds a gateway event handler.
func (s *Session) AddHandler(handler any) {
	s.discord.AddHandler(handler)
}
