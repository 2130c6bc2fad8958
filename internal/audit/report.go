package audit

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// LogChannelResolver maps a guild to its configured log channel, empty when
// none is set.
type LogChannelResolver interface {
	LogChannel(guildID string) string
}

// DiscordReporter sends violation embeds to each guild's log channel.
type DiscordReporter struct {
	session  *discordgo.Session
	channels LogChannelResolver
}

func NewDiscordReporter(session *discordgo.Session, channels LogChannelResolver) *DiscordReporter {
	return &DiscordReporter{session: session, channels: channels}
}

// Report builds and sends the violation embed. The excerpt is already
// redacted and bounded by the caller.
func (r *DiscordReporter) Report(guildID string, rec *Record, excerpt string) error {
	channelID := r.channels.LogChannel(guildID)
	if channelID == "" {
		return nil
	}

	confidenceLabel := "High (literal match)"
	if rec.WasObfuscated {
		confidenceLabel = "Medium (matched after normalization)"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🛡️ Filter Violation",
		Color:       0xED4245,
		Description: fmt.Sprintf("**Rule:** %s\n**Action Taken:** %s", rec.RuleName, rec.ActionTaken),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "👤 Actor",
				Value:  fmt.Sprintf("<@%s> (`%s`)", rec.ActorID, rec.ActorID),
				Inline: true,
			},
			{
				Name:   "📍 Channel",
				Value:  fmt.Sprintf("<#%s>", rec.ChannelID),
				Inline: true,
			},
			{
				Name:   "🎯 Confidence",
				Value:  confidenceLabel,
				Inline: true,
			},
			{
				Name:   "📝 Excerpt",
				Value:  fmt.Sprintf("```%s```", nonEmpty(excerpt, "(unavailable)")),
				Inline: false,
			},
			{
				Name:   "🔒 Content Hash",
				Value:  fmt.Sprintf("`%s`", rec.ContentHash),
				Inline: true,
			},
			{
				Name:   "🕐 Timestamp",
				Value:  fmt.Sprintf("<t:%d:F>", rec.Timestamp.Unix()),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Violation %s", rec.ID),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := r.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("send violation embed to channel %s: %w", channelID, err)
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
