package executor

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Executor over a discordgo session.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

func (d *Discord) DeleteMessage(ref Ref) error {
	if err := d.session.ChannelMessageDelete(ref.ChannelID, ref.MessageID); err != nil {
		return fmt.Errorf("delete message %s: %w", ref.MessageID, err)
	}
	return nil
}

func (d *Discord) TimeoutActor(ref Ref, duration time.Duration, reason string) error {
	until := time.Now().Add(duration)
	if err := d.session.GuildMemberTimeout(ref.GuildID, ref.UserID, &until); err != nil {
		return fmt.Errorf("timeout member %s: %w", ref.UserID, err)
	}
	return nil
}

func (d *Discord) KickActor(ref Ref, reason string) error {
	if err := d.session.GuildMemberDeleteWithReason(ref.GuildID, ref.UserID, reason); err != nil {
		return fmt.Errorf("kick member %s: %w", ref.UserID, err)
	}
	return nil
}

func (d *Discord) BanActor(ref Ref, reason string) error {
	if err := d.session.GuildBanCreateWithReason(ref.GuildID, ref.UserID, reason, 0); err != nil {
		return fmt.Errorf("ban member %s: %w", ref.UserID, err)
	}
	return nil
}

func (d *Discord) StripRoles(ref Ref, reason string) error {
	empty := []string{}
	_, err := d.session.GuildMemberEdit(ref.GuildID, ref.UserID, &discordgo.GuildMemberParams{
		Roles: &empty,
	}, discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("strip roles from member %s: %w", ref.UserID, err)
	}
	return nil
}

func (d *Discord) NotifyActor(ref Ref, content string) error {
	channel, err := d.session.UserChannelCreate(ref.UserID)
	if err != nil {
		return fmt.Errorf("open DM channel for %s: %w", ref.UserID, err)
	}
	if _, err := d.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("send DM to %s: %w", ref.UserID, err)
	}
	return nil
}
