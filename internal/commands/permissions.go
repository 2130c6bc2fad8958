package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// checkPermissions allows the guild owner or any administrator.
func checkPermissions(s *discordgo.Session, i *discordgo.InteractionCreate) (bool, error) {
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			return false, fmt.Errorf("failed to get guild: %w", err)
		}
	}

	if i.Member.User.ID == guild.OwnerID {
		return true, nil
	}

	permissions, err := s.State.UserChannelPermissions(i.Member.User.ID, i.ChannelID)
	if err != nil {
		permissions, err = s.UserChannelPermissions(i.Member.User.ID, i.ChannelID)
		if err != nil {
			return false, fmt.Errorf("failed to get permissions: %w", err)
		}
	}

	return permissions&discordgo.PermissionAdministrator != 0, nil
}
