package commands

import "github.com/bwmarrin/discordgo"

// Definitions returns every slash command the bot registers.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "filter",
			Description: "Manage content filter rules",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "add",
					Description: "Add a filter rule",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "name",
							Description: "Unique rule name",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
						{
							Name:        "pattern",
							Description: "Word, phrase or regex to match",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
						{
							Name:        "match",
							Description: "How to match the pattern",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Exact word", Value: "exact"},
								{Name: "Partial", Value: "partial"},
								{Name: "Regex", Value: "regex"},
								{Name: "Starts with", Value: "startswith"},
								{Name: "Ends with", Value: "endswith"},
							},
						},
						{
							Name:        "action",
							Description: "What to do on a match",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Delete", Value: "delete"},
								{Name: "Warn", Value: "warn"},
								{Name: "Timeout", Value: "timeout"},
								{Name: "Kick", Value: "kick"},
								{Name: "Ban", Value: "ban"},
								{Name: "Log only", Value: "log_only"},
							},
						},
						{
							Name:        "severity",
							Description: "Priority 0-100; higher wins when several rules match",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Required:    false,
						},
						{
							Name:        "obfuscation",
							Description: "Also match leetspeak and spaced-out variants (default true)",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Required:    false,
						},
					},
				},
				{
					Name:        "remove",
					Description: "Remove a filter rule by name",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "name",
							Description: "Rule name",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
					},
				},
				{
					Name:        "list",
					Description: "List the guild's filter rules",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
		{
			Name:        "whitelist",
			Description: "Manage anti-nuke whitelist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "add",
					Description: "Exempt a user or role from abuse tracking",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "user",
							Description: "User to whitelist",
							Type:        discordgo.ApplicationCommandOptionUser,
							Required:    false,
						},
						{
							Name:        "role",
							Description: "Role to whitelist",
							Type:        discordgo.ApplicationCommandOptionRole,
							Required:    false,
						},
					},
				},
				{
					Name:        "remove",
					Description: "Remove a user or role from the whitelist",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "user",
							Description: "User to remove",
							Type:        discordgo.ApplicationCommandOptionUser,
							Required:    false,
						},
						{
							Name:        "role",
							Description: "Role to remove",
							Type:        discordgo.ApplicationCommandOptionRole,
							Required:    false,
						},
					},
				},
				{
					Name:        "view",
					Description: "View the whitelist",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
		{
			Name:        "limits",
			Description: "Configure abuse thresholds",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "set",
					Description: "Override the threshold for one action",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "action",
							Description: "Tracked action",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices:     actionChoices(),
						},
						{
							Name:        "max",
							Description: "Maximum actions inside the window",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Required:    true,
						},
						{
							Name:        "window",
							Description: "Window in seconds (default 10)",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Required:    false,
						},
					},
				},
				{
					Name:        "view",
					Description: "View the effective thresholds",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
		{
			Name:        "settings",
			Description: "Guild enforcement settings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "logchannel",
					Description: "Set the violation log channel",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "channel",
							Description: "Channel to log violations to",
							Type:        discordgo.ApplicationCommandOptionChannel,
							Required:    true,
						},
					},
				},
				{
					Name:        "enable",
					Description: "Enable the content filter",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "disable",
					Description: "Disable the content filter",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
		{
			Name:        "status",
			Description: "Bot, enforcement and system status",
		},
	}
}

func actionChoices() []*discordgo.ApplicationCommandOptionChoice {
	return []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Role create", Value: "role_create"},
		{Name: "Role delete", Value: "role_delete"},
		{Name: "Channel create", Value: "channel_create"},
		{Name: "Channel delete", Value: "channel_delete"},
		{Name: "Ban add", Value: "ban_add"},
		{Name: "Webhook create", Value: "webhook_create"},
		{Name: "Bot add", Value: "bot_add"},
		{Name: "Member kick", Value: "member_kick"},
		{Name: "Dangerous role grant", Value: "role_update_grant"},
	}
}
