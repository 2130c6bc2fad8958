package commands

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

func (h *Handler) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	// Gathering system stats takes up to a second; defer the response.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title:     "📊 Status",
		Color:     0x00BFFF,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	violationCount, err := h.db.CountViolations(i.GuildID)
	if err != nil {
		violationCount = -1
	}
	mitigated, err := h.db.GetMitigatedUsers(i.GuildID)
	mitigatedCount := len(mitigated)
	if err != nil {
		mitigatedCount = -1
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "🤖 Bot",
		Value: fmt.Sprintf("**Uptime:** `%s`\n**Guilds:** `%d`\n**Latency:** `%dms`",
			formatDuration(time.Since(startTime)),
			len(s.State.Guilds),
			s.HeartbeatLatency().Milliseconds()),
		Inline: true,
	})

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "🛡️ Enforcement",
		Value: fmt.Sprintf("**Violations recorded:** `%d`\n**Mitigated actors:** `%d`",
			violationCount, mitigatedCount),
		Inline: true,
	})

	if hostInfo, err := host.Info(); err == nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🖥️ Host",
			Value: fmt.Sprintf("**OS:** `%s/%s`\n**Uptime:** `%s`",
				hostInfo.OS, hostInfo.KernelArch,
				formatDuration(time.Duration(hostInfo.Uptime)*time.Second)),
			Inline: false,
		})
	}

	cpuLine := "unavailable"
	if cpuPercent, err := cpu.Percent(time.Second, false); err == nil && len(cpuPercent) > 0 {
		cpuLine = fmt.Sprintf("`%.1f%%`", cpuPercent[0])
	}
	memLine := "unavailable"
	if memInfo, err := mem.VirtualMemory(); err == nil {
		memLine = fmt.Sprintf("`%s / %s (%.1f%%)`",
			formatBytes(memInfo.Used), formatBytes(memInfo.Total), memInfo.UsedPercent)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "⚡ Resources",
		Value: fmt.Sprintf("**CPU:** %s\n**Memory:** %s\n**Goroutines:** `%d`\n**Heap:** `%s`",
			cpuLine, memLine, runtime.NumGoroutine(), formatBytes(m.Alloc)),
		Inline: false,
	})

	embeds := []*discordgo.MessageEmbed{embed}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds})
	return err
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
