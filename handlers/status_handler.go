package handlers

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"sentinel-bot/bot"
	"sentinel-bot/utils"
	"sentinel-bot/utils/database/audit"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HandleStatus reports engine health: host metrics, store size and the last
// 24 hours of enforcement.
func HandleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	var dbSizeMB int64
	if info, err := os.Stat(b.Config.AuditDBPath); err == nil {
		dbSizeMB = info.Size() / 1024 / 1024
	}

	stats, err := audit.GetCategoryStats(b.AuditDB, i.GuildID, time.Now().Add(-24*time.Hour))
	if err != nil {
		log.Printf("Failed to load category stats: %v", err)
	}
	total := 0
	enforcement := ""
	for category, count := range stats {
		total += count
		enforcement += fmt.Sprintf("%s: %d\n", category, count)
	}
	if enforcement == "" {
		enforcement = "none"
	}

	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}
	uptime := ""
	if hostInfo != nil {
		uptime = (time.Duration(hostInfo.Uptime) * time.Second).String()
	}

	embed := &discordgo.MessageEmbed{
		Title: "Moderation Engine Status",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "CPU", Value: fmt.Sprintf("%d cores, %.1f%%", cpuCount, cpuUsage), Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.1f%% of %d MB", vm.UsedPercent, vm.Total/1024/1024), Inline: true},
			{Name: "Host Uptime", Value: uptime, Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Audit DB Size", Value: fmt.Sprintf("%d MB", dbSizeMB), Inline: true},
			{Name: "Violations (24h)", Value: fmt.Sprintf("%d", total), Inline: true},
			{Name: "By Category (24h)", Value: enforcement},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	utils.SendEmbedResponse(s, i, embed)
}
