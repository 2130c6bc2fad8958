package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"modguard/internal/audit"
	"modguard/internal/bot"
	"modguard/internal/commands"
	"modguard/internal/config"
	"modguard/internal/database"
	"modguard/internal/dispatcher"
	"modguard/internal/enforcer"
	"modguard/internal/executor"
	"modguard/internal/filter"
	"modguard/internal/guard"
	"modguard/internal/logging"
	"modguard/internal/tracker"
	"modguard/internal/watchdog"
)

func main() {
	cfg, err := config.Load("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Shutdown()

	logging.Info("Starting modguard")

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logging.Error("Database open failed: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	session, err := bot.New(cfg.Bot.Token)
	if err != nil {
		logging.Error("Session setup failed: %v", err)
		os.Exit(1)
	}

	// The guard needs the bot's own ID before any handler fires, and handlers
	// must be attached before the gateway opens. Resolve it over REST.
	self, err := session.Discord().User("@me")
	if err != nil {
		logging.Error("Failed to resolve bot identity: %v", err)
		os.Exit(1)
	}
	session.BotID = self.ID

	rules := filter.NewStore(
		database.RuleTable{DB: db},
		database.WordList{DB: db},
		database.RuleTable{DB: db},
		time.Duration(cfg.Filter.CacheTTLSeconds)*time.Second,
	)
	compiler := filter.NewCompiler()
	settings := database.Settings{DB: db}

	sink := audit.NewSink(db, audit.NewDiscordReporter(session.Discord(), settings))
	cooldown := enforcer.NewCooldown(time.Duration(cfg.Filter.CooldownSeconds) * time.Second)
	enf := enforcer.NewCoordinator(rules, compiler, settings,
		executor.NewDiscord(session.Discord()), sink, cooldown)

	defaults := config.DefaultLimits()
	tr := tracker.New(database.Limits{DB: db, Defaults: defaults})

	pool := dispatcher.NewHTTPPool(cfg.Mitigation.HTTPPoolSize)
	pool.Warmup()
	rest := dispatcher.NewRESTClient(pool, dispatcher.NewRateLimitMonitor(), cfg.Bot.Token)
	disp := dispatcher.New(rest, db, dispatcher.MitigationAction(cfg.Mitigation.Action))
	disp.OnComplete = mitigationNotifier(session.Discord(), settings)
	disp.Start(cfg.Mitigation.Workers)
	defer disp.Stop()

	fetcher := bot.NewAuditFetcher(session.Discord())
	grd := guard.NewCoordinator(tr, fetcher, database.Whitelist{DB: db}, disp.Mitigate, session.BotID)

	handlers := bot.NewHandlers(enf, grd, fetcher, db, session.BotID)
	handlers.Register(session)

	cmdHandler := commands.NewHandler(db, rules, defaults)
	session.AddHandler(cmdHandler.HandleInteraction)

	if err := session.Connect(); err != nil {
		logging.Error("Gateway connect failed: %v", err)
		os.Exit(1)
	}
	defer session.Close()

	if err := session.RegisterCommands(commands.Definitions()); err != nil {
		logging.Warn("Command registration failed: %v", err)
	}

	var dog *watchdog.Watchdog
	if cfg.Watchdog.Enabled {
		dog = watchdog.New(time.Duration(cfg.Watchdog.IntervalSeconds) * time.Second)
		dog.Register("database", db.Ping)
		dog.Register("gateway", func() error {
			if latency := session.Discord().HeartbeatLatency(); latency > 10*time.Second {
				return fmt.Errorf("heartbeat latency %v", latency)
			}
			return nil
		})
		dog.Register("dispatcher", func() error {
			if n := disp.QueueSize(); n > 100 {
				return fmt.Errorf("mitigation backlog at %d jobs", n)
			}
			return nil
		})
		dog.Start()
		defer dog.Stop()
	}

	logging.Info("All components running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info("Shutdown signal received")
}

// mitigationNotifier posts an embed to the guild's log channel when a
// mitigation lands. Failures are logged and dropped; notification must never
// block the worker pool.
func mitigationNotifier(s *discordgo.Session, settings database.Settings) func(*dispatcher.Job, error) {
	return func(job *dispatcher.Job, jobErr error) {
		channelID := settings.LogChannel(job.GuildID)
		if channelID == "" {
			return
		}

		embed := &discordgo.MessageEmbed{
			Title:     "🛡️ Mitigation Applied",
			Color:     0xE74C3C,
			Timestamp: time.Now().Format(time.RFC3339),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "👤 Actor", Value: fmt.Sprintf("<@%s>", job.TargetID), Inline: true},
				{Name: "⚔️ Action", Value: string(job.Action), Inline: true},
				{Name: "📋 Reason", Value: job.Reason, Inline: false},
			},
		}
		if jobErr != nil {
			embed.Title = "⚠️ Mitigation Failed"
			embed.Color = 0xF39C12
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "❌ Error", Value: jobErr.Error(), Inline: false,
			})
		}

		if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
			logging.Warn("Log channel notification failed for guild %s: %v", job.GuildID, err)
		}
	}
}
