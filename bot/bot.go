package bot

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"derby/config"
	"derby/events"
	"derby/service"

	"github.com/bwmarrin/discordgo"
)

// Bot owns the Discord session and routes slash commands to the services.
// It also implements the orchestrator's Notifier and GuildLister.
type Bot struct {
	cfg      *config.Config
	session  *discordgo.Session
	ledger   service.LedgerService
	racers   service.RacerService
	races    service.RaceService
	settings service.GuildSettingsService
	eventBus *events.Bus
}

func New(cfg *config.Config, ledger service.LedgerService, racers service.RacerService, races service.RaceService, settings service.GuildSettingsService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	bot := &Bot{
		cfg:      cfg,
		session:  dg,
		ledger:   ledger,
		racers:   racers,
		races:    races,
		settings: settings,
		eventBus: eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Announce retirements in the guild they happened in
	eventBus.Subscribe(events.EventTypeRacerRetired, func(ctx context.Context, event events.Event) {
		retired, ok := event.(events.RacerRetiredEvent)
		if !ok {
			return
		}
		message := fmt.Sprintf("🎖️ **%s** has retired from racing! **%s** joins the roster in their place.",
			retired.RacerName, retired.SuccessorName)
		if err := bot.Announce(ctx, retired.GuildID, message); err != nil {
			log.Errorf("Failed to announce retirement of racer %d: %v", retired.RacerID, err)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// GuildIDs lists the guilds the bot is currently connected to
func (b *Bot) GuildIDs() []int64 {
	b.session.State.RLock()
	defer b.session.State.RUnlock()

	ids := make([]int64, 0, len(b.session.State.Guilds))
	for _, guild := range b.session.State.Guilds {
		id, err := strconv.ParseInt(guild.ID, 10, 64)
		if err != nil {
			log.Errorf("Skipping guild with unparseable ID %s: %v", guild.ID, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "race":
		b.handleRaceCommand(s, i)
	case "derby":
		b.handleDerbyCommand(s, i)
	}
}
