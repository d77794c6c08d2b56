package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"derby/bot/common"
	"derby/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleRaceCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Specify a subcommand.")
		return
	}

	switch options[0].Name {
	case "next":
		b.handleRaceNext(s, i)
	case "upcoming":
		b.handleRaceUpcoming(s, i)
	case "bet":
		b.handleRaceBet(s, i, options[0].Options)
	case "watch":
		b.handleRaceWatch(s, i)
	case "history":
		b.handleRaceHistory(s, i)
	case "balance":
		b.handleRaceBalance(s, i)
	}
}

func (b *Bot) handleRaceNext(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	race, err := b.races.NextRace(ctx, guildID)
	if err != nil {
		log.Errorf("Error looking up next race for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to look up the next race. Please try again.")
		return
	}
	if race == nil {
		b.respondWithError(s, i, "No races scheduled.")
		return
	}

	message := fmt.Sprintf("Next race: **#%d**, scheduled %s",
		race.ID, common.FormatDiscordTimestamp(race.StartedAt, "R"))
	if err := common.RespondWithMessage(s, i, message, false); err != nil {
		log.Errorf("Error responding to race next: %v", err)
	}
}

func (b *Bot) handleRaceUpcoming(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	race, err := b.races.NextRace(ctx, guildID)
	if err != nil {
		log.Errorf("Error looking up next race for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to look up the next race. Please try again.")
		return
	}

	racers, err := b.racers.ListActiveRacers(ctx)
	if err != nil {
		log.Errorf("Error listing active racers: %v", err)
		b.respondWithError(s, i, "Unable to list racers. Please try again.")
		return
	}

	if race == nil || len(racers) == 0 {
		b.respondWithError(s, i, "No upcoming race.")
		return
	}

	ids := make([]int64, len(racers))
	for idx, racer := range racers {
		ids[idx] = racer.ID
	}
	odds := service.CalculateOdds(ids, b.cfg.HouseEdge)

	fields := make([]*discordgo.MessageEmbedField, 0, len(racers))
	for _, racer := range racers {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("#%d %s", racer.ID, racer.Name),
			Value:  common.FormatOdds(odds[racer.ID]),
			Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Upcoming Race #%d", race.ID),
		Description: "Current payout multipliers",
		Color:       0x3498DB,
		Fields:      fields,
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to race upcoming: %v", err)
	}
}

func (b *Bot) handleRaceBet(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var racerID, amount int64
	for _, opt := range options {
		switch opt.Name {
		case "racer":
			racerID = opt.IntValue()
		case "amount":
			amount = opt.IntValue()
		}
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring bet response: %v", err)
		return
	}

	race, err := b.races.NextRace(ctx, guildID)
	if err != nil {
		log.Errorf("Error looking up next race for guild %d: %v", guildID, err)
		common.FollowUpWithMessage(s, i, "❌ Unable to look up the next race. Please try again.", true)
		return
	}
	if race == nil {
		common.FollowUpWithMessage(s, i, "❌ No race available.", true)
		return
	}

	receipt, err := b.ledger.PlaceBet(ctx, guildID, userID, race.ID, racerID, amount)
	if err != nil {
		botErr := betPlacementError(err)
		if botErr.Err != nil {
			log.Errorf("Error placing bet for user %d on race %d: %v", userID, race.ID, botErr.Err)
		}
		common.FollowUpWithMessage(s, i, "❌ "+botErr.UserMessage, true)
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Racer", Value: fmt.Sprintf("#%d", racerID), Inline: true},
		{Name: "Amount", Value: fmt.Sprintf("%s coins", common.FormatBalance(receipt.Bet.Amount)), Inline: true},
		{Name: "New Balance", Value: fmt.Sprintf("%s coins", common.FormatBalance(receipt.NewBalance)), Inline: true},
	}
	if receipt.Refunded > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Refunded",
			Value:  fmt.Sprintf("%s coins (previous bet)", common.FormatBalance(receipt.Refunded)),
			Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("🎫 Bet Placed on Race #%d", race.ID),
		Color:  0x2ECC71,
		Fields: fields,
	}
	common.FollowUpWithEmbed(s, i, embed, false)
}

// betPlacementError maps a ledger failure to the message shown to the
// bettor. Unexpected failures keep the underlying error for logging.
func betPlacementError(err error) *common.BotError {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return common.NewBotError("Bet amount must be positive.", nil)
	case errors.Is(err, service.ErrInsufficientFunds):
		return common.NewBotError("Insufficient balance.", nil)
	case errors.Is(err, service.ErrNotFound):
		return common.NewBotError("That racer is not running in this race.", nil)
	default:
		return common.NewBotError("Unable to place bet. Please try again.", err)
	}
}

func (b *Bot) handleRaceWatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	race, err := b.races.NextRace(ctx, guildID)
	if err != nil {
		log.Errorf("Error looking up next race for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to look up the next race. Please try again.")
		return
	}

	racers, err := b.racers.ListActiveRacers(ctx)
	if err != nil {
		log.Errorf("Error listing active racers: %v", err)
		b.respondWithError(s, i, "Unable to list racers. Please try again.")
		return
	}

	if race == nil || len(racers) == 0 {
		b.respondWithError(s, i, "No race to watch.")
		return
	}

	ids := make([]int64, len(racers))
	names := make(map[int64]string, len(racers))
	for idx, racer := range racers {
		ids[idx] = racer.ID
		names[racer.ID] = racer.Name
	}

	placements, eventLog := service.Simulate(ids, b.cfg.CourseLength, race.ID)

	var results strings.Builder
	for idx, id := range placements {
		fmt.Fprintf(&results, "%d. %s\n", idx+1, names[id])
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Race #%d Preview", race.ID),
		Description: strings.Join(eventLog, "\n"),
		Color:       0x9B59B6,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Projected Finish", Value: results.String()},
		},
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Error responding to race watch: %v", err)
	}
}

func (b *Bot) handleRaceHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	entries, err := b.races.History(ctx, guildID, 10)
	if err != nil {
		log.Errorf("Error fetching race history for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to fetch race history. Please try again.")
		return
	}
	if len(entries) == 0 {
		b.respondWithError(s, i, "No finished races yet.")
		return
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(entries))
	for _, entry := range entries {
		value := "No bets placed"
		if entry.WinnerRacerID != nil {
			value = fmt.Sprintf("Winner: racer #%d, paid out %s coins",
				*entry.WinnerRacerID, common.FormatBalance(entry.TotalPayout))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Race #%d (%s)", entry.Race.ID, common.FormatDiscordTimestamp(entry.Race.StartedAt, "d")),
			Value: value,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:  "Recent Races",
		Color:  0x95A5A6,
		Fields: fields,
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to race history: %v", err)
	}
}

func (b *Bot) handleRaceBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	wallet, err := b.ledger.GetOrCreateWallet(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error getting wallet for user %d: %v", userID, err)
		b.respondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	message := fmt.Sprintf("Your current balance: **%s coins**", common.FormatBalance(wallet.Balance))
	if err := common.RespondWithMessage(s, i, message, true); err != nil {
		log.Errorf("Error responding to race balance: %v", err)
	}
}

// interactionIDs extracts the guild and invoking user IDs from a guild
// interaction
func interactionIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	if i.Member == nil || i.Member.User == nil {
		return 0, 0, fmt.Errorf("interaction has no guild member")
	}

	guildID, err = strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
	}

	userID, err = strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user ID %q: %w", i.Member.User.ID, err)
	}

	return guildID, userID, nil
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}
