package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"derby/bot/common"
	"derby/models"
	"derby/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleDerbyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Specify a subcommand.")
		return
	}

	if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageGuild == 0 {
		b.respondWithError(s, i, "You need the Manage Server permission for this command.")
		return
	}

	switch options[0].Name {
	case "addracer":
		b.handleAddRacer(s, i, options[0].Options)
	case "editracer":
		b.handleEditRacer(s, i, options[0].Options)
	case "startrace":
		b.handleStartRace(s, i)
	case "cancelrace":
		b.handleCancelRace(s, i)
	case "settings":
		b.handleSettings(s, i, options[0].Options)
	}
}

func (b *Bot) handleAddRacer(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var name string
	var owner *discordgo.User
	for _, opt := range options {
		switch opt.Name {
		case "name":
			name = opt.StringValue()
		case "owner":
			owner = opt.UserValue(s)
		}
	}

	if name == "" || owner == nil {
		b.respondWithError(s, i, "Both a name and an owner are required.")
		return
	}

	ownerID, err := strconv.ParseInt(owner.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing owner ID %s: %v", owner.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	racer, err := b.racers.AddRacer(ctx, name, ownerID)
	if err != nil {
		log.Errorf("Error adding racer %q: %v", name, err)
		b.respondWithError(s, i, "Unable to add racer. Please try again.")
		return
	}

	message := fmt.Sprintf("✅ Racer **%s** added with ID **%d** (owner <@%s>)", racer.Name, racer.ID, owner.ID)
	if err := common.RespondWithMessage(s, i, message, false); err != nil {
		log.Errorf("Error responding to addracer: %v", err)
	}
}

func (b *Bot) handleEditRacer(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var racerID int64
	var name string
	for _, opt := range options {
		switch opt.Name {
		case "racer":
			racerID = opt.IntValue()
		case "name":
			name = opt.StringValue()
		}
	}

	racer, err := b.racers.EditRacer(ctx, racerID, &models.RacerUpdate{Name: &name})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.respondWithError(s, i, "Racer not found.")
			return
		}
		log.Errorf("Error editing racer %d: %v", racerID, err)
		b.respondWithError(s, i, "Unable to edit racer. Please try again.")
		return
	}

	message := fmt.Sprintf("✅ Racer **#%d** renamed to **%s**", racer.ID, racer.Name)
	if err := common.RespondWithMessage(s, i, message, false); err != nil {
		log.Errorf("Error responding to editracer: %v", err)
	}
}

func (b *Bot) handleStartRace(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	race, err := b.races.ForceStartRace(ctx, guildID)
	if err != nil {
		log.Errorf("Error force-starting race for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to start a race. Please try again.")
		return
	}

	message := fmt.Sprintf("✅ Race **#%d** created. It will run on the next tick.", race.ID)
	if err := common.RespondWithMessage(s, i, message, false); err != nil {
		log.Errorf("Error responding to startrace: %v", err)
	}
}

func (b *Bot) handleCancelRace(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
		b.respondWithError(s, i, "No race to cancel.")
		return
	}

	if err := b.races.CancelRace(ctx, race.ID); err != nil {
		log.Errorf("Error cancelling race %d: %v", race.ID, err)
		b.respondWithError(s, i, "Unable to cancel the race. Please try again.")
		return
	}

	message := fmt.Sprintf("✅ Race **#%d** cancelled. All bets refunded.", race.ID)
	if err := common.RespondWithMessage(s, i, message, false); err != nil {
		log.Errorf("Error responding to cancelrace: %v", err)
	}
}

func (b *Bot) handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	settings, err := b.settings.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.Errorf("Error getting settings for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to load guild settings. Please try again.")
		return
	}

	changed := false
	for _, opt := range options {
		switch opt.Name {
		case "frequency":
			settings.RaceFrequency = int(opt.IntValue())
			changed = true
		case "default_wallet":
			settings.DefaultWallet = opt.IntValue()
			changed = true
		case "retirement_threshold":
			settings.RetirementThreshold = int(opt.IntValue())
			changed = true
		}
	}

	if changed {
		if err := b.settings.UpdateSettings(ctx, settings); err != nil {
			if errors.Is(err, service.ErrInvalidSettings) {
				b.respondWithError(s, i, "Invalid settings value.")
				return
			}
			log.Errorf("Error updating settings for guild %d: %v", guildID, err)
			b.respondWithError(s, i, "Unable to save guild settings. Please try again.")
			return
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: "Derby Settings",
		Color: 0xE67E22,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Races per day", Value: strconv.Itoa(settings.RaceFrequency), Inline: true},
			{Name: "Starting wallet", Value: common.FormatBalance(settings.DefaultWallet), Inline: true},
			{Name: "Retirement threshold", Value: strconv.Itoa(settings.RetirementThreshold), Inline: true},
		},
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Error responding to settings: %v", err)
	}
}
