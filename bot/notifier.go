package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Announce posts a message to the guild's race channel: the system channel
// if one is configured, otherwise the first text channel the bot can see.
func (b *Bot) Announce(ctx context.Context, guildID int64, message string) error {
	channelID, err := b.raceChannel(guildID)
	if err != nil {
		return err
	}

	_, err = b.session.ChannelMessageSend(channelID, message, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send announcement to guild %d: %w", guildID, err)
	}
	return nil
}

// AnnounceEmbed posts a rich embed to the guild's race channel
func (b *Bot) AnnounceEmbed(ctx context.Context, guildID int64, embed *discordgo.MessageEmbed) error {
	channelID, err := b.raceChannel(guildID)
	if err != nil {
		return err
	}

	_, err = b.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send embed to guild %d: %w", guildID, err)
	}
	return nil
}

// DirectMessage sends a private message to a user
func (b *Bot) DirectMessage(ctx context.Context, userID int64, message string) error {
	channel, err := b.session.UserChannelCreate(strconv.FormatInt(userID, 10), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel for user %d: %w", userID, err)
	}

	_, err = b.session.ChannelMessageSend(channel.ID, message, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to DM user %d: %w", userID, err)
	}
	return nil
}

func (b *Bot) raceChannel(guildID int64) (string, error) {
	guild, err := b.session.State.Guild(strconv.FormatInt(guildID, 10))
	if err != nil {
		return "", fmt.Errorf("guild %d not in state: %w", guildID, err)
	}

	if guild.SystemChannelID != "" {
		return guild.SystemChannelID, nil
	}

	for _, channel := range guild.Channels {
		if channel.Type == discordgo.ChannelTypeGuildText {
			return channel.ID, nil
		}
	}

	return "", fmt.Errorf("guild %d has no usable text channel", guildID)
}
