// Package session creates the gateway connection the console runs over.
package session

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/small-frappuccino/mirrorcore/pkg/errutil"
	"github.com/small-frappuccino/mirrorcore/pkg/log"
)

// New creates and opens a Discord session with the intents the settings
// console needs. MessageContent is required so reply-correlated edit
// sessions can read typed values.
func New(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}

	var s *discordgo.Session
	if err := errutil.HandleDiscordError("create session", func() error {
		var err error
		s, err = discordgo.New("Bot " + token)
		return err
	}); err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	log.Discord().Info("Connecting to Discord")
	if err := errutil.HandleDiscordError("connect", s.Open); err != nil {
		return nil, fmt.Errorf("connect to discord: %w", err)
	}
	log.Discord().Info("Connected to Discord")

	return s, nil
}
