package commands

import (
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/features/radio/panel"
	shared "github.com/hxnx/radiowave/internal/features/shared"
)

// Panel posts a player panel everyone in the channel can use.
func Panel(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: panel.BuildComponents(session.Status()),
			Flags:      discordgo.MessageFlagsIsComponentsV2,
		},
	})
	if err != nil {
		log.Printf("failed to post radio panel: %v", err)
	}
}
