package commands

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/features/radio/stationview"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/station"
)

func List(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	tab, err := station.ParseTab(shared.GetOptionString(options, optionTab))
	if err != nil {
		shared.RespondError(s, i, err)
		return
	}

	RespondList(deps, s, i, stationview.Request{
		Tab:     tab,
		Search:  strings.TrimSpace(shared.GetOptionString(options, optionSearch)),
		Page:    1,
		PerPage: stationview.DefaultPerPage,
	}, discordgo.InteractionResponseChannelMessageWithSource)
}

// RespondList renders one page of the guild's stations. Use
// InteractionResponseUpdateMessage to redraw an existing list.
func RespondList(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, req stationview.Request, respType discordgo.InteractionResponseType) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	components, _ := stationview.BuildStationComponents(session.View(req.Tab, req.Search), req)

	flags := discordgo.MessageFlagsIsComponentsV2
	if respType == discordgo.InteractionResponseChannelMessageWithSource {
		flags |= discordgo.MessageFlagsEphemeral
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: respType,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      flags,
		},
	}); err != nil {
		log.Printf("station list respond failed: %v", err)
	}
}
