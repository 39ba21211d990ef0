package listeners

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	radiocmd "github.com/hxnx/radiowave/internal/features/radio/commands"
	"github.com/hxnx/radiowave/internal/features/radio/panel"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/voice"
)

const panelPlayTimeout = 30 * time.Second

func handlePanel(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, action string) {
	session, ok := radiocmd.SessionFor(deps, s, i)
	if !ok {
		return
	}

	switch action {
	case panel.ActionStop:
		session.Stop()
		respondPanel(s, i, session)
		return
	case panel.ActionMute:
		session.ToggleMute()
		respondPanel(s, i, session)
		return
	case panel.ActionToggle:
		if session.IsPlaying() {
			if err := session.Pause(); err != nil {
				shared.RespondError(s, i, err)
				return
			}
			respondPanel(s, i, session)
			return
		}
	}

	// everything left starts a stream, which needs the caller's voice channel
	// and more time than an interaction allows
	if err := radiocmd.JoinCaller(deps, s, i); err != nil {
		shared.RespondEphemeral(s, i, radiocmd.DescribeJoinError(err))
		return
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("radio panel: defer failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), panelPlayTimeout)
	defer cancel()

	var err error
	switch action {
	case panel.ActionPrevious:
		_, err = session.Previous(ctx)
	case panel.ActionNext:
		_, err = session.Next(ctx)
	default:
		err = session.Resume()
		if errors.Is(err, voice.ErrNotPaused) {
			_, err = session.PlayCurrent(ctx)
		} else if err != nil {
			err = fmt.Errorf("%w: %v", radio.ErrPlaybackFailed, err)
		}
	}
	if err != nil {
		log.Printf("radio panel: %s failed in %s: %v", action, i.GuildID, err)
		shared.FollowupEphemeral(s, i, radio.Describe(err))
	}

	components := panel.BuildComponents(session.Status())
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Components: &components,
	}); err != nil {
		log.Printf("radio panel: update failed: %v", err)
	}
}

func respondPanel(s *discordgo.Session, i *discordgo.InteractionCreate, session *radio.Session) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Components: panel.BuildComponents(session.Status()),
			Flags:      discordgo.MessageFlagsIsComponentsV2,
		},
	})
	if err != nil {
		log.Printf("radio panel: update failed: %v", err)
	}
}
