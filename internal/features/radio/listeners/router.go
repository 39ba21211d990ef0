package listeners

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/features/modals"
	radiocmd "github.com/hxnx/radiowave/internal/features/radio/commands"
	"github.com/hxnx/radiowave/internal/features/radio/panel"
	"github.com/hxnx/radiowave/internal/features/radio/stationview"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/station"
)

func RouteRadioComponent(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "radio_") {
		return false
	}

	HandleRadioComponent(deps, s, i)
	return true
}

func HandleRadioComponent(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if s == nil || i == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "이 명령어는 서버에서만 사용할 수 있습니다.")
		return
	}
	deps.Notifiers.Remember(s, i.GuildID, i.ChannelID)

	data := i.MessageComponentData()
	switch {
	case strings.HasPrefix(data.CustomID, stationview.PageCustomIDPrefix+":"):
		handlePage(deps, s, i, data.CustomID)
	case strings.HasPrefix(data.CustomID, stationview.PlayCustomIDPrefix+":"):
		handlePlay(deps, s, i, data.CustomID)
	case data.CustomID == stationview.FavoriteCustomIDPrefix:
		handleFavorite(deps, s, i, data.Values)
	case strings.HasPrefix(data.CustomID, panel.CustomIDPrefix+":"):
		action, ok := panel.ActionFromCustomID(data.CustomID)
		if !ok {
			shared.RespondEphemeral(s, i, "지원하지 않는 버튼입니다.")
			return
		}
		handlePanel(deps, s, i, action)
	case data.CustomID == radiocmd.StatusRefreshCustomID:
		radiocmd.RespondStatus(deps, s, i, discordgo.InteractionResponseUpdateMessage)
	case strings.HasPrefix(data.CustomID, modals.ConfirmCustomIDPrefix+":"):
		// nobody is waiting for this prompt any more
		shared.RespondEphemeral(s, i, "만료된 요청입니다. 명령어를 다시 실행해 주세요.")
	}
}

func handlePage(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	req, ok := stationview.ParsePageCustomID(customID)
	if !ok {
		shared.RespondEphemeral(s, i, "유효하지 않은 페이지 요청입니다.")
		return
	}
	radiocmd.RespondList(deps, s, i, req, discordgo.InteractionResponseUpdateMessage)
}

func handlePlay(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	id, ok := stationview.StationIDFromCustomID(customID)
	if !ok {
		shared.RespondEphemeral(s, i, "유효하지 않은 선택입니다.")
		return
	}

	radiocmd.StartPlayback(deps, s, i, func(ctx context.Context, session *radio.Session) (station.Station, error) {
		index, found := session.IndexOf(id)
		if !found {
			return station.Station{}, station.ErrIndex
		}
		return session.Play(ctx, index)
	})
}

func handleFavorite(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, values []string) {
	if len(values) == 0 {
		shared.RespondEphemeral(s, i, "선택된 항목이 없습니다.")
		return
	}

	session, ok := radiocmd.SessionFor(deps, s, i)
	if !ok {
		return
	}

	index, found := session.IndexOf(values[0])
	if !found {
		shared.RespondError(s, i, station.ErrIndex)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	favorite, err := session.ToggleFavorite(ctx, index)
	if err != nil {
		log.Printf("favorite toggle failed in %s: %v", i.GuildID, err)
		shared.RespondError(s, i, err)
		return
	}

	st, _ := session.Station(index)
	message := fmt.Sprintf("**%s** 방송국을 즐겨찾기에서 해제했습니다.", st.Name)
	if favorite {
		message = fmt.Sprintf("⭐ **%s** 방송국을 즐겨찾기에 추가했습니다.", st.Name)
	}
	shared.RespondEphemeral(s, i, message)
}
