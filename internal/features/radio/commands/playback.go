package commands

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/station"
	"github.com/hxnx/radiowave/internal/voice"
)

// PlayFunc starts playback on a session and reports what is playing.
type PlayFunc func(ctx context.Context, session *radio.Session) (station.Station, error)

func Play(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	index := stationIndex(options)
	if index < 0 {
		StartPlayback(deps, s, i, func(ctx context.Context, session *radio.Session) (station.Station, error) {
			return session.PlayCurrent(ctx)
		})
		return
	}
	StartPlayback(deps, s, i, func(ctx context.Context, session *radio.Session) (station.Station, error) {
		return session.Play(ctx, index)
	})
}

func Step(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, forward bool) {
	StartPlayback(deps, s, i, func(ctx context.Context, session *radio.Session) (station.Station, error) {
		if forward {
			return session.Next(ctx)
		}
		return session.Previous(ctx)
	})
}

// StartPlayback joins the caller's voice channel and runs play. The answer is
// deferred because connecting to a stream can take a while.
func StartPlayback(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, play PlayFunc) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}
	if session.Len() == 0 {
		shared.RespondError(s, i, radio.ErrNoStations)
		return
	}
	if err := JoinCaller(deps, s, i); err != nil {
		shared.RespondEphemeral(s, i, DescribeJoinError(err))
		return
	}
	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("play defer failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()

	played, err := play(ctx, session)
	if err != nil {
		log.Printf("radio playback failed in %s: %v", i.GuildID, err)
		shared.FollowupEphemeral(s, i, radio.Describe(err))
		return
	}
	shared.FollowupEphemeral(s, i, fmt.Sprintf("▶️ **%s** 재생 중", played.Name))
}

func Stop(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	session.Stop()
	shared.RespondEphemeral(s, i, "⏹️ 재생을 정지했습니다.")
}

func TogglePause(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	if session.IsPlaying() {
		if err := session.Pause(); err != nil {
			shared.RespondError(s, i, err)
			return
		}
		shared.RespondEphemeral(s, i, "⏸️ 일시정지했습니다.")
		return
	}

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("resume defer failed: %v", err)
		return
	}
	if err := session.Resume(); err != nil {
		if errors.Is(err, voice.ErrNotPaused) {
			shared.FollowupEphemeral(s, i, "일시정지된 방송이 없습니다.")
			return
		}
		log.Printf("radio resume failed in %s: %v", i.GuildID, err)
		shared.FollowupEphemeral(s, i, radio.Describe(fmt.Errorf("%w: %v", radio.ErrPlaybackFailed, err)))
		return
	}
	shared.FollowupEphemeral(s, i, "▶️ 다시 재생합니다.")
}

func Volume(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	volume := session.SetVolume(ctx, float64(shared.GetOptionInt(options, optionVolume))/100)
	shared.RespondEphemeral(s, i, fmt.Sprintf("🔊 볼륨을 %d%%로 설정했습니다.", int(volume*100+0.5)))
}

func Mute(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	if session.ToggleMute() {
		shared.RespondEphemeral(s, i, "🔇 음소거했습니다.")
		return
	}
	shared.RespondEphemeral(s, i, "🔊 음소거를 해제했습니다.")
}

func SleepTimer(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	hours := shared.GetOptionInt(options, optionHours)
	minutes := shared.GetOptionInt(options, optionMinutes)
	deadline := session.SetSleepTimer(hours, minutes)
	if deadline.IsZero() {
		shared.RespondEphemeral(s, i, "수면 타이머를 해제했습니다.")
		return
	}
	shared.RespondEphemeral(s, i, fmt.Sprintf("⏰ <t:%d:R>에 재생을 멈춥니다. (%s)", deadline.Unix(), formatDuration(hours, minutes)))
}

func formatDuration(hours, minutes int) string {
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d시간 %d분", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d시간", hours)
	default:
		return fmt.Sprintf("%d분", minutes)
	}
}
