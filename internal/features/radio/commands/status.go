package commands

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/radio"
)

const StatusRefreshCustomID = "radio_status_refresh"

var botStartedAt = time.Now()

// BotStatus holds the process figures shown next to the radio status.
type BotStatus struct {
	Latency  time.Duration
	Guilds   int
	Shards   int
	Playing  int
	Uptime   time.Duration
	MemoryMB float64
}

func botStatus(deps *shared.Deps, s *discordgo.Session) BotStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := BotStatus{
		Latency:  s.HeartbeatLatency().Round(time.Millisecond),
		Shards:   max(1, s.ShardCount),
		Playing:  deps.Radio.Playing(),
		Uptime:   time.Since(botStartedAt).Round(time.Second),
		MemoryMB: float64(mem.Alloc) / 1024.0 / 1024.0,
	}
	if s.State != nil {
		status.Guilds = len(s.State.Guilds)
	}
	return status
}

func BuildStatusComponents(status radio.Status, bot BotStatus, now time.Time) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall
	accent := shared.AccentColor

	nowPlaying := "재생 중인 방송이 없습니다."
	if status.HasCurrent {
		state := "⏸️ 정지됨"
		if status.Playing {
			state = "▶️ 재생 중"
		}
		nowPlaying = fmt.Sprintf("%s · %d. **%s**", state, status.Current+1, status.Station.Name)
	}

	volume := fmt.Sprintf("%d%%", int(status.Volume*100+0.5))
	if status.Muted {
		volume += " (음소거)"
	}

	sleep := "꺼짐"
	if !status.SleepDeadline.IsZero() {
		sleep = fmt.Sprintf("<t:%d:R>", status.SleepDeadline.Unix())
	}

	theme := "라이트"
	if status.DarkMode {
		theme = "다크"
	}

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &accent,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "📻 **라디오 상태**"},
				discordgo.TextDisplay{Content: nowPlaying},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.TextDisplay{Content: fmt.Sprintf("**방송국:** %d개 • **볼륨:** %s", status.Stations, volume)},
				discordgo.TextDisplay{Content: fmt.Sprintf("**수면 타이머:** %s • **테마:** %s", sleep, theme)},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.Section{
					Components: []discordgo.MessageComponent{
						discordgo.TextDisplay{Content: fmt.Sprintf("**게이트웨이 지연:** %s", bot.Latency)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**서버 수:** %d • **샤드 수:** %d • **재생 중인 서버:** %d", bot.Guilds, bot.Shards, bot.Playing)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**업타임:** %s • **메모리 사용량:** %.2f MB", bot.Uptime, bot.MemoryMB)},
					},
					Accessory: discordgo.Button{
						Style:    discordgo.PrimaryButton,
						Label:    "새로고침",
						CustomID: StatusRefreshCustomID,
					},
				},
				discordgo.TextDisplay{Content: fmt.Sprintf("갱신됨 <t:%d:R>", now.Unix())},
			},
		},
	}
}

func Status(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	RespondStatus(deps, s, i, discordgo.InteractionResponseChannelMessageWithSource)
}

// RespondStatus renders the status card. The refresh button answers with
// InteractionResponseUpdateMessage.
func RespondStatus(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, respType discordgo.InteractionResponseType) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	components := BuildStatusComponents(session.Status(), botStatus(deps, s), time.Now())

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: respType,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("failed to respond to status: %v", err)
	}
}
