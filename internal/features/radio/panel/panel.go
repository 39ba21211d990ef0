package panel

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/radio"
)

const CustomIDPrefix = "radio_panel"

const (
	ActionPrevious = "prev"
	ActionToggle   = "toggle"
	ActionNext     = "next"
	ActionStop     = "stop"
	ActionMute     = "mute"
)

func CustomID(action string) string {
	return CustomIDPrefix + ":" + action
}

func ActionFromCustomID(customID string) (string, bool) {
	action, ok := strings.CutPrefix(customID, CustomIDPrefix+":")
	if !ok {
		return "", false
	}
	switch action {
	case ActionPrevious, ActionToggle, ActionNext, ActionStop, ActionMute:
		return action, true
	default:
		return "", false
	}
}

// BuildComponents renders the player panel: the current station with its
// logo, the volume and sleep timer, and the transport buttons.
func BuildComponents(status radio.Status) []discordgo.MessageComponent {
	accent := 0x3C6AA1
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	heading := "⏹️ **정지됨**"
	if status.Playing {
		heading = "▶️ **현재 재생 중**"
	} else if status.HasCurrent {
		heading = "⏸️ **일시정지됨**"
	}

	components := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: heading},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}

	nowPlaying := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "선택된 방송국이 없습니다."},
	}
	if status.HasCurrent {
		nowPlaying = []discordgo.MessageComponent{
			discordgo.TextDisplay{Content: fmt.Sprintf("%d. **%s**", status.Current+1, EscapeText(status.Station.Name))},
		}
		if status.Station.Genre != "" {
			nowPlaying = append(nowPlaying, discordgo.TextDisplay{Content: "-# " + EscapeText(status.Station.Genre)})
		}
	}

	if status.HasCurrent && status.Station.Image != "" {
		components = append(components, discordgo.Section{
			Components: nowPlaying,
			Accessory: discordgo.Thumbnail{
				Media: discordgo.UnfurledMediaItem{URL: status.Station.Image},
			},
		})
	} else {
		components = append(components, nowPlaying...)
	}

	meta := []string{fmt.Sprintf("🔊 볼륨 **%d%%**", int(status.Volume*100+0.5))}
	if status.Muted {
		meta[0] = "🔇 **음소거**"
	}
	if !status.SleepDeadline.IsZero() {
		meta = append(meta, fmt.Sprintf("⏰ <t:%d:R> 정지", status.SleepDeadline.Unix()))
	}
	meta = append(meta, fmt.Sprintf("📻 방송국 **%d개**", status.Stations))

	toggleLabel := "재생"
	toggleStyle := discordgo.SuccessButton
	if status.Playing {
		toggleLabel = "일시정지"
		toggleStyle = discordgo.SecondaryButton
	}
	muteLabel := "음소거"
	if status.Muted {
		muteLabel = "음소거 해제"
	}
	empty := status.Stations == 0

	components = append(components,
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
		discordgo.TextDisplay{Content: strings.Join(meta, " • ")},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "이전",
					CustomID: CustomID(ActionPrevious),
					Disabled: empty,
				},
				discordgo.Button{
					Style:    toggleStyle,
					Label:    toggleLabel,
					CustomID: CustomID(ActionToggle),
					Disabled: empty,
				},
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "다음",
					CustomID: CustomID(ActionNext),
					Disabled: empty,
				},
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Label:    "정지",
					CustomID: CustomID(ActionStop),
					Disabled: !status.Playing && !status.HasCurrent,
				},
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    muteLabel,
					CustomID: CustomID(ActionMute),
				},
			},
		},
	)

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &accent,
			Components:  components,
		},
	}
}

// EscapeText keeps station names from being read as markdown.
func EscapeText(text string) string {
	replacer := strings.NewReplacer(
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"~", "\\~",
		"|", "\\|",
		">", "\\>",
	)
	return replacer.Replace(text)
}
