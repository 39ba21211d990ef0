package commands

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/voice"
)

const (
	CommandName = "라디오"

	optionNumber  = "번호"
	optionTab     = "탭"
	optionSearch  = "검색"
	optionName    = "이름"
	optionURL     = "주소"
	optionGenre   = "장르"
	optionImage   = "이미지"
	optionBackup  = "백업주소"
	optionVolume  = "크기"
	optionHours   = "시간"
	optionMinutes = "분"
	optionFile    = "파일"

	lookupTimeout = 5 * time.Second
	playTimeout   = 30 * time.Second
)

var (
	minStationNumber = 1.0
	minZero          = 0.0
)

func stationNumberOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        optionNumber,
		Description: "목록에 표시된 방송국 번호",
		Required:    required,
		MinValue:    &minStationNumber,
	}
}

func stationFieldOptions(required bool) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: optionName, Description: "방송국 이름", Required: required},
		{Type: discordgo.ApplicationCommandOptionString, Name: optionURL, Description: "스트림 주소", Required: required},
		{Type: discordgo.ApplicationCommandOptionString, Name: optionGenre, Description: "장르"},
		{Type: discordgo.ApplicationCommandOptionString, Name: optionImage, Description: "로고 이미지 주소"},
		{Type: discordgo.ApplicationCommandOptionString, Name: optionBackup, Description: "백업 스트림 주소"},
	}
}

// Command is the /라디오 command group.
var Command = &discordgo.ApplicationCommand{
	Name:        CommandName,
	Description: "인터넷 라디오 재생/관리 명령어",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "목록",
			Description: "방송국 목록을 표시합니다",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionTab,
					Description: "전체/즐겨찾기/최근 재생",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "전체", Value: "all"},
						{Name: "즐겨찾기", Value: "favorites"},
						{Name: "최근 재생", Value: "recent"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionSearch,
					Description: "이름 또는 장르 검색",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "재생",
			Description: "방송국을 재생합니다 (번호가 없으면 현재 방송국)",
			Options:     []*discordgo.ApplicationCommandOption{stationNumberOption(false)},
		},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "정지", Description: "재생을 정지하고 음성 채널에서 나갑니다"},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "일시정지", Description: "일시정지하거나 다시 재생합니다"},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "다음", Description: "다음 방송국을 재생합니다"},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "이전", Description: "이전 방송국을 재생합니다"},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "즐겨찾기",
			Description: "즐겨찾기를 추가하거나 해제합니다",
			Options:     []*discordgo.ApplicationCommandOption{stationNumberOption(true)},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "추가",
			Description: "방송국을 추가합니다",
			Options:     stationFieldOptions(true),
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "수정",
			Description: "방송국 정보를 수정합니다",
			Options:     []*discordgo.ApplicationCommandOption{stationNumberOption(true)},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "삭제",
			Description: "방송국을 삭제합니다",
			Options:     []*discordgo.ApplicationCommandOption{stationNumberOption(true)},
		},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "전체삭제", Description: "모든 방송국을 삭제합니다"},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "볼륨",
			Description: "볼륨을 설정합니다",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        optionVolume,
					Description: "0-100",
					Required:    true,
					MinValue:    &minZero,
					MaxValue:    100,
				},
			},
		},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "음소거", Description: "음소거를 전환합니다"},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "수면타이머",
			Description: "지정한 시간 뒤 재생을 멈춥니다 (0시간 0분이면 해제)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: optionHours, Description: "시간", MinValue: &minZero, MaxValue: 24},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: optionMinutes, Description: "분", MinValue: &minZero, MaxValue: 59},
			},
		},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "내보내기", Description: "방송국 목록을 파일로 내보냅니다"},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "가져오기",
			Description: "내보낸 파일에서 방송국을 가져옵니다",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionAttachment, Name: optionFile, Description: "radiowave-stations.json", Required: true},
			},
		},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "상태", Description: "재생 상태와 봇 상태를 확인합니다"},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "패널", Description: "채널에 라디오 조작 패널을 띄웁니다"},
	},
}

// Handle dispatches a /라디오 subcommand.
func Handle(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "이 명령어는 서버에서만 사용할 수 있습니다.")
		return
	}
	deps.Notifiers.Remember(s, i.GuildID, i.ChannelID)

	sub := subcommandOption(i.ApplicationCommandData())
	if sub == nil {
		shared.RespondEphemeral(s, i, "사용할 명령을 선택해 주세요.")
		return
	}

	switch sub.Name {
	case "목록":
		List(deps, s, i, sub.Options)
	case "재생":
		Play(deps, s, i, sub.Options)
	case "정지":
		Stop(deps, s, i)
	case "일시정지":
		TogglePause(deps, s, i)
	case "다음":
		Step(deps, s, i, true)
	case "이전":
		Step(deps, s, i, false)
	case "즐겨찾기":
		ToggleFavorite(deps, s, i, sub.Options)
	case "추가":
		Add(deps, s, i, sub.Options)
	case "수정":
		Edit(deps, s, i, sub.Options)
	case "삭제":
		Delete(deps, s, i, sub.Options)
	case "전체삭제":
		DeleteAll(deps, s, i)
	case "볼륨":
		Volume(deps, s, i, sub.Options)
	case "음소거":
		Mute(deps, s, i)
	case "수면타이머":
		SleepTimer(deps, s, i, sub.Options)
	case "내보내기":
		Export(deps, s, i)
	case "가져오기":
		Import(deps, s, i, sub.Options)
	case "상태":
		Status(deps, s, i)
	case "패널":
		Panel(deps, s, i)
	default:
		shared.RespondEphemeral(s, i, "지원하지 않는 라디오 명령입니다.")
	}
}

func subcommandOption(data discordgo.ApplicationCommandInteractionData) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt
		}
	}
	return nil
}

// SessionFor returns the guild's radio session, answering the interaction
// itself when the session cannot be loaded.
func SessionFor(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) (*radio.Session, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	session, err := deps.Radio.Session(ctx, i.GuildID)
	if err != nil {
		log.Printf("radio session load failed for %s: %v", i.GuildID, err)
		shared.RespondEphemeral(s, i, "방송국 목록을 불러오지 못했습니다.")
		return nil, false
	}
	return session, true
}

// stationIndex converts the 1-based number shown to users.
func stationIndex(options []*discordgo.ApplicationCommandInteractionDataOption) int {
	return shared.GetOptionInt(options, optionNumber) - 1
}

// JoinCaller connects the guild's player to the caller's voice channel.
func JoinCaller(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := shared.GetInteractionUserID(i)
	if userID == "" {
		return errors.New("missing user id for interaction")
	}
	return deps.Voice.Get(i.GuildID).JoinUser(s, userID)
}

// DescribeJoinError explains a failed voice join to the caller.
func DescribeJoinError(err error) string {
	if errors.Is(err, voice.ErrNoVoiceChannel) {
		return "먼저 음성 채널에 입장해 주세요."
	}
	log.Printf("voice join failed: %v", err)
	return "음성 채널에 연결하지 못했습니다."
}
