package radio

import (
	"errors"
	"fmt"

	"github.com/hxnx/radiowave/internal/station"
)

const (
	msgSleepTimerFired = "수면 타이머가 재생을 정지했습니다."
	msgBackupStream    = "%s 스트림에 연결하지 못해 백업 주소로 재생합니다."
)

func deletePrompt(name string) Prompt {
	return Prompt{
		Title:        "방송국 삭제",
		Body:         fmt.Sprintf("\"%s\" 방송국을 삭제할까요?", name),
		ConfirmLabel: "삭제",
		Danger:       true,
	}
}

func deleteAllPrompt() Prompt {
	return Prompt{
		Title:        "전체 삭제",
		Body:         "모든 방송국을 삭제할까요? 되돌릴 수 없습니다!",
		ConfirmLabel: "전체 삭제",
		Danger:       true,
	}
}

func importPrompt(count int) Prompt {
	return Prompt{
		Title:            "방송국 가져오기",
		Body:             fmt.Sprintf("%d개의 방송국을 가져옵니다. 기존 목록에 합칠까요, 아니면 교체할까요?", count),
		ConfirmLabel:     "합치기",
		AlternativeLabel: "교체",
	}
}

// Describe turns an error from a session call into a message for the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, station.ErrValidation):
		return "방송국 정보가 올바르지 않습니다. 이름과 스트림 주소를 확인해 주세요."
	case errors.Is(err, station.ErrIndex):
		return "해당 번호의 방송국을 찾을 수 없습니다."
	case errors.Is(err, station.ErrFormat):
		return "가져오기 파일 형식이 올바르지 않습니다."
	case errors.Is(err, ErrPlaybackFailed):
		return "방송을 재생하지 못했습니다. 다른 방송을 선택해 주세요."
	case errors.Is(err, ErrCancelled):
		return "취소되었습니다."
	case errors.Is(err, ErrNothingToDelete):
		return "삭제할 방송국이 없습니다."
	case errors.Is(err, ErrNoStations):
		return "등록된 방송국이 없습니다."
	case errors.Is(err, ErrPlayerNil):
		return "음성 채널에 연결되어 있지 않습니다."
	default:
		return "요청을 처리하는 중 오류가 발생했습니다."
	}
}
