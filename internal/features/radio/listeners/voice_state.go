package listeners

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/voice"
)

const msgChannelEmpty = "🔇 음성 채널에 유저가 없어 재생을 종료했습니다."

// AutoLeave stops playback once the bot has been alone in its voice channel
// for deps.AutoLeaveTimeout. A zero timeout disables it.
type AutoLeave struct {
	deps *shared.Deps

	alone     func(s *discordgo.Session, guildID string) bool
	leave     func(guildID string)
	afterFunc func(time.Duration, func()) *time.Timer

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewAutoLeave(deps *shared.Deps) *AutoLeave {
	a := &AutoLeave{
		deps:      deps,
		alone:     voice.AloneInChannel,
		afterFunc: time.AfterFunc,
		timers:    make(map[string]*time.Timer),
	}
	a.leave = a.stop
	return a
}

func (a *AutoLeave) HandleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if s == nil || vs == nil || vs.GuildID == "" || a.deps.AutoLeaveTimeout <= 0 {
		return
	}

	guildID := vs.GuildID
	if !a.alone(s, guildID) {
		a.cancel(guildID)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, pending := a.timers[guildID]; pending {
		return
	}

	var timer *time.Timer
	timer = a.afterFunc(a.deps.AutoLeaveTimeout, func() {
		a.mu.Lock()
		current := a.timers[guildID]
		if current == timer {
			delete(a.timers, guildID)
		}
		a.mu.Unlock()

		if current == timer && a.alone(s, guildID) {
			a.leave(guildID)
		}
	})
	a.timers[guildID] = timer
}

func (a *AutoLeave) cancel(guildID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if timer, ok := a.timers[guildID]; ok {
		timer.Stop()
		delete(a.timers, guildID)
	}
}

// Pending reports whether a guild is waiting to be left.
func (a *AutoLeave) Pending(guildID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.timers[guildID]
	return ok
}

func (a *AutoLeave) stop(guildID string) {
	if session, ok := a.deps.Radio.Lookup(guildID); ok {
		session.Stop()
	} else {
		a.deps.Voice.Get(guildID).Stop()
	}
	a.deps.Notifiers.For(guildID).NotifySuccess(msgChannelEmpty)
}

func (a *AutoLeave) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for guildID, timer := range a.timers {
		timer.Stop()
		delete(a.timers, guildID)
	}
}
