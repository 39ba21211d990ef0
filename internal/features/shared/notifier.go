package shared

import (
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/features/modals"
	"github.com/hxnx/radiowave/internal/radio"
)

var errorColor = 0xE5484D

type channelTarget struct {
	session   *discordgo.Session
	channelID string
}

// ChannelNotifiers sends asynchronous radio events to the text channel where
// the guild last used a radio command.
type ChannelNotifiers struct {
	mu      sync.RWMutex
	targets map[string]channelTarget
}

func NewChannelNotifiers() *ChannelNotifiers {
	return &ChannelNotifiers{targets: make(map[string]channelTarget)}
}

func (n *ChannelNotifiers) Remember(s *discordgo.Session, guildID, channelID string) {
	if s == nil || guildID == "" || channelID == "" {
		return
	}

	n.mu.Lock()
	n.targets[guildID] = channelTarget{session: s, channelID: channelID}
	n.mu.Unlock()
}

func (n *ChannelNotifiers) For(guildID string) radio.Notifier {
	return &channelNotifier{parent: n, guildID: guildID}
}

func (n *ChannelNotifiers) send(guildID, title, content string, accent int) {
	n.mu.RLock()
	target, ok := n.targets[guildID]
	n.mu.RUnlock()
	if !ok {
		return
	}

	components := modals.NoticeComponents(title, content)
	if container, ok := components[0].(discordgo.Container); ok {
		container.AccentColor = &accent
		components[0] = container
	}

	_, err := target.session.ChannelMessageSendComplex(target.channelID, &discordgo.MessageSend{
		Components: components,
		Flags:      discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		log.Printf("failed to send radio notice to %s: %v", target.channelID, err)
	}
}

type channelNotifier struct {
	parent  *ChannelNotifiers
	guildID string
}

func (c *channelNotifier) NotifyError(message string) {
	c.parent.send(c.guildID, "⚠️ 오류", message, errorColor)
}

func (c *channelNotifier) NotifySuccess(message string) {
	c.parent.send(c.guildID, "📻 라디오", message, AccentColor)
}
