package shared

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/features/modals"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/voice"
)

var AccentColor = 0xC9A0FF

// Deps are the services every radio interaction handler works with.
type Deps struct {
	Radio            *radio.Manager
	Voice            *voice.Manager
	Awaiter          *modals.Awaiter
	Notifiers        *ChannelNotifiers
	PromptTimeout    time.Duration
	AutoLeaveTimeout time.Duration
}

// Confirmer binds a button prompt to the interaction i.
func (d *Deps) Confirmer(s *discordgo.Session, i *discordgo.InteractionCreate, deferred bool) *modals.Confirmer {
	return &modals.Confirmer{
		Awaiter:     d.Awaiter,
		Session:     s,
		Interaction: i,
		Timeout:     d.PromptTimeout,
		Deferred:    deferred,
	}
}

func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if s == nil || i == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: modals.NoticeComponents("알림", content),
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("failed to respond: %v", err)
	}
}

// RespondError answers with the user-facing description of err.
func RespondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	RespondEphemeral(s, i, radio.Describe(err))
}

func DeferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if s == nil || i == nil {
		return
	}

	const maxContentLength = 2000
	if runes := []rune(content); len(runes) > maxContentLength {
		content = string(runes[:maxContentLength-1]) + "…"
	}

	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Components: modals.NoticeComponents("알림", content),
		Flags:      discordgo.MessageFlagsEphemeral | discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		log.Printf("followup failed: %v", err)
	}
}

func GetOptionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func GetOptionInt(options []*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	for _, opt := range options {
		if opt.Name == name {
			return int(opt.IntValue())
		}
	}
	return 0
}

// GetOptionAttachment resolves an attachment option to the uploaded file.
func GetOptionAttachment(i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.MessageAttachment {
	data := i.ApplicationCommandData()
	if data.Resolved == nil {
		return nil
	}
	for _, opt := range options {
		if opt.Name != name {
			continue
		}
		if id, ok := opt.Value.(string); ok {
			return data.Resolved.Attachments[id]
		}
	}
	return nil
}

func GetInteractionUserID(i *discordgo.InteractionCreate) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
