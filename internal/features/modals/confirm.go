package modals

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/radio"
)

const (
	ConfirmCustomIDPrefix = "radio_confirm"

	answerConfirm     = "yes"
	answerAlternative = "alt"
	answerCancel      = "no"
)

var (
	promptColor = 0xC9A0FF
	dangerColor = 0xE5484D
)

// Confirmer asks the invoking user with a button prompt. A prompt left
// unanswered until the timeout counts as Undecided.
type Confirmer struct {
	Awaiter     *Awaiter
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Timeout     time.Duration
	// Deferred means Interaction was already acknowledged, so the prompt goes
	// out as a follow-up message.
	Deferred bool

	prompted bool
	message  *discordgo.Message
	answer   *discordgo.InteractionCreate
}

func (c *Confirmer) customID(answer string) string {
	return ConfirmCustomIDPrefix + ":" + c.Interaction.ID + ":" + answer
}

func (c *Confirmer) Confirm(ctx context.Context, prompt radio.Prompt) (radio.Decision, error) {
	if c.Awaiter == nil || c.Session == nil || c.Interaction == nil {
		return radio.Undecided, errors.New("confirmer is not bound to an interaction")
	}

	ids := []string{c.customID(answerConfirm), c.customID(answerCancel)}
	if prompt.AlternativeLabel != "" {
		ids = append(ids, c.customID(answerAlternative))
	}

	if err := c.send(buildPrompt(prompt, c.customID)); err != nil {
		return radio.Undecided, err
	}
	c.prompted = true

	timeout := c.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	resp, err := c.Awaiter.AwaitComponents(c.Interaction, ids, timeout)
	if errors.Is(err, ErrTimeout) {
		return radio.Undecided, nil
	}
	if err != nil {
		return radio.Undecided, err
	}
	c.answer = resp.Interaction

	switch resp.Data.CustomID[strings.LastIndex(resp.Data.CustomID, ":")+1:] {
	case answerConfirm:
		return radio.Confirmed, nil
	case answerAlternative:
		return radio.Alternative, nil
	default:
		return radio.Undecided, nil
	}
}

func (c *Confirmer) send(components []discordgo.MessageComponent) error {
	if c.Deferred {
		msg, err := c.Session.FollowupMessageCreate(c.Interaction.Interaction, true, &discordgo.WebhookParams{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		})
		c.message = msg
		return err
	}
	return c.Session.InteractionRespond(c.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
}

// Prompted reports whether a prompt message exists that Finish can replace.
func (c *Confirmer) Prompted() bool {
	return c.prompted
}

// Finish replaces the prompt with the outcome and removes its buttons.
func (c *Confirmer) Finish(content string) {
	components := NoticeComponents("알림", content)

	var err error
	switch {
	case c.answer != nil:
		err = c.Session.InteractionRespond(c.answer.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Components: components,
				Flags:      discordgo.MessageFlagsIsComponentsV2,
			},
		})
	case c.Deferred && c.message != nil:
		_, err = c.Session.FollowupMessageEdit(c.Interaction.Interaction, c.message.ID, &discordgo.WebhookEdit{
			Components: &components,
		})
	case c.prompted:
		_, err = c.Session.InteractionResponseEdit(c.Interaction.Interaction, &discordgo.WebhookEdit{
			Components: &components,
		})
	default:
		return
	}
	if err != nil {
		log.Printf("failed to finish confirmation: %v", err)
	}
}

func buildPrompt(prompt radio.Prompt, customID func(string) string) []discordgo.MessageComponent {
	accent := promptColor
	confirmStyle := discordgo.PrimaryButton
	if prompt.Danger {
		accent = dangerColor
		confirmStyle = discordgo.DangerButton
	}

	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Style:    confirmStyle,
			Label:    prompt.ConfirmLabel,
			CustomID: customID(answerConfirm),
		},
	}
	if prompt.AlternativeLabel != "" {
		buttons = append(buttons, discordgo.Button{
			Style:    discordgo.SecondaryButton,
			Label:    prompt.AlternativeLabel,
			CustomID: customID(answerAlternative),
		})
	}
	buttons = append(buttons, discordgo.Button{
		Style:    discordgo.SecondaryButton,
		Label:    "취소",
		CustomID: customID(answerCancel),
	})

	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall
	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &accent,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "**" + prompt.Title + "**"},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.TextDisplay{Content: prompt.Body},
				discordgo.ActionsRow{Components: buttons},
			},
		},
	}
}

// NoticeComponents is the small titled container used for replies.
func NoticeComponents(title, content string) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &promptColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: title},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.TextDisplay{Content: content},
			},
		},
	}
}
