package modals

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

var ErrTimeout = errors.New("interaction timed out")

type ModalResponse struct {
	Interaction *discordgo.InteractionCreate
	Data        discordgo.ModalSubmitInteractionData
}

type ComponentResponse struct {
	Interaction *discordgo.InteractionCreate
	Data        discordgo.MessageComponentInteractionData
}

// Awaiter routes follow-up interactions (modal submits, button clicks) to the
// handler that is waiting for them. Waits are keyed by custom ID and user, so
// other users cannot answer someone else's prompt.
type Awaiter struct {
	pending map[string]chan *discordgo.InteractionCreate
	mu      sync.RWMutex
}

func NewAwaiter() *Awaiter {
	return &Awaiter{
		pending: make(map[string]chan *discordgo.InteractionCreate),
	}
}

func (a *Awaiter) register(userID string, customIDs []string) (chan *discordgo.InteractionCreate, func()) {
	ch := make(chan *discordgo.InteractionCreate, 1)
	keys := make([]string, 0, len(customIDs))
	for _, id := range customIDs {
		keys = append(keys, id+":"+userID)
	}

	a.mu.Lock()
	for _, key := range keys {
		a.pending[key] = ch
	}
	a.mu.Unlock()

	return ch, func() {
		a.mu.Lock()
		for _, key := range keys {
			delete(a.pending, key)
		}
		a.mu.Unlock()
	}
}

func (a *Awaiter) ShowAndAwaitModal(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	modal *discordgo.InteractionResponseData,
	timeout time.Duration,
) (*ModalResponse, error) {
	userID := getUserID(i)
	if userID == "" {
		return nil, fmt.Errorf("missing user id for interaction")
	}

	ch, release := a.register(userID, []string{modal.CustomID})
	defer release()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modal,
	})
	if err != nil {
		return nil, err
	}

	select {
	case submission := <-ch:
		if submission.Type != discordgo.InteractionModalSubmit {
			return nil, fmt.Errorf("unexpected interaction type: %v", submission.Type)
		}
		return &ModalResponse{
			Interaction: submission,
			Data:        submission.ModalSubmitData(),
		}, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

// AwaitComponents waits for the user who triggered i to press any of the
// components identified by customIDs.
func (a *Awaiter) AwaitComponents(
	i *discordgo.InteractionCreate,
	customIDs []string,
	timeout time.Duration,
) (*ComponentResponse, error) {
	userID := getUserID(i)
	if userID == "" {
		return nil, fmt.Errorf("missing user id for interaction")
	}

	ch, release := a.register(userID, customIDs)
	defer release()

	select {
	case interaction := <-ch:
		if interaction.Type != discordgo.InteractionMessageComponent {
			return nil, fmt.Errorf("unexpected interaction type: %v", interaction.Type)
		}
		return &ComponentResponse{
			Interaction: interaction,
			Data:        interaction.MessageComponentData(),
		}, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

func (a *Awaiter) HandleInteraction(i *discordgo.InteractionCreate) bool {
	customID, ok := extractCustomID(i)
	if !ok || customID == "" {
		return false
	}

	userID := getUserID(i)
	if userID == "" {
		return false
	}

	a.mu.RLock()
	ch, exists := a.pending[customID+":"+userID]
	a.mu.RUnlock()

	if !exists {
		return false
	}

	select {
	case ch <- i:
		return true
	default:
		return false
	}
}

func extractCustomID(i *discordgo.InteractionCreate) (string, bool) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID, true
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID, true
	default:
		return "", false
	}
}

func getUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
