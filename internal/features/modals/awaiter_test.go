package modals

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/radio"
)

func componentClick(userID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:     "click",
			Type:   discordgo.InteractionMessageComponent,
			Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
			Data:   discordgo.MessageComponentInteractionData{CustomID: customID},
		},
	}
}

func commandFrom(userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:     "command",
			Type:   discordgo.InteractionApplicationCommand,
			Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
		},
	}
}

func deliver(t *testing.T, uut *Awaiter, i *discordgo.InteractionCreate) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if uut.HandleInteraction(i) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Interaction %s was never picked up", i.MessageComponentData().CustomID)
}

func TestAwaiter_RoutesAnyOfSeveralButtons(t *testing.T) {
	// given
	uut := NewAwaiter()
	result := make(chan *ComponentResponse, 1)
	go func() {
		resp, err := uut.AwaitComponents(commandFrom("u1"), []string{"a", "b"}, time.Second)
		if err != nil {
			t.Errorf("Unexpected error: %s", err)
		}
		result <- resp
	}()

	// when
	deliver(t, uut, componentClick("u1", "b"))

	// then
	resp := <-result
	if resp == nil || resp.Data.CustomID != "b" {
		t.Fatalf("Expected the b button to be delivered")
	}
	if uut.HandleInteraction(componentClick("u1", "a")) {
		t.Errorf("Expected the wait to be released after the first answer")
	}
}

func TestAwaiter_IgnoresOtherUsers(t *testing.T) {
	uut := NewAwaiter()
	done := make(chan error, 1)
	go func() {
		_, err := uut.AwaitComponents(commandFrom("u1"), []string{"a"}, 50*time.Millisecond)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	if uut.HandleInteraction(componentClick("u2", "a")) {
		t.Errorf("Expected a click from another user to be ignored")
	}
	if err := <-done; !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

func TestBuildPrompt_AlternativeButton(t *testing.T) {
	prompt := radio.Prompt{Title: "t", Body: "b", ConfirmLabel: "합치기", AlternativeLabel: "교체"}
	ids := func(answer string) string { return "radio_confirm:1:" + answer }

	components := buildPrompt(prompt, ids)

	container, ok := components[0].(discordgo.Container)
	if !ok {
		t.Fatalf("Expected a container, got %T", components[0])
	}
	row, ok := container.Components[len(container.Components)-1].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("Expected buttons at the end of the prompt")
	}
	if len(row.Components) != 3 {
		t.Errorf("Expected confirm, alternative and cancel buttons, got %d", len(row.Components))
	}
}
