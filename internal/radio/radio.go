package radio

import (
	"context"
	"errors"
)

var (
	ErrPlaybackFailed  = errors.New("station could not be played")
	ErrCancelled       = errors.New("action cancelled")
	ErrNothingToDelete = errors.New("no stations to delete")
	ErrNoStations      = errors.New("no stations available")
	ErrPlayerNil       = errors.New("player is not configured")
	ErrConfirmerNil    = errors.New("confirmer is not configured")
)

// Player is the audio sink a session streams stations into. Play returns
// once audio is flowing or the stream failed to start.
type Player interface {
	Play(ctx context.Context, url string) error
	Stop()
	Pause() error
	Resume() error
	IsPlaying() bool
	SetVolume(volume float64)
}

// Notifier receives messages that are not an answer to a caller, such as the
// sleep timer expiring.
type Notifier interface {
	NotifyError(message string)
	NotifySuccess(message string)
}

type Decision int

const (
	Undecided Decision = iota
	Confirmed
	Alternative
)

func (d Decision) String() string {
	switch d {
	case Confirmed:
		return "confirmed"
	case Alternative:
		return "alternative"
	default:
		return "undecided"
	}
}

type Prompt struct {
	Title            string
	Body             string
	ConfirmLabel     string
	AlternativeLabel string
	Danger           bool
}

// Confirmer asks the user before destructive actions. Cancellation and
// timeouts are reported as Undecided, not as an error.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (Decision, error)
}

// StaticConfirmer answers every prompt with the same decision.
type StaticConfirmer Decision

func (c StaticConfirmer) Confirm(context.Context, Prompt) (Decision, error) {
	return Decision(c), nil
}

type discardNotifier struct{}

func (discardNotifier) NotifyError(string)   {}
func (discardNotifier) NotifySuccess(string) {}
