package store

import (
	"context"
	"errors"

	"github.com/hxnx/radiowave/internal/station"
)

var ErrOwnerRequired = errors.New("owner id is required")

const (
	DefaultVolume   = 0.7
	DefaultDarkMode = true
)

// Settings belong to the front end but are persisted next to the registry.
type Settings struct {
	DarkMode bool    `json:"darkMode"`
	Volume   float64 `json:"volume"`
}

func DefaultSettings() Settings {
	return Settings{DarkMode: DefaultDarkMode, Volume: DefaultVolume}
}

// Clamp keeps Volume inside [0,1].
func (s Settings) Clamp() Settings {
	switch {
	case s.Volume < 0:
		s.Volume = 0
	case s.Volume > 1:
		s.Volume = 1
	}
	return s
}

type State struct {
	Registry station.Snapshot
	Settings Settings
}

// Store persists one State per owner. Load reports found=false when nothing
// has been saved for the owner yet.
type Store interface {
	Load(ctx context.Context, owner string) (State, bool, error)
	Save(ctx context.Context, owner string, state State) error
	Close() error
}
