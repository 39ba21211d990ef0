package radio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/hxnx/radiowave/internal/station"
	"github.com/hxnx/radiowave/internal/store"
)

type Options struct {
	Store store.Store
	// Players returns the player for an owner. Sessions without a player
	// can still manage stations but cannot play them.
	Players   func(owner string) Player
	Notifiers func(owner string) Notifier
	// DefaultVolume is used for owners without saved settings.
	DefaultVolume float64
}

// Manager keeps one Session per owner, created on first use.
type Manager struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	if opts.DefaultVolume <= 0 || opts.DefaultVolume > 1 {
		opts.DefaultVolume = store.DefaultVolume
	}
	return &Manager{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Session returns the owner's session, hydrating it from the store the first
// time. Owners with nothing saved start from the default stations.
func (m *Manager) Session(ctx context.Context, owner string) (*Session, error) {
	if owner == "" {
		return nil, store.ErrOwnerRequired
	}

	if s, ok := m.Lookup(owner); ok {
		return s, nil
	}

	registry, settings, err := m.hydrate(ctx, owner)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another caller may have hydrated the same owner meanwhile
	if s, ok := m.sessions[owner]; ok {
		return s, nil
	}

	var player Player
	if m.opts.Players != nil {
		player = m.opts.Players(owner)
	}
	var notifier Notifier
	if m.opts.Notifiers != nil {
		notifier = m.opts.Notifiers(owner)
	}

	s := newSession(owner, registry, settings, m.opts.Store, player, notifier)
	m.sessions[owner] = s
	return s, nil
}

func (m *Manager) hydrate(ctx context.Context, owner string) (*station.Registry, store.Settings, error) {
	defaults := store.Settings{DarkMode: store.DefaultDarkMode, Volume: m.opts.DefaultVolume}
	if m.opts.Store == nil {
		return station.NewSeededRegistry(), defaults, nil
	}

	state, found, err := m.opts.Store.Load(ctx, owner)
	if err != nil {
		return nil, store.Settings{}, fmt.Errorf("failed to load stations for %s: %w", owner, err)
	}
	if !found {
		return station.NewSeededRegistry(), defaults, nil
	}

	registry := station.NewRegistry()
	if err := registry.Restore(state.Registry); err != nil {
		log.Printf("Warning: saved stations for %s are unreadable, using defaults: %v", owner, err)
		return station.NewSeededRegistry(), state.Settings.Clamp(), nil
	}
	return registry, state.Settings.Clamp(), nil
}

// Lookup returns an already active session without hydrating one.
func (m *Manager) Lookup(owner string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[owner]
	return s, ok
}

// Reload refreshes an active session from the store. Inactive owners are
// hydrated lazily anyway, so they are skipped.
func (m *Manager) Reload(ctx context.Context, owner string) error {
	s, ok := m.Lookup(owner)
	if !ok {
		return nil
	}
	return s.Reload(ctx)
}

// Playing counts sessions with audio flowing.
func (m *Manager) Playing() int {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	count := 0
	for _, s := range sessions {
		if s.IsPlaying() {
			count++
		}
	}
	return count
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for owner, s := range m.sessions {
		s.close()
		delete(m.sessions, owner)
	}
}
