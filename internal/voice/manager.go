package voice

import (
	"sync"
	"time"
)

// Manager hands out one Player per guild.
type Manager struct {
	startTimeout time.Duration

	mu      sync.Mutex
	players map[string]*Player
}

// NewManager returns a manager whose players give a stream startTimeout to
// produce audio. Zero uses the default.
func NewManager(startTimeout time.Duration) *Manager {
	return &Manager{
		startTimeout: startTimeout,
		players:      make(map[string]*Player),
	}
}

func (m *Manager) Get(guildID string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[guildID]; ok {
		return p
	}
	p := newPlayer(guildID, m.startTimeout)
	m.players[guildID] = p
	return p
}

// StopAll ends every stream and leaves every voice channel.
func (m *Manager) StopAll() {
	m.mu.Lock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.mu.Unlock()

	for _, p := range players {
		p.Stop()
	}
}
