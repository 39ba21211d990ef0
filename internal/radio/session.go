package radio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hxnx/radiowave/internal/station"
	"github.com/hxnx/radiowave/internal/store"
)

// Status is a point-in-time view of a session.
type Status struct {
	Stations      int
	Current       int
	HasCurrent    bool
	Station       station.Station
	Playing       bool
	Volume        float64
	Muted         bool
	DarkMode      bool
	SleepDeadline time.Time
}

// Session binds one owner's registry to a player and a store. Every mutation
// is persisted before the call returns; persistence failures are logged.
type Session struct {
	owner    string
	registry *station.Registry
	store    store.Store
	player   Player
	notifier Notifier

	mu            sync.Mutex
	settings      store.Settings
	muted         bool
	sleepTimer    *time.Timer
	sleepDeadline time.Time
	sleepGen      uint64
	afterFunc     func(time.Duration, func()) *time.Timer

	saveMu sync.Mutex
}

func newSession(owner string, registry *station.Registry, settings store.Settings, st store.Store, player Player, notifier Notifier) *Session {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &Session{
		owner:     owner,
		registry:  registry,
		store:     st,
		player:    player,
		notifier:  notifier,
		settings:  settings.Clamp(),
		afterFunc: time.AfterFunc,
	}
}

func (s *Session) Owner() string {
	return s.owner
}

func (s *Session) Len() int {
	return s.registry.Len()
}

func (s *Session) Station(index int) (station.Station, error) {
	return s.registry.Station(index)
}

func (s *Session) IndexOf(id string) (int, bool) {
	return s.registry.IndexOf(id)
}

func (s *Session) Query(tab station.Tab, search string) []int {
	return s.registry.Query(tab, search)
}

func (s *Session) View(tab station.Tab, search string) []station.Item {
	return s.registry.View(tab, search)
}

func (s *Session) Export() station.Document {
	return s.registry.Export()
}

func (s *Session) Settings() store.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Play selects the station at index and starts streaming it. When the primary
// stream fails and the station has a backup URL, the backup is tried before
// giving up.
func (s *Session) Play(ctx context.Context, index int) (station.Station, error) {
	if s.player == nil {
		return station.Station{}, ErrPlayerNil
	}

	id, st, err := s.registry.Select(index)
	if err != nil {
		return station.Station{}, err
	}

	s.player.SetVolume(s.effectiveVolume())
	err = s.player.Play(ctx, st.URL)
	if err != nil && st.HasBackup() {
		log.Printf("Warning: primary stream for %s failed, trying backup: %v", st.Name, err)
		if backupErr := s.player.Play(ctx, st.BackupURL); backupErr == nil {
			err = nil
			s.notifier.NotifySuccess(fmt.Sprintf(msgBackupStream, st.Name))
		} else {
			err = fmt.Errorf("%v; backup: %v", err, backupErr)
		}
	}
	if err != nil {
		return st, fmt.Errorf("%w: %s: %v", ErrPlaybackFailed, st.Name, err)
	}

	// the list may have changed while the stream was connecting
	s.registry.RecordPlayedID(id)
	s.persist(ctx)
	return st, nil
}

// PlayCurrent replays the current station, or the first one when nothing is selected.
func (s *Session) PlayCurrent(ctx context.Context) (station.Station, error) {
	if i, ok := s.registry.Current(); ok {
		return s.Play(ctx, i)
	}
	if s.registry.Len() == 0 {
		return station.Station{}, ErrNoStations
	}
	return s.Play(ctx, 0)
}

func (s *Session) Next(ctx context.Context) (station.Station, error) {
	i, ok := s.registry.Next()
	if !ok {
		return station.Station{}, ErrNoStations
	}
	return s.Play(ctx, i)
}

func (s *Session) Previous(ctx context.Context) (station.Station, error) {
	i, ok := s.registry.Previous()
	if !ok {
		return station.Station{}, ErrNoStations
	}
	return s.Play(ctx, i)
}

func (s *Session) Pause() error {
	if s.player == nil {
		return ErrPlayerNil
	}
	return s.player.Pause()
}

func (s *Session) Resume() error {
	if s.player == nil {
		return ErrPlayerNil
	}
	return s.player.Resume()
}

// Stop ends the stream but keeps the current selection.
func (s *Session) Stop() {
	if s.player != nil {
		s.player.Stop()
	}
}

func (s *Session) IsPlaying() bool {
	return s.player != nil && s.player.IsPlaying()
}

func (s *Session) ToggleMute() bool {
	s.mu.Lock()
	s.muted = !s.muted
	muted := s.muted
	s.mu.Unlock()

	s.applyVolume()
	return muted
}

// SetVolume clamps v to [0,1], stores it and forwards it to the player.
func (s *Session) SetVolume(ctx context.Context, v float64) float64 {
	s.mu.Lock()
	s.settings.Volume = v
	s.settings = s.settings.Clamp()
	v = s.settings.Volume
	s.mu.Unlock()

	s.applyVolume()
	s.persist(ctx)
	return v
}

func (s *Session) ToggleDarkMode(ctx context.Context) bool {
	s.mu.Lock()
	s.settings.DarkMode = !s.settings.DarkMode
	dark := s.settings.DarkMode
	s.mu.Unlock()

	s.persist(ctx)
	return dark
}

// SetSleepTimer pauses playback after the given duration. A non-positive
// total clears the timer. Re-arming replaces any running timer.
func (s *Session) SetSleepTimer(hours, minutes int) time.Time {
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if total <= 0 {
		s.ClearSleepTimer()
		return time.Time{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sleepTimer != nil {
		s.sleepTimer.Stop()
	}
	s.sleepGen++
	gen := s.sleepGen
	s.sleepTimer = s.afterFunc(total, func() { s.sleepFired(gen) })
	s.sleepDeadline = time.Now().Add(total)
	return s.sleepDeadline
}

func (s *Session) ClearSleepTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sleepTimer != nil {
		s.sleepTimer.Stop()
		s.sleepTimer = nil
	}
	s.sleepGen++
	s.sleepDeadline = time.Time{}
}

// SleepDeadline reports when the sleep timer fires.
func (s *Session) SleepDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sleepDeadline, s.sleepTimer != nil
}

func (s *Session) sleepFired(gen uint64) {
	s.mu.Lock()
	if s.sleepGen != gen {
		s.mu.Unlock()
		return
	}
	s.sleepTimer = nil
	s.sleepDeadline = time.Time{}
	s.mu.Unlock()

	if s.player != nil {
		if err := s.player.Pause(); err != nil {
			log.Printf("Warning: sleep timer could not pause %s: %v", s.owner, err)
		}
	}
	s.notifier.NotifySuccess(msgSleepTimerFired)
}

func (s *Session) Add(ctx context.Context, st station.Station) (int, error) {
	i, err := s.registry.Add(st)
	if err != nil {
		return 0, err
	}
	s.persist(ctx)
	return i, nil
}

func (s *Session) Update(ctx context.Context, index int, st station.Station) error {
	if err := s.registry.Update(index, st); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

func (s *Session) ToggleFavorite(ctx context.Context, index int) (bool, error) {
	favorite, err := s.registry.ToggleFavorite(index)
	if err != nil {
		return false, err
	}
	s.persist(ctx)
	return favorite, nil
}

// Delete asks for confirmation and removes the station. The station is tracked
// by ID while the prompt is open, so concurrent edits cannot redirect it.
func (s *Session) Delete(ctx context.Context, index int, confirmer Confirmer) (station.Station, error) {
	if confirmer == nil {
		return station.Station{}, ErrConfirmerNil
	}

	st, err := s.registry.Station(index)
	if err != nil {
		return station.Station{}, err
	}
	id, err := s.registry.IDAt(index)
	if err != nil {
		return station.Station{}, err
	}

	decision, err := confirmer.Confirm(ctx, deletePrompt(st.Name))
	if err != nil {
		return station.Station{}, err
	}
	if decision != Confirmed {
		return station.Station{}, ErrCancelled
	}

	stopPlayback, err := s.registry.DeleteID(id)
	if err != nil {
		return station.Station{}, fmt.Errorf("%w: %s was already removed", station.ErrIndex, st.Name)
	}
	if stopPlayback {
		s.Stop()
	}
	s.persist(ctx)
	return st, nil
}

func (s *Session) DeleteAll(ctx context.Context, confirmer Confirmer) error {
	if confirmer == nil {
		return ErrConfirmerNil
	}
	if s.registry.Len() == 0 {
		return ErrNothingToDelete
	}

	decision, err := confirmer.Confirm(ctx, deleteAllPrompt())
	if err != nil {
		return err
	}
	if decision != Confirmed {
		return ErrCancelled
	}

	if s.registry.DeleteAll() {
		s.Stop()
	}
	s.persist(ctx)
	return nil
}

// Import parses an exchange document and asks whether to merge it into the
// list (Confirmed) or replace the list with it (Alternative).
func (s *Session) Import(ctx context.Context, data []byte, confirmer Confirmer) (station.ImportMode, int, error) {
	if confirmer == nil {
		return "", 0, ErrConfirmerNil
	}

	doc, err := station.ParseDocument(data)
	if err != nil {
		return "", 0, err
	}

	decision, err := confirmer.Confirm(ctx, importPrompt(len(doc.Channels)))
	if err != nil {
		return "", 0, err
	}

	var mode station.ImportMode
	switch decision {
	case Confirmed:
		mode = station.ImportMerge
	case Alternative:
		mode = station.ImportReplace
	default:
		return "", 0, ErrCancelled
	}

	if err := s.registry.Import(doc, mode); err != nil {
		return "", 0, err
	}
	s.persist(ctx)
	return mode, len(doc.Channels), nil
}

// ImportMode imports without asking.
func (s *Session) ImportMode(ctx context.Context, data []byte, mode station.ImportMode) (int, error) {
	doc, err := station.ParseDocument(data)
	if err != nil {
		return 0, err
	}
	if err := s.registry.Import(doc, mode); err != nil {
		return 0, err
	}
	s.persist(ctx)
	return len(doc.Channels), nil
}

// Reload replaces the in-memory state with what the store holds. The current
// selection is kept when an identical station is still present.
func (s *Session) Reload(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	state, found, err := s.store.Load(ctx, s.owner)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	var current station.Station
	i, hasCurrent := s.registry.Current()
	if hasCurrent {
		current, _ = s.registry.Station(i)
	}

	if err := s.registry.Restore(state.Registry); err != nil {
		return err
	}
	if hasCurrent {
		for j, st := range s.registry.Stations() {
			if st == current {
				_ = s.registry.SetCurrent(j)
				break
			}
		}
	}

	s.mu.Lock()
	s.settings = state.Settings.Clamp()
	s.mu.Unlock()
	s.applyVolume()
	return nil
}

func (s *Session) Status() Status {
	st := Status{
		Stations: s.registry.Len(),
		Current:  -1,
		Playing:  s.IsPlaying(),
	}
	if i, ok := s.registry.Current(); ok {
		if current, err := s.registry.Station(i); err == nil {
			st.Current, st.HasCurrent, st.Station = i, true, current
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st.Volume = s.settings.Volume
	st.Muted = s.muted
	st.DarkMode = s.settings.DarkMode
	st.SleepDeadline = s.sleepDeadline
	return st
}

func (s *Session) close() {
	s.ClearSleepTimer()
	s.Stop()
}

func (s *Session) effectiveVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.muted {
		return 0
	}
	return s.settings.Volume
}

func (s *Session) applyVolume() {
	if s.player != nil {
		s.player.SetVolume(s.effectiveVolume())
	}
}

func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	state := store.State{
		Registry: s.registry.Snapshot(),
		Settings: s.Settings(),
	}
	if err := s.store.Save(ctx, s.owner, state); err != nil {
		log.Printf("Warning: failed to save stations for %s: %v", s.owner, err)
	}
}
