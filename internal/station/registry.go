package station

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const MaxRecent = 10

type Tab string

const (
	TabAll       Tab = "all"
	TabFavorites Tab = "favorites"
	TabRecent    Tab = "recent"
)

func ParseTab(value string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(value))) {
	case TabAll, "":
		return TabAll, nil
	case TabFavorites:
		return TabFavorites, nil
	case TabRecent:
		return TabRecent, nil
	default:
		return "", fmt.Errorf("%w: unknown tab %q", ErrValidation, value)
	}
}

type entry struct {
	id      string
	station Station
}

// Registry owns the ordered station list together with favorites, recently
// played stations and the current selection. Stations are addressed by
// position; internally each one carries an opaque ID so that favorites,
// recent and current survive deletions without index bookkeeping.
type Registry struct {
	mu        sync.Mutex
	entries   []entry
	favorites []string
	recent    []string
	current   string
}

func NewRegistry() *Registry {
	return &Registry{}
}

// NewSeededRegistry returns a registry holding the default stations.
func NewSeededRegistry() *Registry {
	r := NewRegistry()
	r.entries = newEntries(Defaults())
	return r
}

func newEntries(stations []Station) []entry {
	entries := make([]entry, 0, len(stations))
	for _, s := range stations {
		entries = append(entries, entry{id: uuid.NewString(), station: s})
	}
	return entries
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) Station(index int) (Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return Station{}, err
	}
	return r.entries[index].station, nil
}

func (r *Registry) Stations() []Station {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stationsLocked()
}

func (r *Registry) Favorites() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indicesLocked(r.favorites)
}

func (r *Registry) Recent() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indicesLocked(r.recent)
}

func (r *Registry) IsFavorite(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.checkIndexLocked(index) != nil {
		return false
	}
	return containsID(r.favorites, r.entries[index].id)
}

// IDAt returns the opaque identifier of the station at index.
func (r *Registry) IDAt(index int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return "", err
	}
	return r.entries[index].id, nil
}

// IndexOf resolves an identifier handed out by IDAt to the station's current position.
func (r *Registry) IndexOf(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOfLocked(id)
	return i, i >= 0
}

func (r *Registry) Add(s Station) (int, error) {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry{id: uuid.NewString(), station: s})
	return len(r.entries) - 1, nil
}

func (r *Registry) Update(index int, s Station) error {
	s = s.Normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	r.entries[index].station = s
	return nil
}

// Delete removes the station at index. The returned flag is set when the
// deleted station was the current selection, in which case playback must stop.
func (r *Registry) Delete(index int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return false, err
	}
	return r.deleteLocked(index), nil
}

// DeleteID removes the station with the given identifier, wherever it sits now.
func (r *Registry) DeleteID(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := r.indexOfLocked(id)
	if index < 0 {
		return false, fmt.Errorf("%w: station %s was removed", ErrIndex, id)
	}
	return r.deleteLocked(index), nil
}

func (r *Registry) deleteLocked(index int) bool {
	id := r.entries[index].id
	r.entries = append(r.entries[:index:index], r.entries[index+1:]...)
	r.favorites = removeID(r.favorites, id)
	r.recent = removeID(r.recent, id)

	stopPlayback := r.current == id
	if stopPlayback {
		r.current = ""
	}
	return stopPlayback
}

func (r *Registry) DeleteAll() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	stopPlayback := r.current != ""
	r.entries = nil
	r.favorites = nil
	r.recent = nil
	r.current = ""
	return stopPlayback
}

func (r *Registry) ToggleFavorite(index int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return false, err
	}

	id := r.entries[index].id
	if containsID(r.favorites, id) {
		r.favorites = removeID(r.favorites, id)
		return false, nil
	}
	r.favorites = append(r.favorites, id)
	return true, nil
}

func (r *Registry) RecordPlayed(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return err
	}
	r.recordPlayedLocked(r.entries[index].id)
	return nil
}

// RecordPlayedID is RecordPlayed for a station identifier. It reports false
// when the station is gone.
func (r *Registry) RecordPlayedID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOfLocked(id) < 0 {
		return false
	}
	r.recordPlayedLocked(id)
	return true
}

func (r *Registry) recordPlayedLocked(id string) {
	recent := make([]string, 0, MaxRecent)
	recent = append(recent, id)
	for _, other := range r.recent {
		if other != id && len(recent) < MaxRecent {
			recent = append(recent, other)
		}
	}
	r.recent = recent
}

func (r *Registry) SetCurrent(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return err
	}
	r.current = r.entries[index].id
	return nil
}

// Select makes the station at index current and returns it with its
// identifier, all under one lock.
func (r *Registry) Select(index int) (string, Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndexLocked(index); err != nil {
		return "", Station{}, err
	}
	e := r.entries[index]
	r.current = e.id
	return e.id, e.station, nil
}

func (r *Registry) ClearCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = ""
}

func (r *Registry) Current() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		return -1, false
	}
	i := r.indexOfLocked(r.current)
	return i, i >= 0
}

// Next returns the station after the current one, wrapping to the start.
// With no current selection the first station is returned.
func (r *Registry) Next() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	if n == 0 {
		return 0, false
	}
	next := r.indexOfLocked(r.current) + 1
	if next >= n {
		next = 0
	}
	return next, true
}

// Previous returns the station before the current one, wrapping to the end.
func (r *Registry) Previous() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	if n == 0 {
		return 0, false
	}
	prev := r.indexOfLocked(r.current) - 1
	if prev < 0 {
		prev = n - 1
	}
	return prev, true
}

// Query lists station indices for a tab, keeping only stations whose name or
// genre contains search (case-insensitive). Order follows the tab's own order.
func (r *Registry) Query(tab Tab, search string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queryLocked(tab, search)
}

// Item is one row of a listing.
type Item struct {
	Index    int
	ID       string
	Station  Station
	Favorite bool
	Current  bool
}

// View is Query resolved to full rows under a single lock.
func (r *Registry) View(tab Tab, search string) []Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	indices := r.queryLocked(tab, search)
	items := make([]Item, 0, len(indices))
	for _, i := range indices {
		e := r.entries[i]
		items = append(items, Item{
			Index:    i,
			ID:       e.id,
			Station:  e.station,
			Favorite: containsID(r.favorites, e.id),
			Current:  e.id == r.current,
		})
	}
	return items
}

func (r *Registry) queryLocked(tab Tab, search string) []int {
	var base []int
	switch tab {
	case TabFavorites:
		base = r.indicesLocked(r.favorites)
	case TabRecent:
		base = r.indicesLocked(r.recent)
	default:
		base = make([]int, len(r.entries))
		for i := range r.entries {
			base[i] = i
		}
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return base
	}

	result := make([]int, 0, len(base))
	for _, i := range base {
		s := r.entries[i].station
		if strings.Contains(strings.ToLower(s.Name), needle) ||
			strings.Contains(strings.ToLower(s.Genre), needle) {
			result = append(result, i)
		}
	}
	return result
}

func (r *Registry) Export() Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Document{
		Version:   DocumentVersion,
		Channels:  r.stationsLocked(),
		Favorites: r.indicesLocked(r.favorites),
		Recent:    r.indicesLocked(r.recent),
	}
}

func (r *Registry) Import(doc Document, mode ImportMode) error {
	if doc.Channels == nil {
		return fmt.Errorf("%w: channels is missing", ErrFormat)
	}
	incoming, favorites, recent, err := buildEntries(doc.Channels, doc.Favorites, doc.Recent)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch mode {
	case ImportReplace:
		r.entries = incoming
		r.favorites = favorites
		r.recent = recent
		r.current = ""
	case ImportMerge:
		r.entries = append(r.entries, incoming...)
		r.favorites = append(r.favorites, favorites...)
		r.recent = append(r.recent, recent...)
		if len(r.recent) > MaxRecent {
			r.recent = r.recent[:MaxRecent]
		}
	default:
		return fmt.Errorf("%w: unknown import mode %q", ErrValidation, mode)
	}
	return nil
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		Stations:  r.stationsLocked(),
		Favorites: r.indicesLocked(r.favorites),
		Recent:    r.indicesLocked(r.recent),
	}
}

// Restore replaces the registry contents with a persisted snapshot and clears
// the current selection.
func (r *Registry) Restore(snap Snapshot) error {
	entries, favorites, recent, err := buildEntries(snap.Stations, snap.Favorites, snap.Recent)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = entries
	r.favorites = favorites
	r.recent = recent
	r.current = ""
	return nil
}

// buildEntries validates a positional station list and resolves its favorite
// and recent indices to fresh IDs. Nothing is committed on error.
func buildEntries(stations []Station, favorites, recent []int) ([]entry, []string, []string, error) {
	normalized := make([]Station, 0, len(stations))
	for i, s := range stations {
		s = s.Normalize()
		if err := s.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: station %d: %v", ErrFormat, i, err)
		}
		normalized = append(normalized, s)
	}

	entries := newEntries(normalized)
	favIDs, err := resolveIndices(entries, favorites, "favorites")
	if err != nil {
		return nil, nil, nil, err
	}
	recentIDs, err := resolveIndices(entries, recent, "recent")
	if err != nil {
		return nil, nil, nil, err
	}
	if len(recentIDs) > MaxRecent {
		recentIDs = recentIDs[:MaxRecent]
	}
	return entries, favIDs, recentIDs, nil
}

func resolveIndices(entries []entry, indices []int, field string) ([]string, error) {
	ids := make([]string, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(entries) {
			return nil, fmt.Errorf("%w: %s index %d out of range", ErrFormat, field, i)
		}
		if !containsID(ids, entries[i].id) {
			ids = append(ids, entries[i].id)
		}
	}
	return ids, nil
}

func (r *Registry) checkIndexLocked(index int) error {
	if index < 0 || index >= len(r.entries) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndex, index, len(r.entries))
	}
	return nil
}

func (r *Registry) indexOfLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range r.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (r *Registry) indicesLocked(ids []string) []int {
	positions := make(map[string]int, len(r.entries))
	for i, e := range r.entries {
		positions[e.id] = i
	}

	indices := make([]int, 0, len(ids))
	for _, id := range ids {
		if i, ok := positions[id]; ok {
			indices = append(indices, i)
		}
	}
	return indices
}

func (r *Registry) stationsLocked() []Station {
	stations := make([]Station, len(r.entries))
	for i, e := range r.entries {
		stations[i] = e.station
	}
	return stations
}

func containsID(ids []string, id string) bool {
	for _, other := range ids {
		if other == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}
