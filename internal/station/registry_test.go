package station_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hxnx/radiowave/internal/station"
)

var (
	stationA = station.Station{Name: "A", URL: "http://a.example/stream", Genre: "Jazz"}
	stationB = station.Station{Name: "B", URL: "http://b.example/stream", Genre: "Rock"}
	stationC = station.Station{Name: "C", URL: "http://c.example/stream", Genre: "Pop"}
	stationD = station.Station{Name: "D", URL: "http://d.example/stream"}
	stationE = station.Station{Name: "E", URL: "http://e.example/stream"}
)

func newRegistry(t *testing.T, stations ...station.Station) *station.Registry {
	t.Helper()

	r := station.NewRegistry()
	for _, s := range stations {
		if _, err := r.Add(s); err != nil {
			t.Fatalf("Unexpected error while adding %q: %s", s.Name, err)
		}
	}
	return r
}

func assertInts(t *testing.T, name string, got, expected []int) {
	t.Helper()

	if len(got) == 0 && len(expected) == 0 {
		return
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %s %v to equal %v", name, got, expected)
	}
}

func TestAdd_ReturnsAppendedIndex(t *testing.T) {
	r := newRegistry(t, stationA)

	idx, err := r.Add(stationB)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if idx != 1 {
		t.Errorf("Expected index %d to equal 1", idx)
	}
	if r.Len() != 2 {
		t.Errorf("Expected length %d to equal 2", r.Len())
	}
}

func TestAdd_RejectsInvalidStations(t *testing.T) {
	cases := map[string]station.Station{
		"empty name":     {Name: "  ", URL: "http://a.example"},
		"relative url":   {Name: "X", URL: "/stream"},
		"garbage url":    {Name: "X", URL: "not a url"},
		"empty url":      {Name: "X"},
		"bad backup url": {Name: "X", URL: "http://a.example", BackupURL: "nope"},
	}

	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			r := newRegistry(t, stationA)

			_, err := r.Add(s)

			if !errors.Is(err, station.ErrValidation) {
				t.Fatalf("Expected ErrValidation, got %v", err)
			}
			if r.Len() != 1 {
				t.Errorf("Expected registry to be unchanged, length is %d", r.Len())
			}
		})
	}
}

func TestAdd_TrimsFields(t *testing.T) {
	r := station.NewRegistry()

	idx, err := r.Add(station.Station{Name: "  Jazz FM ", URL: " http://jazz.example/live "})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	got, _ := r.Station(idx)
	if got.Name != "Jazz FM" || got.URL != "http://jazz.example/live" {
		t.Errorf("Expected trimmed station, got %+v", got)
	}
}

func TestUpdate_KeepsFavoriteMembership(t *testing.T) {
	r := newRegistry(t, stationA, stationB)
	if _, err := r.ToggleFavorite(1); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if err := r.Update(1, stationC); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	got, _ := r.Station(1)
	if got != stationC {
		t.Errorf("Expected station %+v to equal %+v", got, stationC)
	}
	assertInts(t, "favorites", r.Favorites(), []int{1})
}

func TestUpdate_Errors(t *testing.T) {
	r := newRegistry(t, stationA)

	if err := r.Update(3, stationB); !errors.Is(err, station.ErrIndex) {
		t.Errorf("Expected ErrIndex, got %v", err)
	}
	if err := r.Update(0, station.Station{Name: "A"}); !errors.Is(err, station.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}

	got, _ := r.Station(0)
	if got != stationA {
		t.Errorf("Expected station to be unchanged, got %+v", got)
	}
}

func TestDelete_RemapsFavoritesAndRecent(t *testing.T) {
	// given
	r := newRegistry(t, stationA, stationB, stationC)
	r.ToggleFavorite(0)
	r.ToggleFavorite(2)
	r.RecordPlayed(0)
	r.RecordPlayed(2)

	// when
	stop, err := r.Delete(1)

	// then
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if stop {
		t.Errorf("Expected no playback stop when no station is current")
	}
	if got := r.Stations(); !reflect.DeepEqual(got, []station.Station{stationA, stationC}) {
		t.Errorf("Expected stations [A C], got %+v", got)
	}
	assertInts(t, "favorites", r.Favorites(), []int{0, 1})
	assertInts(t, "recent", r.Recent(), []int{1, 0})
}

func TestDelete_PreservesReferencedStations(t *testing.T) {
	r := newRegistry(t, stationA, stationB, stationC, stationD, stationE)
	for _, i := range []int{4, 1, 3} {
		r.ToggleFavorite(i)
	}
	for _, i := range []int{0, 3, 2, 4} {
		r.RecordPlayed(i)
	}

	for k := 0; r.Len() > 0; k = (k + 2) % max(1, r.Len()) {
		if k >= r.Len() {
			k = 0
		}
		deleted, _ := r.Station(k)
		beforeFav := namesAt(t, r, r.Favorites())
		beforeRecent := namesAt(t, r, r.Recent())

		if _, err := r.Delete(k); err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}

		assertNames(t, "favorites", namesAt(t, r, r.Favorites()), without(beforeFav, deleted.Name))
		assertNames(t, "recent", namesAt(t, r, r.Recent()), without(beforeRecent, deleted.Name))
		for _, idx := range r.Query(station.TabAll, "") {
			s, _ := r.Station(idx)
			if s.Name == deleted.Name {
				t.Fatalf("Expected %q to be gone after delete", deleted.Name)
			}
		}
	}
}

func namesAt(t *testing.T, r *station.Registry, indices []int) []string {
	t.Helper()

	names := make([]string, 0, len(indices))
	for _, i := range indices {
		s, err := r.Station(i)
		if err != nil {
			t.Fatalf("Index %d is not valid: %s", i, err)
		}
		names = append(names, s.Name)
	}
	return names
}

func without(names []string, name string) []string {
	out := []string{}
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func assertNames(t *testing.T, field string, got, expected []string) {
	t.Helper()

	if len(got) == 0 && len(expected) == 0 {
		return
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %s %v to equal %v", field, got, expected)
	}
}

func TestDelete_CurrentStation(t *testing.T) {
	r := newRegistry(t, stationA, stationB, stationC)

	r.SetCurrent(1)
	stop, err := r.Delete(1)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if !stop {
		t.Errorf("Expected playback stop when deleting the current station")
	}
	if _, ok := r.Current(); ok {
		t.Errorf("Expected no current station after deleting it")
	}

	r.SetCurrent(1)
	stop, _ = r.Delete(0)
	if stop {
		t.Errorf("Expected no playback stop when deleting another station")
	}
	if current, ok := r.Current(); !ok || current != 0 {
		t.Errorf("Expected current index 0, got %d (%t)", current, ok)
	}
}

func TestDelete_OutOfRange(t *testing.T) {
	r := newRegistry(t, stationA)

	for _, idx := range []int{-1, 1} {
		if _, err := r.Delete(idx); !errors.Is(err, station.ErrIndex) {
			t.Errorf("Expected ErrIndex for %d, got %v", idx, err)
		}
	}
}

func TestDeleteAll(t *testing.T) {
	r := newRegistry(t, stationA, stationB)
	r.ToggleFavorite(0)
	r.RecordPlayed(1)
	r.SetCurrent(1)

	if stop := r.DeleteAll(); !stop {
		t.Errorf("Expected playback stop when a station was current")
	}
	if r.Len() != 0 || len(r.Favorites()) != 0 || len(r.Recent()) != 0 {
		t.Errorf("Expected empty registry")
	}
	if _, ok := r.Current(); ok {
		t.Errorf("Expected no current station")
	}

	if stop := r.DeleteAll(); stop {
		t.Errorf("Expected DeleteAll on empty registry to be a no-op")
	}
}

func TestToggleFavorite_EvenTogglesRestoreSet(t *testing.T) {
	r := newRegistry(t, stationA, stationB, stationC)
	r.ToggleFavorite(2)
	before := r.Favorites()

	for n := 0; n < 4; n++ {
		state, err := r.ToggleFavorite(0)
		if err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}
		if expected := n%2 == 0; state != expected {
			t.Errorf("Expected toggle %d to return %t", n, expected)
		}
	}

	assertInts(t, "favorites", r.Favorites(), before)
	if _, err := r.ToggleFavorite(7); !errors.Is(err, station.ErrIndex) {
		t.Errorf("Expected ErrIndex, got %v", err)
	}
}

func TestRecordPlayed_BoundedAndUnique(t *testing.T) {
	r := station.NewRegistry()
	for i := 0; i < 15; i++ {
		r.Add(station.Station{Name: "S", URL: "http://s.example/" + string(rune('a'+i))})
	}

	for _, i := range []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 3, 12, 3, 14} {
		if err := r.RecordPlayed(i); err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}
	}

	recent := r.Recent()
	if len(recent) != station.MaxRecent {
		t.Fatalf("Expected %d recent stations, got %d", station.MaxRecent, len(recent))
	}
	seen := map[int]bool{}
	for _, i := range recent {
		if seen[i] {
			t.Errorf("Expected no duplicates in recent, %d repeated", i)
		}
		seen[i] = true
	}
	assertInts(t, "recent", recent[:3], []int{14, 3, 12})

	if err := r.RecordPlayed(15); !errors.Is(err, station.ErrIndex) {
		t.Errorf("Expected ErrIndex, got %v", err)
	}
}

func TestNextPrevious_Wrap(t *testing.T) {
	r := newRegistry(t, stationA, stationB, stationC)

	if next, _ := r.Next(); next != 0 {
		t.Errorf("Expected next from none to be 0, got %d", next)
	}
	if prev, _ := r.Previous(); prev != 2 {
		t.Errorf("Expected previous from none to be 2, got %d", prev)
	}

	r.SetCurrent(2)
	if next, _ := r.Next(); next != 0 {
		t.Errorf("Expected next to wrap to 0, got %d", next)
	}
	r.SetCurrent(0)
	if prev, _ := r.Previous(); prev != 2 {
		t.Errorf("Expected previous to wrap to 2, got %d", prev)
	}

	if _, ok := station.NewRegistry().Next(); ok {
		t.Errorf("Expected no next station in empty registry")
	}
}

func TestQuery(t *testing.T) {
	r := newRegistry(t,
		station.Station{Name: "X", URL: "http://x.example", Genre: "Pop"},
		station.Station{Name: "Y", URL: "http://y.example", Genre: "Rock"},
		station.Station{Name: "Pop Hits", URL: "http://z.example"},
	)
	r.ToggleFavorite(2)
	r.ToggleFavorite(0)
	r.RecordPlayed(1)
	r.RecordPlayed(2)

	cases := []struct {
		tab      station.Tab
		search   string
		expected []int
	}{
		{station.TabAll, "", []int{0, 1, 2}},
		{station.TabAll, "pop", []int{0, 2}},
		{station.TabAll, "ROCK", []int{1}},
		{station.TabAll, "jazz", []int{}},
		{station.TabFavorites, "", []int{2, 0}},
		{station.TabFavorites, "pop", []int{2, 0}},
		{station.TabRecent, "", []int{2, 1}},
		{station.TabRecent, "y", []int{1}},
	}

	for _, c := range cases {
		assertInts(t, string(c.tab)+"/"+c.search, r.Query(c.tab, c.search), c.expected)
	}
}

func TestQuery_SingleGenreMatch(t *testing.T) {
	r := newRegistry(t,
		station.Station{Name: "X", URL: "http://x.example", Genre: "Pop"},
		station.Station{Name: "Y", URL: "http://y.example", Genre: "Rock"},
	)

	assertInts(t, "query", r.Query(station.TabAll, "pop"), []int{0})
}

func TestIDs_StableAcrossDeletes(t *testing.T) {
	r := newRegistry(t, stationA, stationB, stationC)
	id, err := r.IDAt(2)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	r.Delete(0)

	idx, ok := r.IndexOf(id)
	if !ok || idx != 1 {
		t.Errorf("Expected id to resolve to index 1, got %d (%t)", idx, ok)
	}

	r.Delete(1)
	if _, ok := r.IndexOf(id); ok {
		t.Errorf("Expected deleted id to be unknown")
	}
}

func TestSeededRegistry(t *testing.T) {
	r := station.NewSeededRegistry()

	if r.Len() != len(station.Defaults()) {
		t.Errorf("Expected %d seeded stations, got %d", len(station.Defaults()), r.Len())
	}
	for i, s := range r.Stations() {
		if err := s.Validate(); err != nil {
			t.Errorf("Expected default station %d to be valid: %s", i, err)
		}
	}
}

func TestView(t *testing.T) {
	r := newRegistry(t, stationA, stationB, stationC)
	r.ToggleFavorite(1)
	r.SetCurrent(2)

	items := r.View(station.TabAll, "")
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if !items[1].Favorite || items[0].Favorite {
		t.Errorf("Expected only item 1 to be a favorite: %+v", items)
	}
	if !items[2].Current {
		t.Errorf("Expected item 2 to be current")
	}
	for i, item := range items {
		if item.Index != i || item.ID == "" {
			t.Errorf("Expected item %d to carry its index and id, got %+v", i, item)
		}
	}

	if got := r.View(station.TabFavorites, ""); len(got) != 1 || got[0].Station != stationB {
		t.Errorf("Expected favorites view to contain B, got %+v", got)
	}
}

func TestSelect_SetsCurrentAndReturnsStation(t *testing.T) {
	r := newRegistry(t, stationA, stationB)

	id, s, err := r.Select(1)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if s != stationB {
		t.Errorf("Expected selected station %+v to equal %+v", s, stationB)
	}
	if idx, ok := r.IndexOf(id); !ok || idx != 1 {
		t.Errorf("Expected id to resolve to index 1, got %d (%t)", idx, ok)
	}
	if idx, ok := r.Current(); !ok || idx != 1 {
		t.Errorf("Expected current index 1, got %d (%t)", idx, ok)
	}
	if _, _, err := r.Select(2); !errors.Is(err, station.ErrIndex) {
		t.Errorf("Expected ErrIndex, got %v", err)
	}
}

func TestDeleteID_FollowsShiftedStation(t *testing.T) {
	// given
	r := newRegistry(t, stationA, stationB, stationC)
	id, _, err := r.Select(2)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	r.Delete(0)

	// when
	stop, err := r.DeleteID(id)

	// then
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if !stop {
		t.Errorf("Expected deleting the current station to stop playback")
	}
	if got := r.Stations(); len(got) != 1 || got[0] != stationB {
		t.Errorf("Expected only B to remain, got %+v", got)
	}
	if _, err := r.DeleteID(id); !errors.Is(err, station.ErrIndex) {
		t.Errorf("Expected ErrIndex for a removed id, got %v", err)
	}
}

func TestRecordPlayedID(t *testing.T) {
	r := newRegistry(t, stationA, stationB)
	id, err := r.IDAt(1)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !r.RecordPlayedID(id) {
		t.Errorf("Expected known id to be recorded")
	}
	assertInts(t, "recent", r.Recent(), []int{1})

	r.Delete(1)
	if r.RecordPlayedID(id) {
		t.Errorf("Expected removed id not to be recorded")
	}
	assertInts(t, "recent", r.Recent(), nil)
}
