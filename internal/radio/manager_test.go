package radio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/hxnx/radiowave/internal/mocks"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/station"
	"github.com/hxnx/radiowave/internal/store"
)

func savedState() store.State {
	return store.State{
		Registry: station.Snapshot{
			Stations: []station.Station{
				{Name: "A", URL: "https://a.example"},
				{Name: "B", URL: "https://b.example"},
			},
			Favorites: []int{1},
			Recent:    []int{0},
		},
		Settings: store.Settings{DarkMode: false, Volume: 0.3},
	}
}

func TestManager_HydratesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().Load(gomock.Any(), owner).Return(savedState(), true, nil).Times(1)
	uut := radio.NewManager(radio.Options{Store: st})

	// when
	first, err := uut.Session(context.Background(), owner)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	second, err := uut.Session(context.Background(), owner)
	if err != nil {
		t.Fatalf("Unexpected error on second call: %s", err)
	}

	// then
	if first != second {
		t.Errorf("Expected the same session for the same owner")
	}
	if first.Len() != 2 {
		t.Errorf("Expected 2 hydrated stations, got %d", first.Len())
	}
	if favorites := first.Query(station.TabFavorites, ""); len(favorites) != 1 || favorites[0] != 1 {
		t.Errorf("Expected favorites [1], got %v", favorites)
	}
	if settings := first.Settings(); settings.Volume != 0.3 || settings.DarkMode {
		t.Errorf("Expected saved settings, got %+v", settings)
	}
}

func TestManager_SeedsUnknownOwner(t *testing.T) {
	uut := radio.NewManager(radio.Options{DefaultVolume: 0.5})

	s, err := uut.Session(context.Background(), owner)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if s.Len() != len(station.Defaults()) {
		t.Errorf("Expected %d seeded stations, got %d", len(station.Defaults()), s.Len())
	}
	if settings := s.Settings(); settings.Volume != 0.5 || !settings.DarkMode {
		t.Errorf("Expected default settings with volume 0.5, got %+v", settings)
	}
}

func TestManager_LoadErrorIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	failure := errors.New("connection reset")
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().Load(gomock.Any(), owner).Return(store.State{}, false, failure)
	uut := radio.NewManager(radio.Options{Store: st})

	// when
	_, err := uut.Session(context.Background(), owner)

	// then
	if !errors.Is(err, failure) {
		t.Errorf("Expected wrapped load error, got %v", err)
	}
	if _, ok := uut.Lookup(owner); ok {
		t.Errorf("Expected no session after a failed load")
	}
}

func TestManager_RequiresOwner(t *testing.T) {
	uut := radio.NewManager(radio.Options{})

	if _, err := uut.Session(context.Background(), ""); !errors.Is(err, store.ErrOwnerRequired) {
		t.Errorf("Expected ErrOwnerRequired, got %v", err)
	}
}

func TestManager_ReloadKeepsCurrentStation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	edited := savedState()
	edited.Registry.Stations = append([]station.Station{{Name: "Z", URL: "https://z.example"}}, edited.Registry.Stations...)
	edited.Registry.Favorites = []int{2}
	edited.Registry.Recent = []int{1}

	st := mocks.NewMockStore(ctrl)
	gomock.InOrder(
		st.EXPECT().Load(gomock.Any(), owner).Return(savedState(), true, nil),
		st.EXPECT().Load(gomock.Any(), owner).Return(edited, true, nil),
	)
	st.EXPECT().Save(gomock.Any(), owner, gomock.Any()).Return(nil).AnyTimes()
	player := quietPlayer(ctrl)
	player.EXPECT().Play(gomock.Any(), "https://b.example").Return(nil)
	uut := radio.NewManager(radio.Options{
		Store:   st,
		Players: func(string) radio.Player { return player },
	})
	s, err := uut.Session(context.Background(), owner)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if _, err := s.Play(context.Background(), 1); err != nil {
		t.Fatalf("Unexpected error on play: %s", err)
	}

	// when
	err = uut.Reload(context.Background(), owner)

	// then
	if err != nil {
		t.Fatalf("Unexpected error on reload: %s", err)
	}
	if s.Len() != 3 {
		t.Errorf("Expected 3 stations after reload, got %d", s.Len())
	}
	if status := s.Status(); !status.HasCurrent || status.Current != 2 {
		t.Errorf("Expected current station to follow B to index 2, got %d (%t)", status.Current, status.HasCurrent)
	}
}

func TestManager_ReloadSkipsInactiveOwners(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	uut := radio.NewManager(radio.Options{Store: st})

	if err := uut.Reload(context.Background(), "other"); err != nil {
		t.Errorf("Unexpected error: %s", err)
	}
}

func TestManager_PlayingCountsActivePlayers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	playing := mocks.NewMockPlayer(ctrl)
	playing.EXPECT().IsPlaying().Return(true).AnyTimes()
	idle := mocks.NewMockPlayer(ctrl)
	idle.EXPECT().IsPlaying().Return(false).AnyTimes()
	players := map[string]radio.Player{"1": playing, "2": idle}
	uut := radio.NewManager(radio.Options{
		Players: func(owner string) radio.Player { return players[owner] },
	})
	for id := range players {
		if _, err := uut.Session(context.Background(), id); err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}
	}

	// when
	count := uut.Playing()

	// then
	if count != 1 {
		t.Errorf("Expected 1 playing session, got %d", count)
	}
}

func TestManager_SlowLoadDoesNotBlockOtherOwners(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	release := make(chan struct{})
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().
		Load(gomock.Any(), "slow").
		DoAndReturn(func(context.Context, string) (store.State, bool, error) {
			<-release
			return store.State{}, false, nil
		}).
		Times(1)
	st.EXPECT().Load(gomock.Any(), "fast").Return(savedState(), true, nil).Times(1)
	uut := radio.NewManager(radio.Options{Store: st})

	slowDone := make(chan error, 1)
	go func() {
		_, err := uut.Session(context.Background(), "slow")
		slowDone <- err
	}()

	// when
	fastDone := make(chan error, 1)
	go func() {
		_, err := uut.Session(context.Background(), "fast")
		fastDone <- err
	}()

	// then
	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Expected another owner's session while a load is pending")
	}
	if uut.Playing() != 0 {
		t.Errorf("Expected nothing playing")
	}

	close(release)
	if err := <-slowDone; err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if _, ok := uut.Lookup("slow"); !ok {
		t.Errorf("Expected the slow owner's session to be registered")
	}
}
