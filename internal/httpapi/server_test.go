package httpapi_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hxnx/radiowave/internal/httpapi"
	"github.com/hxnx/radiowave/internal/mocks"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/station"
	"github.com/hxnx/radiowave/internal/store"
)

func newServer(t *testing.T, player radio.Player, opts httpapi.Options) *httpapi.Server {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	manager := radio.NewManager(radio.Options{
		Store:   st,
		Players: func(string) radio.Player { return player },
	})
	t.Cleanup(manager.Close)
	return httpapi.New(manager, opts)
}

func do(t *testing.T, srv *httpapi.Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Fatalf("Expected status %d, got %d: %s", expected, rec.Code, rec.Body.String())
	}
}

func idlePlayer(ctrl *gomock.Controller) *mocks.MockPlayer {
	player := mocks.NewMockPlayer(ctrl)
	player.EXPECT().SetVolume(gomock.Any()).AnyTimes()
	player.EXPECT().IsPlaying().Return(false).AnyTimes()
	player.EXPECT().Stop().AnyTimes()
	return player
}

func TestAPI_ListsSeededStations(t *testing.T) {
	// given
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, idlePlayer(ctrl), httpapi.Options{})

	// when
	rec := do(t, srv, http.MethodGet, "/api/guilds/g1/stations?q=pop", "")

	// then
	expectStatus(t, rec, http.StatusOK)
	var resp struct {
		Stations []struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
		} `json:"stations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if len(resp.Stations) != 2 || resp.Stations[0].Index != 1 || resp.Stations[1].Index != 3 {
		t.Errorf("Expected the two pop stations at 1 and 3, got %+v", resp.Stations)
	}
}

func TestAPI_ErrorStatusMapping(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, idlePlayer(ctrl), httpapi.Options{})

	cases := []struct {
		name     string
		method   string
		target   string
		body     string
		expected int
	}{
		{"invalid station", http.MethodPost, "/api/guilds/g1/stations", `{"name":"","url":"nope"}`, http.StatusBadRequest},
		{"unknown tab", http.MethodGet, "/api/guilds/g1/stations?tab=top", "", http.StatusBadRequest},
		{"malformed import", http.MethodPost, "/api/guilds/g1/import", `{"stations":[]}`, http.StatusBadRequest},
		{"index out of range", http.MethodPut, "/api/guilds/g1/stations/9", `{"name":"X","url":"https://x.example"}`, http.StatusNotFound},
		{"non numeric index", http.MethodPost, "/api/guilds/g1/stations/abc/favorite", "", http.StatusBadRequest},
		{"unconfirmed delete", http.MethodDelete, "/api/guilds/g1/stations/0", "", http.StatusConflict},
		{"unconfirmed delete all", http.MethodDelete, "/api/guilds/g1/stations", "", http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, tc.method, tc.target, tc.body)
			expectStatus(t, rec, tc.expected)
		})
	}
}

func TestAPI_ConfirmedDeleteAndAdd(t *testing.T) {
	// given
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, idlePlayer(ctrl), httpapi.Options{})

	// when
	deleted := do(t, srv, http.MethodDelete, "/api/guilds/g1/stations/0?confirm=true", "")
	added := do(t, srv, http.MethodPost, "/api/guilds/g1/stations", `{"name":"Jazz FM","url":"https://jazz.example/live"}`)

	// then
	expectStatus(t, deleted, http.StatusOK)
	expectStatus(t, added, http.StatusCreated)
	if !strings.Contains(added.Body.String(), `"index":3`) {
		t.Errorf("Expected the new station at index 3, got %s", added.Body.String())
	}
}

func TestAPI_PlayFailureIsBadGateway(t *testing.T) {
	// given
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	player := idlePlayer(ctrl)
	player.EXPECT().Play(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	srv := newServer(t, player, httpapi.Options{})

	// when
	rec := do(t, srv, http.MethodPost, "/api/guilds/g1/stations/0/play", "")

	// then
	expectStatus(t, rec, http.StatusBadGateway)
}

func TestAPI_PlayReturnsStation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	player := idlePlayer(ctrl)
	player.EXPECT().Play(gomock.Any(), station.Defaults()[1].URL).Return(nil)
	srv := newServer(t, player, httpapi.Options{})

	rec := do(t, srv, http.MethodPost, "/api/guilds/g1/stations/1/play", "")

	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), station.Defaults()[1].Name) {
		t.Errorf("Expected the played station in the response, got %s", rec.Body.String())
	}
}

func TestAPI_ImportReplaceAndExport(t *testing.T) {
	// given
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, idlePlayer(ctrl), httpapi.Options{})
	doc := `{"version":"1.0","channels":[{"name":"Jazz FM","url":"https://jazz.example/live"}],"favorites":[0],"recent":[]}`

	// when
	imported := do(t, srv, http.MethodPost, "/api/guilds/g1/import?mode=replace", doc)
	exported := do(t, srv, http.MethodGet, "/api/guilds/g1/export", "")

	// then
	expectStatus(t, imported, http.StatusOK)
	expectStatus(t, exported, http.StatusOK)
	parsed, err := station.ParseDocument(exported.Body.Bytes())
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if len(parsed.Channels) != 1 || parsed.Channels[0].Name != "Jazz FM" || len(parsed.Favorites) != 1 {
		t.Errorf("Unexpected export %+v", parsed)
	}
}

func TestAPI_JWTProtectsGuildRoutes(t *testing.T) {
	// given
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, idlePlayer(ctrl), httpapi.Options{JWTSecret: "secret", AdminPassword: "pw"})

	// when
	denied := do(t, srv, http.MethodGet, "/api/guilds/g1/status", "", "Authorization", "Bearer garbage")
	wrongLogin := do(t, srv, http.MethodPost, "/api/login", `{"password":"nope"}`)
	login := do(t, srv, http.MethodPost, "/api/login", `{"password":"pw"}`)

	// then
	expectStatus(t, denied, http.StatusUnauthorized)
	expectStatus(t, wrongLogin, http.StatusUnauthorized)
	expectStatus(t, login, http.StatusOK)

	var token struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(login.Body.Bytes(), &token); err != nil || token.Token == "" {
		t.Fatalf("Expected a token, got %s", login.Body.String())
	}
	allowed := do(t, srv, http.MethodGet, "/api/guilds/g1/status", "", "Authorization", "Bearer "+token.Token)
	expectStatus(t, allowed, http.StatusOK)
}

func TestAPI_LoginDisabledWithoutSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, idlePlayer(ctrl), httpapi.Options{})

	rec := do(t, srv, http.MethodPost, "/api/login", `{"password":"pw"}`)

	expectStatus(t, rec, http.StatusNotFound)
}

func TestAPI_SettingsAndSleep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, idlePlayer(ctrl), httpapi.Options{})

	volume := do(t, srv, http.MethodPut, "/api/guilds/g1/settings/volume", `{"volume":1.5}`)
	expectStatus(t, volume, http.StatusOK)
	if !strings.Contains(volume.Body.String(), `"volume":1`) {
		t.Errorf("Expected volume to be clamped to 1, got %s", volume.Body.String())
	}

	mute := do(t, srv, http.MethodPost, "/api/guilds/g1/settings/mute", "")
	expectStatus(t, mute, http.StatusOK)
	if !strings.Contains(mute.Body.String(), `"muted":true`) {
		t.Errorf("Expected mute to be on, got %s", mute.Body.String())
	}

	sleep := do(t, srv, http.MethodPut, "/api/guilds/g1/sleep", `{"hours":0,"minutes":30}`)
	expectStatus(t, sleep, http.StatusOK)
	if strings.Contains(sleep.Body.String(), `"deadline":null`) {
		t.Errorf("Expected a sleep deadline, got %s", sleep.Body.String())
	}
	expectStatus(t, do(t, srv, http.MethodDelete, "/api/guilds/g1/sleep", ""), http.StatusNoContent)
}
