package store

import (
	"encoding/json"
	"fmt"

	"github.com/hxnx/radiowave/internal/station"
)

// Record is the persisted layout: one JSON value per logical key.
type Record struct {
	Stations  string
	Favorites string
	Recent    string
	Settings  string
}

func EncodeRecord(state State) (Record, error) {
	snap := state.Registry
	if snap.Stations == nil {
		snap.Stations = []station.Station{}
	}
	if snap.Favorites == nil {
		snap.Favorites = []int{}
	}
	if snap.Recent == nil {
		snap.Recent = []int{}
	}

	var rec Record
	var err error
	if rec.Stations, err = encodeJSON(snap.Stations); err != nil {
		return Record{}, err
	}
	if rec.Favorites, err = encodeJSON(snap.Favorites); err != nil {
		return Record{}, err
	}
	if rec.Recent, err = encodeJSON(snap.Recent); err != nil {
		return Record{}, err
	}
	if rec.Settings, err = encodeJSON(state.Settings.Clamp()); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r Record) Decode() (State, error) {
	state := State{Settings: DefaultSettings()}

	if err := decodeJSON(r.Stations, &state.Registry.Stations); err != nil {
		return State{}, fmt.Errorf("decode stations: %w", err)
	}
	if err := decodeJSON(r.Favorites, &state.Registry.Favorites); err != nil {
		return State{}, fmt.Errorf("decode favorites: %w", err)
	}
	if err := decodeJSON(r.Recent, &state.Registry.Recent); err != nil {
		return State{}, fmt.Errorf("decode recent: %w", err)
	}

	settings, err := decodeSettings([]byte(r.Settings))
	if err != nil {
		return State{}, fmt.Errorf("decode settings: %w", err)
	}
	state.Settings = settings
	return state, nil
}

// decodeSettings fills fields missing from raw with their defaults.
func decodeSettings(raw []byte) (Settings, error) {
	settings := DefaultSettings()
	if len(raw) == 0 {
		return settings, nil
	}

	var partial struct {
		DarkMode *bool    `json:"darkMode"`
		Volume   *float64 `json:"volume"`
	}
	if err := json.Unmarshal(raw, &partial); err != nil {
		return Settings{}, err
	}
	if partial.DarkMode != nil {
		settings.DarkMode = *partial.DarkMode
	}
	if partial.Volume != nil {
		settings.Volume = *partial.Volume
	}
	return settings.Clamp(), nil
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(raw string, v interface{}) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}
