package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hxnx/radiowave/internal/store"
	"github.com/jmoiron/sqlx"
)

const stateRepoTimeout = 2 * time.Second

type stateRow struct {
	Stations  string `db:"stations"`
	Favorites string `db:"favorites"`
	Recent    string `db:"recent"`
	Settings  string `db:"settings"`
}

// StateRepository stores registry state rows keyed by owner.
type StateRepository struct {
	db *sqlx.DB
}

func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) Save(ctx context.Context, owner string, state store.State) error {
	if owner == "" {
		return store.ErrOwnerRequired
	}

	rec, err := store.EncodeRecord(state)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, stateRepoTimeout)
	defer cancel()

	query := r.db.Rebind(`
		INSERT INTO registry_state (owner_id, stations, favorites, recent, settings, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (owner_id)
		DO UPDATE SET
			stations = excluded.stations,
			favorites = excluded.favorites,
			recent = excluded.recent,
			settings = excluded.settings,
			updated_at = CURRENT_TIMESTAMP;
	`)

	_, err = r.db.ExecContext(ctx, query, owner, rec.Stations, rec.Favorites, rec.Recent, rec.Settings)
	return err
}

func (r *StateRepository) Load(ctx context.Context, owner string) (store.State, bool, error) {
	if owner == "" {
		return store.State{}, false, store.ErrOwnerRequired
	}

	ctx, cancel := context.WithTimeout(ctx, stateRepoTimeout)
	defer cancel()

	query := r.db.Rebind(`
		SELECT stations, favorites, recent, settings
		FROM registry_state
		WHERE owner_id = ?
	`)

	var row stateRow
	if err := r.db.GetContext(ctx, &row, query, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.State{}, false, nil
		}
		return store.State{}, false, err
	}

	state, err := store.Record{
		Stations:  row.Stations,
		Favorites: row.Favorites,
		Recent:    row.Recent,
		Settings:  row.Settings,
	}.Decode()
	if err != nil {
		return store.State{}, false, err
	}
	return state, true, nil
}

func (r *StateRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
