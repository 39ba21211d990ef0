package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/hxnx/radiowave/internal/store"
	redislib "github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "radiowave:"

// StateStore keeps the persisted layout as four string keys per owner.
type StateStore struct {
	client *redislib.Client
	ttl    time.Duration
}

// NewStateStore returns a store whose keys expire after ttl; zero keeps them forever.
func NewStateStore(client *redislib.Client, ttl time.Duration) *StateStore {
	return &StateStore{client: client, ttl: ttl}
}

func stateKeys(owner string) []string {
	base := stateKeyPrefix + owner + ":"
	return []string{
		base + "stations",
		base + "favorites",
		base + "recent",
		base + "settings",
	}
}

func (s *StateStore) Save(ctx context.Context, owner string, state store.State) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if owner == "" {
		return store.ErrOwnerRequired
	}

	rec, err := store.EncodeRecord(state)
	if err != nil {
		return err
	}

	keys := stateKeys(owner)
	values := []string{rec.Stations, rec.Favorites, rec.Recent, rec.Settings}

	pipe := s.client.TxPipeline()
	for i, key := range keys {
		pipe.Set(ctx, key, values[i], s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *StateStore) Load(ctx context.Context, owner string) (store.State, bool, error) {
	if s.client == nil {
		return store.State{}, false, fmt.Errorf("redis client is nil")
	}
	if owner == "" {
		return store.State{}, false, store.ErrOwnerRequired
	}

	values, err := s.client.MGet(ctx, stateKeys(owner)...).Result()
	if err != nil {
		return store.State{}, false, err
	}

	fields := make([]string, len(values))
	for i, v := range values {
		switch raw := v.(type) {
		case nil:
		case string:
			fields[i] = raw
		default:
			return store.State{}, false, fmt.Errorf("unexpected redis payload type: %T", v)
		}
	}
	if fields[0] == "" {
		return store.State{}, false, nil
	}

	state, err := store.Record{
		Stations:  fields[0],
		Favorites: fields[1],
		Recent:    fields[2],
		Settings:  fields[3],
	}.Decode()
	if err != nil {
		return store.State{}, false, err
	}
	return state, true, nil
}

func (s *StateStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
