package store

import (
	"context"
	"log"
)

// Cached serves loads from cache when possible and writes through to both.
// Cache failures are logged and never fail the call.
type Cached struct {
	primary Store
	cache   Store
}

func NewCached(primary, cache Store) *Cached {
	return &Cached{primary: primary, cache: cache}
}

func (c *Cached) Load(ctx context.Context, owner string) (State, bool, error) {
	state, found, err := c.cache.Load(ctx, owner)
	if err != nil {
		log.Printf("Warning: cache load failed for %s: %v", owner, err)
	} else if found {
		return state, true, nil
	}

	state, found, err = c.primary.Load(ctx, owner)
	if err != nil || !found {
		return state, found, err
	}

	if err := c.cache.Save(ctx, owner, state); err != nil {
		log.Printf("Warning: cache fill failed for %s: %v", owner, err)
	}
	return state, true, nil
}

func (c *Cached) Save(ctx context.Context, owner string, state State) error {
	if err := c.primary.Save(ctx, owner, state); err != nil {
		return err
	}
	if err := c.cache.Save(ctx, owner, state); err != nil {
		log.Printf("Warning: cache write failed for %s: %v", owner, err)
	}
	return nil
}

func (c *Cached) Close() error {
	cacheErr := c.cache.Close()
	if err := c.primary.Close(); err != nil {
		return err
	}
	return cacheErr
}
