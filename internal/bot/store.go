package bot

import (
	"fmt"
	"log"

	"github.com/hxnx/radiowave/config"
	"github.com/hxnx/radiowave/internal/database"
	"github.com/hxnx/radiowave/internal/redis"
	"github.com/hxnx/radiowave/internal/store"
)

// openStore builds the station store STORE_BACKEND selects. A SQL store gets
// a redis cache in front when redis is configured and reachable.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreFile:
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return fs, nil

	case config.StoreRedis:
		client, err := redis.Connect(redisConfig(cfg))
		if err != nil {
			return nil, err
		}
		// the redis store is the only copy here, so keys never expire
		return redis.NewStateStore(client, 0), nil

	case config.StorePostgres, config.StoreSQLite:
		dbCfg := cfg.GetDBConfig()
		db, err := database.Open(&database.Config{
			Driver:     dbCfg.Driver,
			Host:       dbCfg.Host,
			Port:       dbCfg.Port,
			User:       dbCfg.User,
			Password:   dbCfg.Password,
			DBName:     dbCfg.Name,
			SSLMode:    dbCfg.SSLMode,
			SQLitePath: dbCfg.SQLitePath,
		})
		if err != nil {
			return nil, err
		}
		primary := database.NewStateRepository(db)

		if !cfg.RedisEnabled() {
			return primary, nil
		}
		client, err := redis.Connect(redisConfig(cfg))
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, using %s only: %v", cfg.StoreBackend, err)
			return primary, nil
		}
		return store.NewCached(primary, redis.NewStateStore(client, cfg.RedisCacheDuration())), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func redisConfig(cfg *config.Config) redis.Config {
	rc := cfg.GetRedisConfig()
	return redis.Config{
		Host:     rc.Host,
		Port:     rc.Port,
		Password: rc.Password,
		DB:       rc.DB,
	}
}
