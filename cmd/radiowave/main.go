package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hxnx/radiowave/config"
	"github.com/hxnx/radiowave/internal/bot"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("RadioWave - Discord Internet Radio")
	log.Println("==================================")

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Error: Failed to load configuration: %v", err)
		log.Println("")
		log.Println("Please ensure you have set the following environment variables:")
		log.Println("  DISCORD_TOKEN          - Your Discord bot token (required)")
		log.Println("  DISCORD_APPLICATION_ID - Your Discord application ID (required)")
		log.Println("")
		log.Println("Optional environment variables:")
		log.Println("  DISCORD_GUILD_ID       - Guild ID for development (registers commands to specific guild)")
		log.Println("  BOT_OWNER_ID           - User allowed to run !sync")
		log.Println("  SHARD_COUNT            - Number of shards (0 = auto-detect)")
		log.Println("  LOG_LEVEL              - Log level (debug, info, warn, error)")
		log.Println("  DEFAULT_VOLUME         - Default volume level (0-100, default: 70)")
		log.Println("  AUTO_LEAVE_TIMEOUT     - Auto-leave timeout in seconds (0 = disabled, default: 300)")
		log.Println("  PROMPT_TIMEOUT         - Confirmation timeout in seconds (default: 60)")
		log.Println("")
		log.Println("Storage configuration:")
		log.Println("  STORE_BACKEND          - file, postgres, sqlite or redis (default: file)")
		log.Println("  DATA_DIR               - Directory for the file store (default: data)")
		log.Println("  SQLITE_PATH            - Database file for the sqlite store (default: radiowave.db)")
		log.Println("  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE")
		log.Println("  REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB, REDIS_CACHE_TTL")
		log.Println("")
		log.Println("HTTP API configuration:")
		log.Println("  HTTP_ADDR, API_JWT_SECRET, API_ADMIN_PASSWORD")
		os.Exit(1)
	}

	log.Println("")
	log.Println("Configuration loaded successfully")
	log.Println("---------------------------------")

	if cfg.IsDevelopment() {
		log.Printf("Mode: Development (Guild ID: %s)", cfg.GuildID)
	} else {
		log.Printf("Mode: Production (global commands)")
	}
	log.Printf("Log Level: %s", cfg.LogLevel)

	log.Println("")
	log.Println("Bot Settings:")
	log.Printf("  Default Volume: %d%%", cfg.DefaultVolume)
	log.Printf("  Prompt Timeout: %d seconds", cfg.PromptTimeout)
	if cfg.AutoLeaveTimeout > 0 {
		log.Printf("  Auto Leave Timeout: %d seconds", cfg.AutoLeaveTimeout)
	} else {
		log.Printf("  Auto Leave Timeout: disabled")
	}

	if cfg.ShardCount > 0 {
		log.Printf("  Shard Count: %d (manual)", cfg.ShardCount)
	} else {
		log.Printf("  Shard Count: auto-detect")
	}

	log.Println("")
	log.Println("Storage:")
	log.Printf("  Backend: %s", cfg.StoreBackend)
	switch cfg.StoreBackend {
	case config.StoreFile:
		log.Printf("  Directory: %s", cfg.DataDir)
	case config.StoreSQLite:
		log.Printf("  Database: %s", cfg.SQLitePath)
	case config.StorePostgres:
		log.Printf("  Host: %s:%d", cfg.DBHost, cfg.DBPort)
		log.Printf("  Database: %s", cfg.DBName)
		log.Printf("  User: %s", cfg.DBUser)
		log.Printf("  SSL Mode: %s", cfg.DBSSLMode)
	}
	if cfg.RedisEnabled() {
		log.Printf("  Redis: %s:%d (db %d)", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)
	}

	log.Println("")
	log.Println("HTTP API:")
	if cfg.HTTPEnabled() {
		log.Printf("  Address: %s", cfg.HTTPAddr)
		if cfg.APIJWTSecret != "" {
			log.Printf("  Auth: JWT")
		} else {
			log.Printf("  Auth: none")
		}
	} else {
		log.Printf("  Status: disabled")
	}

	log.Println("")
	log.Println("---------------------------------")

	b, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("Error: Failed to create bot: %v", err)
	}

	log.Println("Starting bot...")
	if err := b.Start(); err != nil {
		log.Fatalf("Error: Bot error: %v", err)
	}

	log.Println("Bot is running. Press CTRL+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	if err := b.Stop(); err != nil {
		log.Printf("Error: Failed to stop bot: %v", err)
	}
}
