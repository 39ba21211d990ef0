package bot

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/config"
	commands "github.com/hxnx/radiowave/internal/features"
	"github.com/hxnx/radiowave/internal/features/modals"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/httpapi"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/store"
	"github.com/hxnx/radiowave/internal/voice"
)

const (
	streamStartTimeout = 15 * time.Second
	shutdownTimeout    = 5 * time.Second
)

type Bot struct {
	config       *config.Config
	sessions     []*discordgo.Session
	started      bool
	presenceStop chan struct{}

	store    store.Store
	radio    *radio.Manager
	voice    *voice.Manager
	handlers *commands.Handlers
	api      *httpapi.Server
}

func New(cfg *config.Config) (*Bot, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	voiceManager := voice.NewManager(streamStartTimeout)
	notifiers := shared.NewChannelNotifiers()
	radioManager := radio.NewManager(radio.Options{
		Store: st,
		Players: func(owner string) radio.Player {
			return voiceManager.Get(owner)
		},
		Notifiers:     notifiers.For,
		DefaultVolume: cfg.DefaultVolumeLevel(),
	})

	if fs, ok := st.(*store.FileStore); ok {
		err := fs.Watch(func(owner string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := radioManager.Reload(ctx, owner); err != nil {
				log.Printf("Warning: failed to reload stations for %s: %v", owner, err)
			}
		})
		if err != nil {
			log.Printf("Warning: file watcher unavailable, external edits need a restart: %v", err)
		}
	}

	deps := &shared.Deps{
		Radio:            radioManager,
		Voice:            voiceManager,
		Awaiter:          modals.NewAwaiter(),
		Notifiers:        notifiers,
		PromptTimeout:    cfg.PromptDuration(),
		AutoLeaveTimeout: cfg.AutoLeaveDuration(),
	}

	shardCount := cfg.ShardCount
	if shardCount < 1 {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			_ = st.Close()
			return nil, err
		}

		if gw, err := s.GatewayBot(); err == nil && gw.Shards > 0 {
			shardCount = gw.Shards
		} else {
			log.Printf("Warning: failed to auto-detect shard count, defaulting to 1: %v", err)
			shardCount = 1
		}
	}

	sessions := make([]*discordgo.Session, 0, shardCount)
	for shard := 0; shard < shardCount; shard++ {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			_ = st.Close()
			return nil, err
		}

		s.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildVoiceStates |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsMessageContent

		if shardCount > 1 {
			s.Identify.Shard = &[2]int{shard, shardCount}
			s.ShardCount = shardCount
		}

		sessions = append(sessions, s)
	}

	b := &Bot{
		config:   cfg,
		sessions: sessions,
		store:    st,
		radio:    radioManager,
		voice:    voiceManager,
		handlers: commands.NewHandlers(deps, cfg.BotOwnerID),
	}
	if cfg.HTTPEnabled() {
		b.api = httpapi.New(radioManager, httpapi.Options{
			Addr:          cfg.HTTPAddr,
			JWTSecret:     cfg.APIJWTSecret,
			AdminPassword: cfg.APIAdminPassword,
		})
	}
	return b, nil
}

func (b *Bot) Start() error {
	if b.started {
		return nil
	}

	if len(b.sessions) == 0 {
		return nil
	}

	for _, s := range b.sessions {
		b.registerHandlers(s)
		b.handlers.AddHandlers(s)
	}

	if _, err := commands.RegisterCommands(b.sessions[0], b.config.ApplicationID, b.config.GuildID); err != nil {
		log.Printf("Warning: failed to register slash commands: %v", err)
	}

	for _, s := range b.sessions {
		if err := s.Open(); err != nil {
			return err
		}
	}

	if b.api != nil {
		go func() {
			log.Printf("HTTP API listening on %s", b.config.HTTPAddr)
			if err := b.api.Start(); err != nil {
				log.Printf("Warning: HTTP API stopped: %v", err)
			}
		}()
	}

	b.startPresenceUpdater()
	b.started = true
	log.Printf("Bot session opened (%d shard(s))", len(b.sessions))
	return nil
}

func (b *Bot) registerHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if s.State != nil && s.State.User != nil {
			log.Printf("Bot ready as %s#%s", s.State.User.Username, s.State.User.Discriminator)
		} else {
			log.Printf("Bot ready")
		}
		b.updatePresence()
	})
}

func (b *Bot) Stop() error {
	if !b.started {
		return nil
	}

	b.started = false
	b.stopPresenceUpdater()

	if b.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := b.api.Shutdown(ctx); err != nil {
			log.Printf("Warning: failed to stop HTTP API: %v", err)
		}
		cancel()
	}

	b.handlers.Close()
	b.radio.Close()
	b.voice.StopAll()

	for _, s := range b.sessions {
		if err := s.Close(); err != nil {
			return err
		}
	}

	if err := b.store.Close(); err != nil {
		log.Printf("Warning: failed to close station store: %v", err)
	}

	log.Printf("Bot session closed (%d shard(s))", len(b.sessions))
	return nil
}
