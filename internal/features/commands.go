package commands

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	radiocmd "github.com/hxnx/radiowave/internal/features/radio/commands"
	radiolisteners "github.com/hxnx/radiowave/internal/features/radio/listeners"
	shared "github.com/hxnx/radiowave/internal/features/shared"
)

var CommandList = []*discordgo.ApplicationCommand{
	radiocmd.Command,
}

// Handlers wires the bot's slash commands and component listeners to the
// shared radio services.
type Handlers struct {
	deps      *shared.Deps
	ownerID   string
	autoLeave *radiolisteners.AutoLeave
	commands  map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
}

func NewHandlers(deps *shared.Deps, ownerID string) *Handlers {
	h := &Handlers{
		deps:      deps,
		ownerID:   ownerID,
		autoLeave: radiolisteners.NewAutoLeave(deps),
	}
	h.commands = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		radiocmd.CommandName: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			radiocmd.Handle(deps, s, i)
		},
	}
	return h
}

func RegisterCommands(s *discordgo.Session, appID string, guildID string) ([]*discordgo.ApplicationCommand, error) {
	scope := "global"
	if guildID != "" {
		scope = fmt.Sprintf("guild:%s", guildID)
	}

	log.Printf("Registering %d commands (%s)", len(CommandList), scope)

	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, CommandList)
	if err != nil {
		return nil, fmt.Errorf("cannot bulk overwrite commands: %w", err)
	}
	return cmds, nil
}

func (h *Handlers) AddHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		h.HandleSyncMessage(s, m)
	})

	s.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		h.autoLeave.HandleVoiceStateUpdate(s, vs)
	})

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if h.deps.Awaiter.HandleInteraction(i) {
			return
		}

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			data := i.ApplicationCommandData()
			if handler, ok := h.commands[data.Name]; ok {
				handler(s, i)
			}
		case discordgo.InteractionMessageComponent:
			if radiolisteners.RouteRadioComponent(h.deps, s, i) {
				return
			}
		default:
			return
		}
	})
}

func (h *Handlers) Close() {
	h.autoLeave.Close()
}
