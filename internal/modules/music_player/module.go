package music_player

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/pyrumble/RumbleBot/internal/bot"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/events"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/usecases"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/infrastructure"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/presentation"
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*Module)(nil)

// Module provides voice-channel music playback commands.
type Module struct {
	config          *Config
	commandHandlers *presentation.CommandHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter

	registry *infrastructure.MemorySessionRegistry
	playback *usecases.PlaybackService
	resolver *usecases.ResolverService

	eventBus        *events.Bus
	playbackHandler *events.PlaybackEventHandler

	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *Module) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":       m.commandHandlers.HandlePlay,
		"playfile":   m.commandHandlers.HandlePlayFile,
		"nowplaying": m.commandHandlers.HandleNowPlaying,
		"queue":      m.commandHandlers.HandleQueue,
		"skip":       m.commandHandlers.HandleSkip,
		"previous":   m.commandHandlers.HandlePrevious,
		"replay":     m.commandHandlers.HandleReplay,
		"loop":       m.commandHandlers.HandleLoop,
		"pause":      m.commandHandlers.HandlePause,
		"resume":     m.commandHandlers.HandleResume,
		"stop":       m.commandHandlers.HandleStop,
		"stats":      m.commandHandlers.HandleStats,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			if m.lavalinkAdapter != nil {
				m.lavalinkAdapter.OnVoiceServerUpdate(event)
			}
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			if m.lavalinkAdapter != nil {
				m.lavalinkAdapter.OnVoiceStateUpdate(event)
			}
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *Module) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	m.registry = infrastructure.NewMemorySessionRegistry()

	if deps.Session == nil {
		slog.Warn("music_player module initialized without session, audio node integration disabled")
		m.playback = usecases.NewPlaybackService(m.registry, nil, nil, nil)
		m.resolver = usecases.NewResolverService(nil, domain.DefaultCatalogs())
		m.commandHandlers = presentation.NewCommandHandlers(m.playback, m.resolver)
		return nil
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.eventBus = events.NewBus(events.DefaultEventBufferSize)

	adapter, err := infrastructure.NewLavalinkAdapter(deps.Session, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
	})
	if err != nil {
		return err
	}
	adapter.SetEventBus(m.eventBus)
	m.lavalinkAdapter = adapter

	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session, m.registry)

	m.playback = usecases.NewPlaybackService(m.registry, adapter, adapter, voiceState)
	m.resolver = usecases.NewResolverService(adapter, domain.DefaultCatalogs())

	m.playbackHandler = events.NewPlaybackEventHandler(
		m.registry,
		adapter,
		notifier,
		m.eventBus,
		m.config.InactivityTimeout,
	)
	m.playbackHandler.Start(m.ctx)

	m.commandHandlers = presentation.NewCommandHandlers(m.playback, m.resolver)

	slog.Info("music_player module initialized")

	return nil
}

// Shutdown cleans up module resources.
func (m *Module) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.playbackHandler != nil {
		m.playbackHandler.Stop()
	}
	if m.eventBus != nil {
		m.eventBus.Close()
	}
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Link().Close()
	}
	return nil
}

// PlaybackService exposes the playback use cases to other modules.
func (m *Module) PlaybackService() *usecases.PlaybackService {
	return m.playback
}

// ResolverService exposes the resolver use cases to other modules.
func (m *Module) ResolverService() *usecases.ResolverService {
	return m.resolver
}

// AudioNode exposes the audio node port to other modules.
func (m *Module) AudioNode() ports.AudioNode {
	if m.lavalinkAdapter == nil {
		return nil
	}
	return m.lavalinkAdapter
}

// SessionRegistry exposes the session registry to other modules.
func (m *Module) SessionRegistry() domain.SessionRegistry {
	return m.registry
}
