package playlist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/pyrumble/RumbleBot/internal/bot"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player"
	"github.com/pyrumble/RumbleBot/internal/modules/playlist/api"
	"github.com/pyrumble/RumbleBot/internal/modules/playlist/client"
	"github.com/pyrumble/RumbleBot/internal/modules/playlist/domain"
	"github.com/pyrumble/RumbleBot/internal/modules/playlist/presentation"
	"github.com/pyrumble/RumbleBot/internal/modules/playlist/storage"
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*Module)(nil)

// Module provides user-owned playlist persistence and commands. The store is
// served over an internal HTTP surface; the command handlers go through the
// HTTP client rather than hitting the store directly, so the surface stays
// the single write path.
type Module struct {
	config          *Config
	commandHandlers *presentation.CommandHandlers

	store  domain.Store
	server *api.Server
}

// Name returns the module name.
func (m *Module) Name() string {
	return "playlist"
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"playlist": m.commandHandlers.HandlePlaylist,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return nil
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
	switch m.config.Storage {
	case "memory":
		slog.Warn("playlist module using in-memory storage, data will not survive restarts")
		m.store = storage.NewMemoryStore()
	default:
		store, err := storage.NewPostgresStore(storage.PostgresConfig{
			Host:     m.config.PostgresHost,
			Port:     m.config.PostgresPort,
			User:     m.config.PostgresUser,
			Password: m.config.PostgresPassword,
			DBName:   m.config.PostgresDB,
			SSLMode:  m.config.PostgresSSLMode,
		})
		if err != nil {
			return fmt.Errorf("failed to open playlist storage: %w", err)
		}
		m.store = store
	}

	m.server = api.NewServer(m.store, m.config.MasterKey, m.config.ListenAddr)
	m.server.Start()

	apiClient := client.New(m.config.APIURL, m.config.MasterKey)

	player, err := findMusicPlayer()
	if err != nil {
		return err
	}

	m.commandHandlers = presentation.NewCommandHandlers(
		apiClient,
		player.PlaybackService(),
		player.ResolverService(),
		player.AudioNode(),
	)

	slog.Info("playlist module initialized", "storage", m.config.Storage)

	return nil
}

// Shutdown cleans up module resources.
func (m *Module) Shutdown() error {
	if m.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.server.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down playlist API", "error", err)
		}
	}
	if closer, ok := m.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// findMusicPlayer locates the music player module in the global registry.
// Modules register in import order, so the player is initialized first.
func findMusicPlayer() (*music_player.Module, error) {
	for _, mod := range bot.Modules() {
		if player, ok := mod.(*music_player.Module); ok {
			return player, nil
		}
	}
	return nil, fmt.Errorf("playlist module requires the music_player module")
}
