package votes

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/pyrumble/RumbleBot/internal/bot"
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*Module)(nil)
	_ bot.CooldownProvider   = (*Module)(nil)
)

// Module tracks bot-list votes and supplies the command cooldown gate.
type Module struct {
	config          *Config
	commandHandlers *CommandHandlers

	store   VoteStore
	gate    *Gate
	webhook *WebhookServer
}

// Name returns the module name.
func (m *Module) Name() string {
	return "votes"
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"check-vote": m.commandHandlers.HandleCheckVote,
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
	if m.config.RedisAddr == "" {
		slog.Warn("votes module using in-memory vote store, votes will not survive restarts")
		m.store = NewMemoryVoteStore()
	} else {
		store, err := NewRedisVoteStore(m.config.RedisAddr, m.config.RedisPassword, m.config.RedisDB)
		if err != nil {
			return err
		}
		m.store = store
	}

	m.gate = NewGate(m.store)
	m.commandHandlers = NewCommandHandlers(m.store, m.config.VoteURL)

	m.webhook = NewWebhookServer(m.store, m.config.WebhookAuth, m.config.WebhookAddr, deps.Session)
	m.webhook.Start()

	slog.Info("votes module initialized")

	return nil
}

// Shutdown cleans up module resources.
func (m *Module) Shutdown() error {
	if m.webhook != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.webhook.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down vote webhook", "error", err)
		}
	}
	if store, ok := m.store.(*RedisVoteStore); ok {
		return store.Close()
	}
	return nil
}

// CooldownGate exposes the gate to the bot framework.
func (m *Module) CooldownGate() bot.CooldownGate {
	return m.gate
}
