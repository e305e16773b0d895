package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

// MemorySessionRegistry is an in-memory implementation of SessionRegistry.
type MemorySessionRegistry struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*domain.Session
}

// NewMemorySessionRegistry creates a new MemorySessionRegistry.
func NewMemorySessionRegistry() *MemorySessionRegistry {
	return &MemorySessionRegistry{
		sessions: make(map[snowflake.ID]*domain.Session),
	}
}

// Get returns the Session for the given guild, or nil if none exists.
func (r *MemorySessionRegistry) Get(guildID snowflake.ID) *domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[guildID]
}

// Save stores the Session.
func (r *MemorySessionRegistry) Save(session *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.GuildID()] = session
}

// Delete removes the Session for the given guild.
func (r *MemorySessionRegistry) Delete(guildID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, guildID)
}

// Count returns the number of live sessions (for testing/monitoring).
func (r *MemorySessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Ensure MemorySessionRegistry implements SessionRegistry.
var _ domain.SessionRegistry = (*MemorySessionRegistry)(nil)
