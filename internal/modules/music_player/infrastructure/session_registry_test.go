package infrastructure

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

func TestMemorySessionRegistry(t *testing.T) {
	registry := NewMemorySessionRegistry()
	guildID := snowflake.ID(1)

	if got := registry.Get(guildID); got != nil {
		t.Errorf("Get() on empty registry = %v, want nil", got)
	}

	session := domain.NewSession(guildID, 2, 3)
	registry.Save(session)

	if got := registry.Get(guildID); got != session {
		t.Errorf("Get() = %v, want the saved session", got)
	}
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}

	registry.Delete(guildID)
	if got := registry.Get(guildID); got != nil {
		t.Errorf("Get() after delete = %v, want nil", got)
	}
	if registry.Count() != 0 {
		t.Errorf("Count() = %d, want 0", registry.Count())
	}
}

func TestMemorySessionRegistry_IsolatesGuilds(t *testing.T) {
	registry := NewMemorySessionRegistry()

	first := domain.NewSession(1, 10, 100)
	second := domain.NewSession(2, 20, 200)
	registry.Save(first)
	registry.Save(second)

	first.Queue.Put(&domain.Track{ID: "a", Encoded: "x", Title: "A"})

	if got := registry.Get(2); got.Queue.Len() != 0 {
		t.Error("sessions must not share queue state")
	}
	registry.Delete(1)
	if registry.Get(2) != second {
		t.Error("deleting one guild must not affect another")
	}
}
