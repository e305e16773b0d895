package presentation

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/bot"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/usecases"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/infrastructure"
)

type recordingNode struct {
	played []*domain.Track
	stops  int
}

func (n *recordingNode) Load(_ context.Context, _ string) (*ports.LoadResult, error) {
	return &ports.LoadResult{Type: ports.LoadTypeEmpty}, nil
}

func (n *recordingNode) SearchEntity(
	_ context.Context, _ string, _ domain.SearchType, _ domain.Catalog,
) ([]ports.EntityCandidate, error) {
	return nil, nil
}

func (n *recordingNode) Decode(_ context.Context, _ []string) ([]*domain.Track, error) {
	return nil, nil
}

func (n *recordingNode) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	n.played = append(n.played, track)
	return nil
}

func (n *recordingNode) Pause(_ context.Context, _ snowflake.ID, _ bool) error { return nil }

func (n *recordingNode) Stop(_ context.Context, _ snowflake.ID) error {
	n.stops++
	return nil
}

func (n *recordingNode) Disconnect(_ context.Context, _ snowflake.ID) error { return nil }

type noopVoiceGateway struct{}

func (noopVoiceGateway) JoinChannel(_ context.Context, _, _ snowflake.ID) error { return nil }
func (noopVoiceGateway) LeaveChannel(_ context.Context, _ snowflake.ID) error   { return nil }

type fixedVoiceState struct {
	userChannels map[snowflake.ID]snowflake.ID
}

func (s fixedVoiceState) UserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	return s.userChannels[userID], nil
}

func (s fixedVoiceState) BotVoiceChannel(_ snowflake.ID) snowflake.ID { return 0 }

func (s fixedVoiceState) MissingVoicePermissions(_, _ snowflake.ID) ([]string, error) {
	return nil, nil
}

func (s fixedVoiceState) MissingTextPermissions(_, _ snowflake.ID) ([]string, error) {
	return nil, nil
}

func (s fixedVoiceState) ChannelHasRoom(_, _ snowflake.ID) (bool, error) { return true, nil }
func (s fixedVoiceState) CanMoveMembers(_ snowflake.ID) bool             { return false }

func commandInteraction(guildID, userID, channelID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			GuildID:   guildID,
			ChannelID: channelID,
			Type:      discordgo.InteractionApplicationCommand,
			Member: &discordgo.Member{
				User: &discordgo.User{ID: userID},
			},
		},
	}
}

func embedDescription(r *bot.MockResponder) string {
	if r.LastResponse == nil || r.LastResponse.Data == nil || len(r.LastResponse.Data.Embeds) == 0 {
		return ""
	}
	return r.LastResponse.Data.Embeds[0].Description
}

func TestHandleSkip_RejectsUnboundChannelAndUser(t *testing.T) {
	registry := infrastructure.NewMemorySessionRegistry()
	node := &recordingNode{}
	voiceState := fixedVoiceState{userChannels: map[snowflake.ID]snowflake.ID{}}
	playback := usecases.NewPlaybackService(registry, node, noopVoiceGateway{}, voiceState)
	handlers := NewCommandHandlers(playback, nil)

	session := domain.NewSession(100, 200, 300)
	current := &domain.Track{ID: "current", Title: "Current"}
	queued := &domain.Track{ID: "queued", Title: "Queued"}
	session.SetCurrent(current)
	session.Queue.Put(queued)
	registry.Save(session)

	// Command from an unbound text channel by a user in no voice channel.
	responder := &bot.MockResponder{}
	if err := handlers.HandleSkip(nil, commandInteraction("100", "77", "999"), responder); err != nil {
		t.Fatalf("HandleSkip() error = %v", err)
	}

	if len(node.played) != 0 || node.stops != 0 {
		t.Errorf("node received played=%d stops=%d, want no playback commands", len(node.played), node.stops)
	}
	if session.Current() != current {
		t.Error("the session's current track must be untouched")
	}
	if desc := embedDescription(responder); desc == "" || strings.Contains(desc, "Skipped") {
		t.Errorf("response = %q, want a rejection message", desc)
	}
}

func TestHandleSkip_AllowsBoundUser(t *testing.T) {
	registry := infrastructure.NewMemorySessionRegistry()
	node := &recordingNode{}
	voiceState := fixedVoiceState{userChannels: map[snowflake.ID]snowflake.ID{77: 200}}
	playback := usecases.NewPlaybackService(registry, node, noopVoiceGateway{}, voiceState)
	handlers := NewCommandHandlers(playback, nil)

	session := domain.NewSession(100, 200, 300)
	session.SetCurrent(&domain.Track{ID: "current", Title: "Current"})
	session.Queue.Put(&domain.Track{ID: "queued", Title: "Queued"})
	registry.Save(session)

	responder := &bot.MockResponder{}
	if err := handlers.HandleSkip(nil, commandInteraction("100", "77", "300"), responder); err != nil {
		t.Fatalf("HandleSkip() error = %v", err)
	}

	if len(node.played) != 1 {
		t.Fatalf("node played %d tracks, want 1", len(node.played))
	}
	if node.played[0].ID != "queued" {
		t.Errorf("played track = %s, want the queued one", node.played[0].ID)
	}
}

func TestHandleStop_RejectsUnboundChannel(t *testing.T) {
	registry := infrastructure.NewMemorySessionRegistry()
	node := &recordingNode{}
	voiceState := fixedVoiceState{userChannels: map[snowflake.ID]snowflake.ID{77: 200}}
	playback := usecases.NewPlaybackService(registry, node, noopVoiceGateway{}, voiceState)
	handlers := NewCommandHandlers(playback, nil)

	session := domain.NewSession(100, 200, 300)
	session.Queue.Put(&domain.Track{ID: "queued", Title: "Queued"})
	registry.Save(session)

	responder := &bot.MockResponder{}
	if err := handlers.HandleStop(nil, commandInteraction("100", "77", "999"), responder); err != nil {
		t.Fatalf("HandleStop() error = %v", err)
	}

	if node.stops != 0 {
		t.Error("stop must not reach the node from an unbound channel")
	}
	if session.Queue.Len() != 1 {
		t.Error("the queue must not be wiped")
	}
	if registry.Get(100) == nil {
		t.Error("the session must survive")
	}
}
