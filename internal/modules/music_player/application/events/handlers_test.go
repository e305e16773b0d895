package events

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

const handlerTestGuild = snowflake.ID(42)

type stubRegistry struct {
	sessions map[snowflake.ID]*domain.Session
	deleted  []snowflake.ID
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{sessions: make(map[snowflake.ID]*domain.Session)}
}

func (r *stubRegistry) Get(guildID snowflake.ID) *domain.Session {
	return r.sessions[guildID]
}

func (r *stubRegistry) Save(session *domain.Session) {
	r.sessions[session.GuildID()] = session
}

func (r *stubRegistry) Delete(guildID snowflake.ID) {
	r.deleted = append(r.deleted, guildID)
	delete(r.sessions, guildID)
}

func (r *stubRegistry) Count() int {
	return len(r.sessions)
}

type stubNode struct {
	played      []*domain.Track
	playErr     error
	stopCalls   int
	disconnects int
}

func (n *stubNode) Load(_ context.Context, _ string) (*ports.LoadResult, error) {
	return &ports.LoadResult{Type: ports.LoadTypeEmpty}, nil
}

func (n *stubNode) SearchEntity(
	_ context.Context, _ string, _ domain.SearchType, _ domain.Catalog,
) ([]ports.EntityCandidate, error) {
	return nil, nil
}

func (n *stubNode) Decode(_ context.Context, _ []string) ([]*domain.Track, error) {
	return nil, nil
}

func (n *stubNode) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	if n.playErr != nil {
		return n.playErr
	}
	n.played = append(n.played, track)
	return nil
}

func (n *stubNode) Pause(_ context.Context, _ snowflake.ID, _ bool) error { return nil }

func (n *stubNode) Stop(_ context.Context, _ snowflake.ID) error {
	n.stopCalls++
	return nil
}

func (n *stubNode) Disconnect(_ context.Context, _ snowflake.ID) error {
	n.disconnects++
	return nil
}

type stubNotifier struct {
	sent      []string
	refreshes int
}

func (n *stubNotifier) Send(_ snowflake.ID, message string) (snowflake.ID, error) {
	n.sent = append(n.sent, message)
	return snowflake.ID(len(n.sent)), nil
}

func (n *stubNotifier) RefreshPanel(_, _ snowflake.ID) error {
	n.refreshes++
	return nil
}

func handlerFixture(t *testing.T) (*PlaybackEventHandler, *stubRegistry, *stubNode, *stubNotifier) {
	t.Helper()
	registry := newStubRegistry()
	node := &stubNode{}
	notifier := &stubNotifier{}
	bus := NewBus(DefaultEventBufferSize)
	t.Cleanup(bus.Close)
	handler := NewPlaybackEventHandler(registry, node, notifier, bus, time.Hour)
	return handler, registry, node, notifier
}

func endedTrack(id string) *domain.Track {
	return &domain.Track{
		ID:      domain.TrackID(id),
		Encoded: "encoded-" + id,
		Title:   "Track " + id,
	}
}

// lockingNotifier mimics the real notifier, which takes the session lock to
// snapshot state before editing the panel message.
type lockingNotifier struct {
	registry  domain.SessionRegistry
	refreshes int
}

func (n *lockingNotifier) Send(_ snowflake.ID, _ string) (snowflake.ID, error) {
	return 0, nil
}

func (n *lockingNotifier) RefreshPanel(guildID, _ snowflake.ID) error {
	session := n.registry.Get(guildID)
	if session == nil {
		return nil
	}
	session.Lock()
	defer session.Unlock()
	n.refreshes++
	return nil
}

func TestHandleTrackEnded_PanelRefreshDoesNotHoldSessionLock(t *testing.T) {
	registry := newStubRegistry()
	node := &stubNode{}
	notifier := &lockingNotifier{registry: registry}
	bus := NewBus(DefaultEventBufferSize)
	t.Cleanup(bus.Close)
	handler := NewPlaybackEventHandler(registry, node, notifier, bus, time.Hour)

	session := domain.NewSession(handlerTestGuild, 1, 2)
	session.SetCurrent(endedTrack("last"))
	session.SetPanelMessageID(snowflake.ID(7))
	registry.Save(session)

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
			GuildID: handlerTestGuild,
			Track:   endedTrack("last"),
			Reason:  domain.TrackEndFinished,
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("HandleTrackEnded did not return; session lock held across RefreshPanel")
	}

	if notifier.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1 after the queue drained", notifier.refreshes)
	}
}

func TestHandleTrackEnded_FinishedEntersHistoryAndAdvances(t *testing.T) {
	handler, registry, node, _ := handlerFixture(t)
	session := domain.NewSession(handlerTestGuild, 1, 2)
	ended := endedTrack("done")
	next := endedTrack("next")
	session.SetCurrent(ended)
	session.Queue.Put(next)
	registry.Save(session)

	handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
		GuildID: handlerTestGuild,
		Track:   ended,
		Reason:  domain.TrackEndFinished,
	})

	if session.Backpack.Len() != 1 {
		t.Errorf("Backpack.Len() = %d, want 1", session.Backpack.Len())
	}
	if len(node.played) != 1 || node.played[0] != next {
		t.Errorf("node played %v, want the next queued track", node.played)
	}
	if session.Current() != next {
		t.Error("current track should advance to the next queued track")
	}
}

func TestHandleTrackEnded_ReplacedNeverEntersHistory(t *testing.T) {
	handler, registry, node, _ := handlerFixture(t)
	session := domain.NewSession(handlerTestGuild, 1, 2)
	replacement := endedTrack("new")
	session.SetCurrent(replacement)
	session.Queue.Put(endedTrack("queued"))
	registry.Save(session)

	handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
		GuildID: handlerTestGuild,
		Track:   endedTrack("preempted"),
		Reason:  domain.TrackEndReplaced,
	})

	if session.Backpack.Len() != 0 {
		t.Errorf("Backpack.Len() = %d, want 0 for a replaced track", session.Backpack.Len())
	}
	if len(node.played) != 0 {
		t.Error("a replaced track must not trigger queue advancement")
	}
	if session.Queue.Len() != 1 {
		t.Error("queue must be untouched")
	}
}

func TestHandleTrackEnded_StoppedEntersHistoryWithoutAdvancing(t *testing.T) {
	handler, registry, node, _ := handlerFixture(t)
	session := domain.NewSession(handlerTestGuild, 1, 2)
	session.Queue.Put(endedTrack("queued"))
	registry.Save(session)

	handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
		GuildID: handlerTestGuild,
		Track:   endedTrack("stopped"),
		Reason:  domain.TrackEndStopped,
	})

	if session.Backpack.Len() != 1 {
		t.Errorf("Backpack.Len() = %d, want 1", session.Backpack.Len())
	}
	// The stop issuer drives its own follow-up.
	if len(node.played) != 0 {
		t.Error("a stopped track must not trigger queue advancement")
	}
}

func TestHandleTrackEnded_LoopTrackRequeuesExactlyOnce(t *testing.T) {
	handler, registry, node, _ := handlerFixture(t)
	session := domain.NewSession(handlerTestGuild, 1, 2)
	session.Queue.SetMode(domain.QueueModeLoopTrack)
	ended := endedTrack("looped")
	session.SetCurrent(ended)
	registry.Save(session)

	handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
		GuildID: handlerTestGuild,
		Track:   ended,
		Reason:  domain.TrackEndFinished,
	})

	if len(node.played) != 1 || node.played[0] != ended {
		t.Errorf("node played %v, want the finished track again", node.played)
	}
	if session.Queue.Len() != 0 {
		t.Errorf("Queue.Len() = %d, want 0 (requeued exactly once, then dequeued)", session.Queue.Len())
	}
}

func TestHandleTrackEnded_LoopQueueCyclesToTail(t *testing.T) {
	handler, registry, node, _ := handlerFixture(t)
	session := domain.NewSession(handlerTestGuild, 1, 2)
	session.Queue.SetMode(domain.QueueModeLoopQueue)
	ended := endedTrack("a")
	next := endedTrack("b")
	session.SetCurrent(ended)
	session.Queue.Put(next)
	registry.Save(session)

	handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
		GuildID: handlerTestGuild,
		Track:   ended,
		Reason:  domain.TrackEndFinished,
	})

	if len(node.played) != 1 || node.played[0] != next {
		t.Errorf("node played %v, want the next queued track", node.played)
	}
	if tail := session.Queue.Peek(); tail != ended {
		t.Errorf("queue head = %v, want the finished track cycled to the tail", tail)
	}
}

func TestHandleTrackEnded_LoadFailedAdvancesWithoutRequeue(t *testing.T) {
	handler, registry, node, _ := handlerFixture(t)
	session := domain.NewSession(handlerTestGuild, 1, 2)
	session.Queue.SetMode(domain.QueueModeLoopTrack)
	failed := endedTrack("broken")
	next := endedTrack("next")
	session.SetCurrent(failed)
	session.Queue.Put(next)
	registry.Save(session)

	handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
		GuildID: handlerTestGuild,
		Track:   failed,
		Reason:  domain.TrackEndLoadFailed,
	})

	if len(node.played) != 1 || node.played[0] != next {
		t.Errorf("node played %v, want the next track, never the failed one", node.played)
	}
	if session.Queue.Len() != 0 {
		t.Error("failed track must not be requeued")
	}
}

func TestHandleTrackEnded_EmptyQueueClearsCurrent(t *testing.T) {
	handler, registry, node, _ := handlerFixture(t)
	session := domain.NewSession(handlerTestGuild, 1, 2)
	ended := endedTrack("last")
	session.SetCurrent(ended)
	registry.Save(session)

	handler.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
		GuildID: handlerTestGuild,
		Track:   ended,
		Reason:  domain.TrackEndFinished,
	})

	if session.Current() != nil {
		t.Error("current track should be cleared when the queue is empty")
	}
	if len(node.played) != 0 {
		t.Error("nothing should be played from an empty queue")
	}
	if session.Backpack.Len() != 1 {
		t.Error("the finished track still enters history")
	}
}
