package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

// DefaultIdleTimeout is how long a session may sit without playback before it
// is torn down.
const DefaultIdleTimeout = 5 * time.Minute

// PlaybackEventHandler consumes the audio node's event stream and drives the
// per-session reactions: history bookkeeping, queue advancement, error
// reporting, and idle teardown.
type PlaybackEventHandler struct {
	registry    domain.SessionRegistry
	node        ports.AudioNode
	notifier    ports.Notifier
	bus         *Bus
	idleTimeout time.Duration

	timersMu   sync.Mutex
	idleTimers map[snowflake.ID]*time.Timer

	wg   sync.WaitGroup
	done chan struct{}
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	registry domain.SessionRegistry,
	node ports.AudioNode,
	notifier ports.Notifier,
	bus *Bus,
	idleTimeout time.Duration,
) *PlaybackEventHandler {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &PlaybackEventHandler{
		registry:    registry,
		node:        node,
		notifier:    notifier,
		bus:         bus,
		idleTimeout: idleTimeout,
		idleTimers:  make(map[snowflake.ID]*time.Timer),
		done:        make(chan struct{}),
	}
}

// Start begins listening for events in background goroutines.
func (h *PlaybackEventHandler) Start(ctx context.Context) {
	h.wg.Add(4)

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.TrackStarted():
				if !ok {
					return
				}
				h.handleTrackStarted(event)
			}
		}
	}()

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.TrackEnded():
				if !ok {
					return
				}
				h.handleTrackEnded(ctx, event)
			}
		}
	}()

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.TrackException():
				if !ok {
					return
				}
				h.handleTrackException(event)
			}
		}
	}()

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.PlayerInactive():
				if !ok {
					return
				}
				h.handlePlayerInactive(ctx, event)
			}
		}
	}()

	slog.Debug("playback event handler started")
}

// Stop stops the event handler and waits for goroutines to finish.
func (h *PlaybackEventHandler) Stop() {
	close(h.done)
	h.wg.Wait()

	h.timersMu.Lock()
	for guildID, timer := range h.idleTimers {
		timer.Stop()
		delete(h.idleTimers, guildID)
	}
	h.timersMu.Unlock()

	slog.Debug("playback event handler stopped")
}

func (h *PlaybackEventHandler) handleTrackStarted(event domain.TrackStartedEvent) {
	h.cancelIdleTimer(event.GuildID)

	session := h.registry.Get(event.GuildID)
	if session == nil {
		return
	}

	// Track start only refreshes the control panel; state was already
	// updated by whoever issued the play command.
	session.Lock()
	panelID := session.PanelMessageID()
	session.Unlock()

	if panelID == nil {
		return
	}
	if err := h.notifier.RefreshPanel(event.GuildID, *panelID); err != nil {
		slog.Warn("failed to refresh control panel",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

// HandleTrackEnded applies the track-end reaction: history bookkeeping, loop
// requeue, and queue advancement. Exported for direct use in tests; the bus
// consumer goroutine is the production caller.
func (h *PlaybackEventHandler) HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	h.handleTrackEnded(ctx, event)
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	session := h.registry.Get(event.GuildID)
	if session == nil {
		slog.Debug("track ended but no session", "guild", event.GuildID)
		return
	}

	// RefreshPanel takes the session lock itself, so the refresh must happen
	// after the state transition releases it.
	panelID := h.applyTrackEnd(ctx, session, event)
	if panelID == nil {
		return
	}
	if err := h.notifier.RefreshPanel(event.GuildID, *panelID); err != nil {
		slog.Warn("failed to refresh control panel",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

// applyTrackEnd performs the state transition under the session lock and
// returns the control-panel message to redraw, if any.
func (h *PlaybackEventHandler) applyTrackEnd(
	ctx context.Context,
	session *domain.Session,
	event domain.TrackEndedEvent,
) *snowflake.ID {
	session.Lock()
	defer session.Unlock()

	ended := event.Track
	// Prefer the session's copy: it carries the requester extras the node
	// does not round-trip.
	if current := session.Current(); current != nil && ended != nil && current.ID == ended.ID {
		ended = current
	}

	// A replaced track was pre-empted, not completed; it never enters history.
	if ended != nil && event.Reason.EntersBackpack() {
		session.Backpack.Push(ended)
	}

	if !event.Reason.ShouldAdvanceQueue() {
		return nil
	}

	// Loop modes re-insert the finished track. A track that failed to load
	// is not requeued, even in loop-track mode: that would retry forever.
	if event.Reason == domain.TrackEndFinished && ended != nil {
		session.Queue.Requeue(ended)
	}

	next := session.Queue.Next()
	if next == nil {
		session.SetCurrent(nil)
		h.scheduleIdleTimer(event.GuildID)
		return session.PanelMessageID()
	}

	if err := h.node.Play(ctx, event.GuildID, next); err != nil {
		slog.Error("failed to play next track after track ended",
			"guild", event.GuildID,
			"error", err,
		)
		session.SetCurrent(nil)
		h.scheduleIdleTimer(event.GuildID)
		return nil
	}
	session.SetCurrent(next)
	return nil
}

func (h *PlaybackEventHandler) handleTrackException(event domain.TrackExceptionEvent) {
	session := h.registry.Get(event.GuildID)
	if session == nil {
		return
	}

	session.Lock()
	channelID := session.TextChannelID()
	session.Unlock()

	msg := fmt.Sprintf("Unexpected error while playing `%s`: %s", event.Title, event.Message)
	if _, err := h.notifier.Send(channelID, msg); err != nil {
		slog.Error("failed to report track exception",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *PlaybackEventHandler) handlePlayerInactive(
	ctx context.Context,
	event domain.PlayerInactiveEvent,
) {
	session := h.registry.Get(event.GuildID)
	if session == nil {
		return
	}

	slog.Info("session idle timeout reached, tearing down", "guild", event.GuildID)

	session.Lock()
	channelID := session.TextChannelID()
	session.Queue.Clear()
	session.Backpack.Clear()
	session.SetCurrent(nil)
	session.Unlock()

	if err := h.node.Disconnect(ctx, event.GuildID); err != nil {
		slog.Warn("failed to disconnect idle session",
			"guild", event.GuildID,
			"error", err,
		)
	}
	h.registry.Delete(event.GuildID)

	if _, err := h.notifier.Send(channelID, "Disconnected: player is inactive."); err != nil {
		slog.Warn("failed to notify idle disconnect",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *PlaybackEventHandler) scheduleIdleTimer(guildID snowflake.ID) {
	h.timersMu.Lock()
	defer h.timersMu.Unlock()

	if timer, ok := h.idleTimers[guildID]; ok {
		timer.Stop()
	}
	h.idleTimers[guildID] = time.AfterFunc(h.idleTimeout, func() {
		h.bus.PublishPlayerInactive(domain.PlayerInactiveEvent{GuildID: guildID})
	})
}

func (h *PlaybackEventHandler) cancelIdleTimer(guildID snowflake.ID) {
	h.timersMu.Lock()
	defer h.timersMu.Unlock()

	if timer, ok := h.idleTimers[guildID]; ok {
		timer.Stop()
		delete(h.idleTimers, guildID)
	}
}
