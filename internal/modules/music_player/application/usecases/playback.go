package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

// AttachInput contains the input for the Attach use case.
type AttachInput struct {
	GuildID       snowflake.ID
	UserID        snowflake.ID
	TextChannelID snowflake.ID
}

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Tracks  []*domain.Track
	Extras  map[string]any // attached to each track before enqueue
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Started  bool // true if playback started, false if only enqueued
	Enqueued int
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID     snowflake.ID
	ClearQueues bool
	Disconnect  bool
}

// NowPlayingOutput describes the current playback state for display.
type NowPlayingOutput struct {
	Track    *domain.Track
	Paused   bool
	Mode     domain.QueueMode
	QueueLen int
}

// PlaybackService owns the per-guild playback sessions and every command that
// mutates them. All mutating methods lock the session so queue and backpack
// changes are serialized with node command issuance.
type PlaybackService struct {
	registry   domain.SessionRegistry
	node       ports.AudioNode
	voice      ports.VoiceGateway
	voiceState ports.VoiceStateProvider
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	registry domain.SessionRegistry,
	node ports.AudioNode,
	voice ports.VoiceGateway,
	voiceState ports.VoiceStateProvider,
) *PlaybackService {
	return &PlaybackService{
		registry:   registry,
		node:       node,
		voice:      voice,
		voiceState: voiceState,
	}
}

// Attach ensures a session exists for the guild, joining the requester's
// voice channel if needed, and enforces the session's command bindings.
//
// With no existing session, the requester must occupy a voice channel where
// the bot can join and speak, and the channel must have a free slot unless
// the bot can move members. With an existing session, the command must come
// from the bound text channel and the requester must share the bot's voice
// channel.
func (s *PlaybackService) Attach(ctx context.Context, input AttachInput) (*domain.Session, error) {
	if session := s.registry.Get(input.GuildID); session != nil {
		if err := s.checkBindings(session, input.UserID, input.TextChannelID); err != nil {
			return nil, err
		}
		return session, nil
	}

	userChannel, err := s.voiceState.UserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	if userChannel == 0 {
		return nil, ErrUserNotInVoice
	}

	missing, err := s.voiceState.MissingVoicePermissions(input.GuildID, userChannel)
	if err != nil {
		return nil, err
	}
	if text, err := s.voiceState.MissingTextPermissions(input.GuildID, input.TextChannelID); err != nil {
		return nil, err
	} else {
		missing = append(missing, text...)
	}
	if len(missing) > 0 {
		return nil, &MissingPermissionsError{Permissions: missing}
	}

	if !s.voiceState.CanMoveMembers(input.GuildID) {
		hasRoom, err := s.voiceState.ChannelHasRoom(input.GuildID, userChannel)
		if err != nil {
			return nil, err
		}
		if !hasRoom {
			return nil, ErrChannelFull
		}
	}

	if err := s.voice.JoinChannel(ctx, input.GuildID, userChannel); err != nil {
		return nil, err
	}

	session := domain.NewSession(input.GuildID, userChannel, input.TextChannelID)
	s.registry.Save(session)

	slog.Info("session attached",
		"guild", input.GuildID,
		"voice_channel", userChannel,
		"text_channel", input.TextChannelID,
	)

	return session, nil
}

// Bind verifies that a command against the guild's existing session comes
// from the bound text channel by a user in the bound voice channel. Every
// session-mutating command runs through it; only the play commands go through
// Attach instead, which also joins when no session exists yet.
func (s *PlaybackService) Bind(guildID, userID, textChannelID snowflake.ID) (*domain.Session, error) {
	session := s.registry.Get(guildID)
	if session == nil {
		return nil, ErrNotConnected
	}
	if err := s.checkBindings(session, userID, textChannelID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *PlaybackService) checkBindings(
	session *domain.Session,
	userID, textChannelID snowflake.ID,
) error {
	session.Lock()
	boundText := session.TextChannelID()
	boundVoice := session.VoiceChannelID()
	session.Unlock()

	if textChannelID != boundText {
		return &WrongChannelError{BoundChannelID: boundText}
	}

	userChannel, err := s.voiceState.UserVoiceChannel(session.GuildID(), userID)
	if err != nil {
		return err
	}
	if userChannel != boundVoice {
		return &NotInChannelError{VoiceChannelID: boundVoice}
	}
	return nil
}

// Play appends tracks to the queue and starts playback if nothing is playing.
func (s *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	session := s.registry.Get(input.GuildID)
	if session == nil {
		return nil, ErrNotConnected
	}

	for _, track := range input.Tracks {
		extras := map[string]any{domain.ExtraRequesterID: input.UserID}
		for key, value := range input.Extras {
			extras[key] = value
		}
		if err := track.AttachExtras(extras); err != nil {
			slog.Debug("track extras already attached", "track", track.ID)
		}
	}

	session.Lock()
	defer session.Unlock()

	session.Queue.Put(input.Tracks...)

	if session.IsPlaying() {
		return &PlayOutput{Started: false, Enqueued: len(input.Tracks)}, nil
	}

	next := session.Queue.Next()
	if next == nil {
		return nil, ErrQueueEmpty
	}
	if err := s.node.Play(ctx, input.GuildID, next); err != nil {
		return nil, err
	}
	session.SetCurrent(next)
	session.SetPaused(false)

	return &PlayOutput{Started: true, Enqueued: len(input.Tracks)}, nil
}

// Pause pauses playback.
func (s *PlaybackService) Pause(ctx context.Context, guildID snowflake.ID) error {
	return s.setPaused(ctx, guildID, true)
}

// Resume resumes paused playback.
func (s *PlaybackService) Resume(ctx context.Context, guildID snowflake.ID) error {
	return s.setPaused(ctx, guildID, false)
}

func (s *PlaybackService) setPaused(ctx context.Context, guildID snowflake.ID, paused bool) error {
	session := s.registry.Get(guildID)
	if session == nil {
		return ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if !session.IsPlaying() {
		return ErrNotPlaying
	}
	if err := s.node.Pause(ctx, guildID, paused); err != nil {
		return err
	}
	session.SetPaused(paused)
	return nil
}

// Skip ends the current track. With queued tracks the next one is submitted
// directly, pre-empting the current track so it does not enter history. With
// an empty queue the node is stopped, which files the skipped track into
// history through the track-end reaction.
func (s *PlaybackService) Skip(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session := s.registry.Get(guildID)
	if session == nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if !session.IsPlaying() {
		return nil, ErrNotPlaying
	}

	next := session.Queue.Next()
	if next == nil {
		if err := s.node.Stop(ctx, guildID); err != nil {
			return nil, err
		}
		session.SetCurrent(nil)
		return nil, nil
	}

	if err := s.node.Play(ctx, guildID, next); err != nil {
		return nil, err
	}
	session.SetCurrent(next)
	session.SetPaused(false)
	return next, nil
}

// Previous plays the most recent track from history. A currently playing
// track is pushed to the front of the queue so it resumes next. The history
// is not mutated when it is empty.
func (s *PlaybackService) Previous(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session := s.registry.Get(guildID)
	if session == nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.Backpack.Len() == 0 {
		return nil, ErrEmptyHistory
	}

	previous := session.Backpack.PopLast()
	if current := session.Current(); current != nil {
		session.Queue.PutAt(0, current)
	}

	// Direct submission pre-empts the current track, so it ends "replaced"
	// and stays out of history.
	if err := s.node.Play(ctx, guildID, previous); err != nil {
		return nil, err
	}
	session.SetCurrent(previous)
	session.SetPaused(false)
	return previous, nil
}

// Replay restarts the current track from the beginning, unpausing first if
// needed.
func (s *PlaybackService) Replay(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session := s.registry.Get(guildID)
	if session == nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	current := session.Current()
	if current == nil {
		return nil, ErrNoCurrentTrack
	}

	if session.IsPaused() {
		if err := s.node.Pause(ctx, guildID, false); err != nil {
			return nil, err
		}
		session.SetPaused(false)
	}

	if err := s.node.Play(ctx, guildID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Stop force-skips the current track, optionally clearing the queues and
// disconnecting.
func (s *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	session := s.registry.Get(input.GuildID)
	if session == nil {
		return ErrNotConnected
	}

	session.Lock()

	if input.ClearQueues {
		session.Queue.Clear()
		session.Backpack.Clear()
		session.SetAutoplay(false)
	}

	if err := s.node.Stop(ctx, input.GuildID); err != nil {
		session.Unlock()
		return err
	}
	session.SetCurrent(nil)
	session.SetPaused(false)
	session.Unlock()

	if !input.Disconnect {
		return nil
	}

	if err := s.node.Disconnect(ctx, input.GuildID); err != nil {
		return err
	}
	if err := s.voice.LeaveChannel(ctx, input.GuildID); err != nil {
		slog.Warn("failed to leave voice channel", "guild", input.GuildID, "error", err)
	}
	s.registry.Delete(input.GuildID)

	slog.Info("session torn down", "guild", input.GuildID)
	return nil
}

// CycleLoopMode advances the queue mode normal -> loop-track -> loop-queue
// and returns the new mode.
func (s *PlaybackService) CycleLoopMode(guildID snowflake.ID) (domain.QueueMode, error) {
	session := s.registry.Get(guildID)
	if session == nil {
		return domain.QueueModeNormal, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	return session.Queue.CycleMode(), nil
}

// NowPlaying returns the current playback state for display.
func (s *PlaybackService) NowPlaying(guildID snowflake.ID) (*NowPlayingOutput, error) {
	session := s.registry.Get(guildID)
	if session == nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	current := session.Current()
	if current == nil {
		return nil, ErrNotPlaying
	}

	return &NowPlayingOutput{
		Track:    current,
		Paused:   session.IsPaused(),
		Mode:     session.Queue.Mode(),
		QueueLen: session.Queue.Len(),
	}, nil
}

// QueueTracks returns a snapshot of the queued tracks for display.
func (s *PlaybackService) QueueTracks(guildID snowflake.ID) ([]*domain.Track, error) {
	session := s.registry.Get(guildID)
	if session == nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	return session.Queue.List(), nil
}

// ActiveSessions returns the number of live playback sessions.
func (s *PlaybackService) ActiveSessions() int {
	return s.registry.Count()
}
