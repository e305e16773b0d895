package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:       domain.TrackID(id),
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Artist:   "Artist",
		Duration: 3 * time.Minute,
	}
}

type mockRegistry struct {
	sessions map[snowflake.ID]*domain.Session
	deleted  []snowflake.ID
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{sessions: make(map[snowflake.ID]*domain.Session)}
}

func (m *mockRegistry) Get(guildID snowflake.ID) *domain.Session {
	return m.sessions[guildID]
}

func (m *mockRegistry) Save(session *domain.Session) {
	m.sessions[session.GuildID()] = session
}

func (m *mockRegistry) Delete(guildID snowflake.ID) {
	m.deleted = append(m.deleted, guildID)
	delete(m.sessions, guildID)
}

func (m *mockRegistry) Count() int {
	return len(m.sessions)
}

// createSession creates a Session with the given IDs and saves it.
func (m *mockRegistry) createSession(
	guildID, voiceChannelID, textChannelID snowflake.ID,
) *domain.Session {
	session := domain.NewSession(guildID, voiceChannelID, textChannelID)
	m.Save(session)
	return session
}

type mockAudioNode struct {
	loadResult   *ports.LoadResult
	loadErr      error
	loadQueries  []string
	candidates   []ports.EntityCandidate
	searchErr    error
	searchCalls  int
	decodeResult []*domain.Track
	decodeErr    error

	played      []*domain.Track
	playErr     error
	pauseStates []bool
	pauseErr    error
	stopCalls   int
	stopErr     error
	disconnects int
}

func (m *mockAudioNode) Load(_ context.Context, query string) (*ports.LoadResult, error) {
	m.loadQueries = append(m.loadQueries, query)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

func (m *mockAudioNode) SearchEntity(
	_ context.Context,
	_ string,
	_ domain.SearchType,
	_ domain.Catalog,
) ([]ports.EntityCandidate, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.candidates, nil
}

func (m *mockAudioNode) Decode(_ context.Context, _ []string) ([]*domain.Track, error) {
	if m.decodeErr != nil {
		return nil, m.decodeErr
	}
	return m.decodeResult, nil
}

func (m *mockAudioNode) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track)
	return nil
}

func (m *mockAudioNode) Pause(_ context.Context, _ snowflake.ID, paused bool) error {
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.pauseStates = append(m.pauseStates, paused)
	return nil
}

func (m *mockAudioNode) Stop(_ context.Context, _ snowflake.ID) error {
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stopCalls++
	return nil
}

func (m *mockAudioNode) Disconnect(_ context.Context, _ snowflake.ID) error {
	m.disconnects++
	return nil
}

type mockVoiceGateway struct {
	joined   []snowflake.ID
	joinErr  error
	left     []snowflake.ID
	leaveErr error
}

func (m *mockVoiceGateway) JoinChannel(_ context.Context, _ snowflake.ID, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceGateway) LeaveChannel(_ context.Context, guildID snowflake.ID) error {
	if m.leaveErr != nil {
		return m.leaveErr
	}
	m.left = append(m.left, guildID)
	return nil
}

type mockVoiceStateProvider struct {
	userChannels   map[snowflake.ID]snowflake.ID // userID -> channelID
	userChannelErr error
	botChannel     snowflake.ID
	missingVoice   []string
	missingText    []string
	hasRoom        bool
	canMove        bool
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{
		userChannels: make(map[snowflake.ID]snowflake.ID),
		hasRoom:      true,
	}
}

func (m *mockVoiceStateProvider) UserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.userChannelErr != nil {
		return 0, m.userChannelErr
	}
	return m.userChannels[userID], nil
}

func (m *mockVoiceStateProvider) BotVoiceChannel(_ snowflake.ID) snowflake.ID {
	return m.botChannel
}

func (m *mockVoiceStateProvider) MissingVoicePermissions(
	_, _ snowflake.ID,
) ([]string, error) {
	return m.missingVoice, nil
}

func (m *mockVoiceStateProvider) MissingTextPermissions(
	_, _ snowflake.ID,
) ([]string, error) {
	return m.missingText, nil
}

func (m *mockVoiceStateProvider) ChannelHasRoom(_, _ snowflake.ID) (bool, error) {
	return m.hasRoom, nil
}

func (m *mockVoiceStateProvider) CanMoveMembers(_ snowflake.ID) bool {
	return m.canMove
}
