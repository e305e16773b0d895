package votes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// VoteTTL is how long a vote keeps its cooldown reduction active.
const VoteTTL = 12 * time.Hour

// VoteStore records votes and answers whether a user has an active one.
type VoteStore interface {
	// HasVoted reports whether the user has a non-expired vote record.
	HasVoted(ctx context.Context, userID string) (bool, error)

	// RecordVote upserts the user's vote record with the given lifetime.
	RecordVote(ctx context.Context, userID string, ttl time.Duration) error
}

// RedisVoteStore keeps vote records in Redis, expiry handled server-side.
type RedisVoteStore struct {
	client *redis.Client
}

// NewRedisVoteStore creates a RedisVoteStore and verifies the connection.
func NewRedisVoteStore(addr, password string, db int) (*RedisVoteStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisVoteStore{client: client}, nil
}

func voteKey(userID string) string {
	return "vote:" + userID
}

func (s *RedisVoteStore) HasVoted(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, voteKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check vote record: %w", err)
	}
	return n > 0, nil
}

func (s *RedisVoteStore) RecordVote(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, voteKey(userID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisVoteStore) Close() error {
	return s.client.Close()
}

// MemoryVoteStore is an in-memory VoteStore for tests and local development.
type MemoryVoteStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewMemoryVoteStore creates an empty MemoryVoteStore.
func NewMemoryVoteStore() *MemoryVoteStore {
	return &MemoryVoteStore{expires: make(map[string]time.Time)}
}

func (s *MemoryVoteStore) HasVoted(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.expires[userID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.expires, userID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryVoteStore) RecordVote(_ context.Context, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[userID] = time.Now().Add(ttl)
	return nil
}

// Interface checks.
var (
	_ VoteStore = (*RedisVoteStore)(nil)
	_ VoteStore = (*MemoryVoteStore)(nil)
)
