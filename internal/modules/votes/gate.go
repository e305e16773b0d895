package votes

import (
	"context"
	"sync"
	"time"
)

// Cooldown windows per command tier. An active vote halves the window.
const (
	heavyWindow      = 10 * time.Second
	heavyVotedWindow = 5 * time.Second
	lightWindow      = 6 * time.Second
	lightVotedWindow = 3 * time.Second
)

// heavyCommands and lightCommands assign each throttled command to a tier.
// Commands in neither set are not throttled.
var (
	heavyCommands = map[string]struct{}{
		"play":      {},
		"add-track": {},
		"replay":    {},
	}
	lightCommands = map[string]struct{}{
		"check-vote": {},
		"create":     {},
		"ls":         {},
		"manage":     {},
		"stats":      {},
		"queue":      {},
		"nowplaying": {},
		"playfile":   {},
	}
)

// Gate throttles command usage per user, with shorter windows for users who
// have an active vote record. The window length is looked up on every check,
// so a vote landing mid-window shortens the remaining wait.
type Gate struct {
	store VoteStore
	now   func() time.Time

	mu      sync.Mutex
	lastUse map[string]time.Time
}

// NewGate creates a new Gate backed by the given vote store.
func NewGate(store VoteStore) *Gate {
	return &Gate{
		store:   store,
		now:     time.Now,
		lastUse: make(map[string]time.Time),
	}
}

// window returns the cooldown window for the command, or zero when the
// command is not throttled.
func (g *Gate) window(ctx context.Context, command, userID string) (time.Duration, error) {
	_, heavy := heavyCommands[command]
	_, light := lightCommands[command]
	if !heavy && !light {
		return 0, nil
	}

	voted, err := g.store.HasVoted(ctx, userID)
	if err != nil {
		return 0, err
	}

	switch {
	case heavy && voted:
		return heavyVotedWindow, nil
	case heavy:
		return heavyWindow, nil
	case voted:
		return lightVotedWindow, nil
	default:
		return lightWindow, nil
	}
}

// Check reports how long the user must wait before the command is accepted.
// Zero means the command may run now and opens a new window.
func (g *Gate) Check(command, userID string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	window, err := g.window(ctx, command, userID)
	if err != nil {
		return 0, err
	}
	if window == 0 {
		return 0, nil
	}

	key := command + ":" + userID
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.lastUse[key]; ok {
		if remaining := window - now.Sub(last); remaining > 0 {
			return remaining, nil
		}
	}
	g.lastUse[key] = now
	return 0, nil
}
