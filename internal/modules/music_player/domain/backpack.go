package domain

// Backpack is the play-history stack. Tracks are appended when they finish
// playing naturally and popped from the tail by "previous track". A track
// replaced mid-play never enters the backpack; that rule is enforced by the
// event handler, not here.
type Backpack struct {
	tracks []*Track
}

// NewBackpack creates a new empty Backpack.
func NewBackpack() Backpack {
	return Backpack{tracks: make([]*Track, 0)}
}

// Len returns the number of tracks in the backpack.
func (b *Backpack) Len() int {
	return len(b.tracks)
}

// Push appends a completed track.
func (b *Backpack) Push(track *Track) {
	b.tracks = append(b.tracks, track)
}

// PopLast removes and returns the most recently completed track, or nil if
// the backpack is empty.
func (b *Backpack) PopLast() *Track {
	if len(b.tracks) == 0 {
		return nil
	}
	track := b.tracks[len(b.tracks)-1]
	b.tracks = b.tracks[:len(b.tracks)-1]
	return track
}

// List returns a copy of the history in completion order.
func (b *Backpack) List() []*Track {
	result := make([]*Track, len(b.tracks))
	copy(result, b.tracks)
	return result
}

// Clear removes all tracks.
func (b *Backpack) Clear() {
	b.tracks = b.tracks[:0]
}
