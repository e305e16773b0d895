package domain

// QueueMode controls what happens to a track once it finishes playing.
type QueueMode int

const (
	// QueueModeNormal consumes tracks: a finished track is discarded.
	QueueModeNormal QueueMode = iota
	// QueueModeLoopTrack returns the finished track to the front of the queue.
	QueueModeLoopTrack
	// QueueModeLoopQueue appends the finished track to the tail of the queue.
	QueueModeLoopQueue
)

// String returns a human-readable representation of the queue mode.
func (m QueueMode) String() string {
	switch m {
	case QueueModeLoopTrack:
		return "track"
	case QueueModeLoopQueue:
		return "queue"
	default:
		return "normal"
	}
}

// Queue is an ordered FIFO sequence of tracks. Tracks are removed when
// dequeued for playback; loop behavior is applied by Requeue after a track
// completes, so at most one mode is ever in effect.
type Queue struct {
	tracks []*Track
	mode   QueueMode
}

// NewQueue creates a new empty Queue in normal mode.
func NewQueue() Queue {
	return Queue{tracks: make([]*Track, 0)}
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Put appends tracks to the tail of the queue.
func (q *Queue) Put(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PutAt inserts a track at the given position. Positions past the tail
// append; negative positions prepend.
func (q *Queue) PutAt(index int, track *Track) {
	if index < 0 {
		index = 0
	}
	if index >= len(q.tracks) {
		q.tracks = append(q.tracks, track)
		return
	}
	q.tracks = append(q.tracks[:index], append([]*Track{track}, q.tracks[index:]...)...)
}

// Next removes and returns the head of the queue, or nil if empty.
func (q *Queue) Next() *Track {
	if len(q.tracks) == 0 {
		return nil
	}
	track := q.tracks[0]
	q.tracks = q.tracks[1:]
	return track
}

// Peek returns the head of the queue without removing it, or nil if empty.
func (q *Queue) Peek() *Track {
	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[0]
}

// List returns a copy of all queued tracks in order.
func (q *Queue) List() []*Track {
	result := make([]*Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Clear removes all tracks from the queue. The mode is preserved.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
}

// Mode returns the current queue mode.
func (q *Queue) Mode() QueueMode {
	return q.mode
}

// SetMode sets the queue mode.
func (q *Queue) SetMode(mode QueueMode) {
	q.mode = mode
}

// CycleMode advances the mode through the 3-cycle
// normal -> loop-track -> loop-queue -> normal and returns the new mode.
func (q *Queue) CycleMode() QueueMode {
	switch q.mode {
	case QueueModeNormal:
		q.mode = QueueModeLoopTrack
	case QueueModeLoopTrack:
		q.mode = QueueModeLoopQueue
	case QueueModeLoopQueue:
		q.mode = QueueModeNormal
	}
	return q.mode
}

// Requeue applies the loop mode to a track that completed naturally:
// loop-track returns it to the front, loop-queue appends it to the tail,
// normal discards it.
func (q *Queue) Requeue(track *Track) {
	switch q.mode {
	case QueueModeLoopTrack:
		q.PutAt(0, track)
	case QueueModeLoopQueue:
		q.Put(track)
	}
}
