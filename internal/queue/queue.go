package queue

import (
	"math/rand"

	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
)

// Queue manages the ordered playback list and its cursor. The cursor is -1
// while the queue is empty or nothing is selected, and always stays below
// the queue length after any mutation.
//
// Queue is only mutated from the UI-owning thread; navigation methods move
// the cursor but never start playback themselves. Callers resolve and play
// the returned index.
type Queue struct {
	tracks []model.Track
	cursor int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{cursor: -1}
}

// FromTracks creates a queue preloaded with tracks. The cursor starts at 0
// when the list is non-empty.
func FromTracks(tracks []model.Track) *Queue {
	q := New()
	for _, t := range tracks {
		q.Append(t)
	}
	return q
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Cursor returns the current cursor index, or -1.
func (q *Queue) Cursor() int {
	return q.cursor
}

// Track returns the track at index i.
func (q *Queue) Track(i int) (model.Track, bool) {
	if i < 0 || i >= len(q.tracks) {
		return model.Track{}, false
	}
	return q.tracks[i], true
}

// Current returns the track under the cursor.
func (q *Queue) Current() (model.Track, bool) {
	return q.Track(q.cursor)
}

// Tracks returns a copy of the backing sequence.
func (q *Queue) Tracks() []model.Track {
	out := make([]model.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Append inserts a track at the tail. The first append moves the cursor
// from -1 to 0.
func (q *Queue) Append(t model.Track) {
	q.tracks = append(q.tracks, t)
	if q.cursor == -1 {
		q.cursor = 0
	}
}

// Clear removes all tracks and resets the cursor.
func (q *Queue) Clear() {
	q.tracks = nil
	q.cursor = -1
}

// JumpTo sets the cursor to index i. Out-of-bounds indexes are a no-op.
func (q *Queue) JumpTo(i int) bool {
	if i < 0 || i >= len(q.tracks) {
		return false
	}
	q.cursor = i
	return true
}

// Next advances the cursor and returns the new index. With shuffle on, the
// next index is picked uniformly over the whole queue; the same track may
// repeat, there is no play-history dedup. Past the end, RepeatAll wraps to
// 0; otherwise the cursor stays put and ok is false (end of queue).
func (q *Queue) Next(shuffleOn bool, repeat model.RepeatMode) (int, bool) {
	if len(q.tracks) == 0 {
		return -1, false
	}

	var next int
	if shuffleOn {
		next = rand.Intn(len(q.tracks))
	} else {
		next = q.cursor + 1
	}

	if next >= len(q.tracks) {
		if repeat != model.RepeatAll {
			return q.cursor, false
		}
		next = 0
	}

	q.cursor = next
	return next, true
}

// Previous moves the cursor back and returns the new index. Before the
// start, RepeatAll wraps to the last track; otherwise the cursor clamps
// to 0.
func (q *Queue) Previous(repeat model.RepeatMode) (int, bool) {
	if len(q.tracks) == 0 {
		return -1, false
	}

	prev := q.cursor - 1
	if prev < 0 {
		if repeat == model.RepeatAll {
			prev = len(q.tracks) - 1
		} else {
			prev = 0
		}
	}

	q.cursor = prev
	return prev, true
}

// Reorder replaces the backing sequence after a drag-and-drop. The cursor
// follows the physical track it referred to, matched by ID in the new
// order; when that fails (track removed, empty ID) it adopts the
// UI-reported row, clamped into range.
func (q *Queue) Reorder(newTracks []model.Track, uiRow int) {
	var currentID string
	if cur, ok := q.Current(); ok {
		currentID = cur.ID
	}

	q.tracks = make([]model.Track, len(newTracks))
	copy(q.tracks, newTracks)

	if len(q.tracks) == 0 {
		q.cursor = -1
		return
	}

	if currentID != "" {
		for i, t := range q.tracks {
			if t.ID == currentID {
				q.cursor = i
				return
			}
		}
	}

	if uiRow < 0 {
		uiRow = 0
	}
	if uiRow >= len(q.tracks) {
		uiRow = len(q.tracks) - 1
	}
	q.cursor = uiRow
}
