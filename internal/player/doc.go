package player

// Package player holds the playback controller: the state machine between
// the UI, the queue, the resolver, and the audio engine. It owns A/B loop
// points, shuffle/repeat, and end-of-media advancement.
