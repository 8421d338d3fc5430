package model

// PlayerState represents the state of the playback controller
type PlayerState string

const (
	// StateIdle means nothing is loaded or playing
	StateIdle PlayerState = "Idle"

	// StateLoading means a track is being resolved; transport is disabled
	StateLoading PlayerState = "Loading"

	// StatePlaying means the engine is actively playing
	StatePlaying PlayerState = "Playing"

	// StatePaused means playback is paused and can be resumed
	StatePaused PlayerState = "Paused"

	// StateEnded means the queue ran out or the engine reported end-of-media
	StateEnded PlayerState = "Ended"

	// StateError means the last operation failed
	StateError PlayerState = "Error"
)

// String returns the string representation of PlayerState
func (s PlayerState) String() string {
	return string(s)
}

// IsBusy returns true while a track resolution is in flight
func (s PlayerState) IsBusy() bool {
	return s == StateLoading
}

// HasTrack returns true if a track is loaded into the engine
func (s PlayerState) HasTrack() bool {
	return s == StatePlaying || s == StatePaused
}
