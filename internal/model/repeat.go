package model

// RepeatMode controls queue wraparound and single-track repetition.
type RepeatMode int

const (
	// RepeatOff stops at the ends of the queue
	RepeatOff RepeatMode = iota

	// RepeatAll wraps navigation around the queue
	RepeatAll

	// RepeatOne replays the current track when it ends
	RepeatOne
)

// Next cycles Off -> All -> One -> Off.
func (r RepeatMode) Next() RepeatMode {
	switch r {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// String returns the display name of the repeat mode.
func (r RepeatMode) String() string {
	switch r {
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Off"
	}
}
