package player

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/DeveloperAJ2799/Chronosonic/internal/engine"
	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
	"github.com/DeveloperAJ2799/Chronosonic/internal/queue"
	"github.com/DeveloperAJ2799/Chronosonic/internal/resolver"
)

// trackResolver is the slice of the resolver the controller needs.
type trackResolver interface {
	Resolve(track model.Track, done func(resolver.Resolution))
}

// Callbacks let the UI observe the controller. All of them fire on the
// owning thread.
type Callbacks struct {
	OnStateChanged func(state model.PlayerState)
	OnTrackChanged func(index int, track model.Track)
	OnProgress     func(pos, dur time.Duration)
	OnStatus       func(msg string)
}

// Controller is the playback state machine. It owns the player state, the
// A/B loop points, and the shuffle/repeat settings, and drives the queue,
// resolver, and engine from the owning thread. Async resolutions carry a
// generation number; a resolution landing after another track was
// requested is dropped.
type Controller struct {
	queue  *queue.Queue
	res    trackResolver
	engine engine.Engine
	logger *log.Logger
	cb     Callbacks

	state   model.PlayerState
	gen     int
	shuffle bool
	repeat  model.RepeatMode

	current  model.Track
	trackDur time.Duration
	lastPos  time.Duration

	pointA, pointB time.Duration
	aSet, bSet     bool
}

// NewController creates the controller. The engine is attached separately
// because its event callbacks point back here.
func NewController(q *queue.Queue, res trackResolver, logger *log.Logger, cb Callbacks) *Controller {
	return &Controller{
		queue:  q,
		res:    res,
		logger: logger,
		cb:     cb,
		state:  model.StateIdle,
	}
}

// AttachEngine wires the playback engine.
func (c *Controller) AttachEngine(e engine.Engine) {
	c.engine = e
}

// EngineEvents returns the callback set to construct the engine with.
func (c *Controller) EngineEvents() engine.Events {
	return engine.Events{
		OnPosition: c.onPosition,
		OnEnd:      c.onEnd,
		OnError:    c.onEngineError,
	}
}

// State returns the current player state.
func (c *Controller) State() model.PlayerState {
	return c.state
}

// CurrentTrack returns the track being played or loaded.
func (c *Controller) CurrentTrack() model.Track {
	return c.current
}

// Shuffle reports the shuffle setting.
func (c *Controller) Shuffle() bool {
	return c.shuffle
}

// SetShuffle flips the shuffle setting.
func (c *Controller) SetShuffle(on bool) {
	c.shuffle = on
}

// Repeat returns the repeat mode.
func (c *Controller) Repeat() model.RepeatMode {
	return c.repeat
}

// CycleRepeat advances Off -> All -> One -> Off and returns the new mode.
func (c *Controller) CycleRepeat() model.RepeatMode {
	c.repeat = c.repeat.Next()
	return c.repeat
}

// PlayIndex stops whatever is playing and starts resolving the track at
// queue index i. Out-of-bounds indexes are ignored.
func (c *Controller) PlayIndex(i int) {
	if !c.queue.JumpTo(i) {
		return
	}
	track, _ := c.queue.Track(i)

	c.engine.Close()
	c.gen++
	gen := c.gen
	c.lastPos = 0
	c.setState(model.StateLoading)
	c.status("Loading " + track.DisplayTitle())

	c.res.Resolve(track, func(res resolver.Resolution) {
		c.onResolved(gen, i, res)
	})
}

func (c *Controller) onResolved(gen, index int, res resolver.Resolution) {
	if gen != c.gen {
		c.logger.Debug("Dropping stale resolution", "track", res.Track.Title)
		return
	}

	if res.Err != nil {
		c.logger.Error("Resolution failed", "track", res.Track.Title, "error", res.Err)
		c.status("Could not play " + res.Track.DisplayTitle())
		c.setState(model.StateIdle)
		return
	}

	if err := c.engine.Open(res.Source, res.IsLocal); err != nil {
		c.logger.Error("Engine rejected media", "source", res.Source, "error", err)
		c.status("Could not play " + res.Track.DisplayTitle())
		c.setState(model.StateIdle)
		return
	}

	c.current = res.Track
	c.trackDur = time.Duration(res.Track.DurationMS) * time.Millisecond
	c.setState(model.StatePlaying)
	if c.cb.OnTrackChanged != nil {
		c.cb.OnTrackChanged(index, res.Track)
	}
}

// TogglePlay flips between playing and paused. From Idle or Ended it
// starts the track under the cursor, if any.
func (c *Controller) TogglePlay() {
	switch c.state {
	case model.StatePlaying:
		c.engine.Pause()
		c.setState(model.StatePaused)
	case model.StatePaused:
		c.engine.Resume()
		c.setState(model.StatePlaying)
	case model.StateIdle, model.StateEnded, model.StateError:
		if cur := c.queue.Cursor(); cur >= 0 {
			c.PlayIndex(cur)
		}
	}
}

// Next moves to the next track per shuffle/repeat and plays it.
func (c *Controller) Next() {
	idx, ok := c.queue.Next(c.shuffle, c.repeat)
	if !ok {
		c.status("End of queue")
		return
	}
	c.PlayIndex(idx)
}

// Previous moves to the previous track and plays it.
func (c *Controller) Previous() {
	idx, ok := c.queue.Previous(c.repeat)
	if !ok {
		return
	}
	c.PlayIndex(idx)
}

// Stop halts playback and returns to Idle. The queue is untouched.
func (c *Controller) Stop() {
	c.gen++
	c.engine.Close()
	c.lastPos = 0
	c.setState(model.StateIdle)
}

// SetPointA marks the loop start at the current position. Rejected on
// unseekable media, since the loop could never jump back. If an earlier B
// point no longer lies past A, it is cleared.
func (c *Controller) SetPointA() {
	if !c.state.HasTrack() {
		return
	}
	if !c.engine.Seekable() {
		c.status("Looping needs a seekable track")
		return
	}
	c.pointA = c.lastPos
	c.aSet = true
	if c.bSet && c.pointB <= c.pointA {
		c.bSet = false
	}
	c.status("Loop point A set at " + model.FormatDurationMS(c.pointA.Milliseconds()))
}

// SetPointB marks the loop end at the current position. Rejected unless A
// is set and the position lies past it.
func (c *Controller) SetPointB() {
	if !c.state.HasTrack() {
		return
	}
	if !c.aSet || c.lastPos <= c.pointA {
		c.status("Point B must be after point A")
		return
	}
	c.pointB = c.lastPos
	c.bSet = true
	c.status("Looping " + model.FormatDurationMS(c.pointA.Milliseconds()) +
		" to " + model.FormatDurationMS(c.pointB.Milliseconds()))
}

// ClearAB drops both loop points.
func (c *Controller) ClearAB() {
	c.aSet = false
	c.bSet = false
	c.status("Loop cleared")
}

// LoopActive reports whether both loop points are armed.
func (c *Controller) LoopActive() bool {
	return c.aSet && c.bSet
}

// SeekRatio seeks to a fraction of the track. No-op on unseekable media.
func (c *Controller) SeekRatio(frac float64) {
	if !c.state.HasTrack() {
		return
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	dur := c.Duration()
	if dur <= 0 {
		return
	}
	pos := time.Duration(frac * float64(dur))
	c.engine.SetPosition(pos)
	c.lastPos = pos
}

// SetVolume takes a 0-100 percentage.
func (c *Controller) SetVolume(percent int) {
	c.engine.SetVolume(float64(percent) / 100)
}

// SetRate sets the playback rate.
func (c *Controller) SetRate(rate float64) {
	c.engine.SetRate(rate)
}

// Duration is the current track's duration: resolved metadata first,
// engine measurement as fallback.
func (c *Controller) Duration() time.Duration {
	if c.trackDur > 0 {
		return c.trackDur
	}
	return c.engine.Duration()
}

// Position is the last reported playback position.
func (c *Controller) Position() time.Duration {
	return c.lastPos
}

// onPosition handles engine position ticks. The A/B loop check comes
// first and swallows the tick when it fires, so a single crossing causes
// exactly one seek.
func (c *Controller) onPosition(pos time.Duration) {
	c.lastPos = pos

	// Loop points persist across track changes, so the open media may not
	// be seekable; the loop stays armed but inert then.
	if c.aSet && c.bSet && pos >= c.pointB && c.engine.Seekable() {
		c.engine.SetPosition(c.pointA)
		c.lastPos = c.pointA
		return
	}

	if c.cb.OnProgress != nil {
		c.cb.OnProgress(pos, c.Duration())
	}
}

// onEnd handles end of media: replay under RepeatOne, otherwise advance
// through the queue or finish.
func (c *Controller) onEnd() {
	if c.repeat == model.RepeatOne {
		if cur := c.queue.Cursor(); cur >= 0 {
			c.PlayIndex(cur)
			return
		}
	}

	idx, ok := c.queue.Next(c.shuffle, c.repeat)
	if !ok {
		c.lastPos = 0
		c.setState(model.StateEnded)
		c.status("End of queue")
		return
	}
	c.PlayIndex(idx)
}

func (c *Controller) onEngineError(err error) {
	c.logger.Error("Playback error", "error", err)
	c.status("Playback error: " + err.Error())
	c.setState(model.StateError)
}

func (c *Controller) setState(s model.PlayerState) {
	if c.state == s {
		return
	}
	c.state = s
	if c.cb.OnStateChanged != nil {
		c.cb.OnStateChanged(s)
	}
}

func (c *Controller) status(msg string) {
	if c.cb.OnStatus != nil {
		c.cb.OnStatus(msg)
	}
}
