package engine

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2 // 16-bit samples
	frameSize    = channelCount * bitDepth
	bytesPerSec  = sampleRate * channelCount * bitDepth

	tickInterval = 250 * time.Millisecond
)

// Events carries the engine's callbacks. All of them run on the owning
// thread via the dispatcher handed to New.
type Events struct {
	// OnPosition fires roughly four times a second while playing.
	OnPosition func(pos time.Duration)

	// OnEnd fires once when the media drains.
	OnEnd func()

	// OnError fires when playback dies mid-media.
	OnError func(err error)
}

// Engine is the playback surface the controller drives.
type Engine interface {
	// Open loads a source and starts playing it. Local sources are
	// decoded in-process; remote URLs are decoded by a subprocess pipe.
	Open(source string, isLocal bool) error

	// Close stops playback and releases the media. Safe to call twice.
	Close()

	Pause()
	Resume()

	// Position is the media position, unaffected by the playback rate.
	Position() time.Duration

	// Duration is the media duration, or 0 when unknown (streams).
	Duration() time.Duration

	// Seekable reports whether SetPosition works for the open media.
	Seekable() bool

	// SetPosition seeks. No-op on non-seekable media.
	SetPosition(pos time.Duration)

	// SetVolume sets the gain, 0.0 to 1.0.
	SetVolume(v float64)

	// SetRate sets the playback rate without changing pitch handling;
	// frames are dropped or duplicated to match.
	SetRate(rate float64)
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// session is one opened media. A new session replaces the previous one;
// monitors from replaced sessions are ignored via the id check.
type session struct {
	decoder   audioDecoder
	file      *os.File // nil for streams
	stream    *streamDecoder
	counter   *countingReader
	rate      *rateReader
	otoPlayer *oto.Player
	duration  time.Duration
	seekable  bool
	paused    bool
}

// AudioEngine is the production Engine on top of the system audio device.
// All methods must be called from the owning thread; the internal monitor
// goroutine reports back through the dispatcher.
type AudioEngine struct {
	dispatch func(func())
	events   Events
	logger   *log.Logger

	otoCtx *oto.Context
	cur    *session
	id     int

	volume float64
	rate   float64
}

// New creates the engine. The audio device is initialized lazily on the
// first Open.
func New(dispatch func(func()), events Events, logger *log.Logger) *AudioEngine {
	return &AudioEngine{
		dispatch: dispatch,
		events:   events,
		logger:   logger,
		volume:   0.8,
		rate:     1.0,
	}
}

// Open implements Engine.
func (e *AudioEngine) Open(source string, isLocal bool) error {
	e.Close()

	ctx, err := initOto()
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	e.otoCtx = ctx

	s := &session{}
	if isLocal {
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("open media: %w", err)
		}
		dec, err := newDecoder(f)
		if err != nil {
			f.Close()
			return err
		}
		s.file = f
		s.decoder = normalize(dec)
		s.seekable = true
		s.duration = time.Duration(float64(s.decoder.Length()) / float64(bytesPerSec) * float64(time.Second))
	} else {
		sd, err := newStreamDecoder(source)
		if err != nil {
			return err
		}
		s.stream = sd
		s.decoder = sd
	}

	s.counter = &countingReader{reader: s.decoder}
	s.rate = newRateReader(s.counter, frameSize)
	s.rate.setRate(e.rate)

	s.otoPlayer = ctx.NewPlayer(s.rate)
	s.otoPlayer.SetVolume(e.volume)
	s.otoPlayer.Play()

	e.cur = s
	e.id++
	go e.monitor(s, e.id)

	e.logger.Debug("Media opened", "source", source, "local", isLocal, "duration", s.duration)
	return nil
}

// monitor polls the session, ticking position events and detecting the end
// of media. It exits when the session is replaced or closed.
func (e *AudioEngine) monitor(s *session, id int) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		var (
			stop  bool
			ended bool
			pos   time.Duration
		)

		done := make(chan struct{})
		e.dispatch(func() {
			defer close(done)
			if e.cur != s || e.id != id {
				stop = true
				return
			}
			pos = e.position(s)
			if err := s.counter.Err(); err != nil {
				stop = true
				e.closeSession(s)
				e.cur = nil
				if e.events.OnError != nil {
					e.events.OnError(fmt.Errorf("playback failed: %w", err))
				}
				return
			}
			if s.counter.EOF() && s.otoPlayer.BufferedSize() == 0 {
				ended = true
				stop = true
				e.closeSession(s)
				e.cur = nil
				if e.events.OnEnd != nil {
					e.events.OnEnd()
				}
				return
			}
			if !s.paused && e.events.OnPosition != nil {
				e.events.OnPosition(pos)
			}
		})
		<-done
		_ = ended

		if stop {
			return
		}
	}
}

func (e *AudioEngine) position(s *session) time.Duration {
	secs := float64(s.counter.Pos()) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Close implements Engine.
func (e *AudioEngine) Close() {
	if e.cur == nil {
		return
	}
	e.closeSession(e.cur)
	e.cur = nil
	e.id++
}

func (e *AudioEngine) closeSession(s *session) {
	s.otoPlayer.Pause()
	if s.file != nil {
		s.file.Close()
	}
	if s.stream != nil {
		s.stream.Close()
	}
}

// Pause implements Engine.
func (e *AudioEngine) Pause() {
	if e.cur == nil || e.cur.paused {
		return
	}
	e.cur.otoPlayer.Pause()
	e.cur.paused = true
}

// Resume implements Engine.
func (e *AudioEngine) Resume() {
	if e.cur == nil || !e.cur.paused {
		return
	}
	e.cur.otoPlayer.Play()
	e.cur.paused = false
}

// Position implements Engine.
func (e *AudioEngine) Position() time.Duration {
	if e.cur == nil {
		return 0
	}
	return e.position(e.cur)
}

// Duration implements Engine.
func (e *AudioEngine) Duration() time.Duration {
	if e.cur == nil {
		return 0
	}
	return e.cur.duration
}

// Seekable implements Engine.
func (e *AudioEngine) Seekable() bool {
	return e.cur != nil && e.cur.seekable
}

// SetPosition implements Engine. The oto player is recreated to flush its
// buffered audio, otherwise the old position keeps playing for a moment.
func (e *AudioEngine) SetPosition(pos time.Duration) {
	s := e.cur
	if s == nil || !s.seekable {
		return
	}

	target := int64(pos.Seconds() * float64(bytesPerSec))
	if target < 0 {
		target = 0
	}
	if total := s.decoder.Length(); target > total {
		target = total
	}
	target -= target % frameSize

	if _, err := s.decoder.Seek(target, io.SeekStart); err != nil {
		e.logger.Warn("Seek failed", "error", err)
		return
	}
	s.counter.SetPos(target)
	s.rate.reset()

	wasPaused := s.paused
	s.otoPlayer.Pause()
	s.otoPlayer = e.otoCtx.NewPlayer(s.rate)
	s.otoPlayer.SetVolume(e.volume)
	if !wasPaused {
		s.otoPlayer.Play()
	}
}

// SetVolume implements Engine.
func (e *AudioEngine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.volume = v
	if e.cur != nil {
		e.cur.otoPlayer.SetVolume(v)
	}
}

// SetRate implements Engine.
func (e *AudioEngine) SetRate(rate float64) {
	if rate < 0.25 {
		rate = 0.25
	}
	if rate > 4 {
		rate = 4
	}
	e.rate = rate
	if e.cur != nil {
		e.cur.rate.setRate(rate)
	}
}
