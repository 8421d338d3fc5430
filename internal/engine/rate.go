package engine

import (
	"io"
	"sync"
)

// rateReader sits between the counting reader and the audio device,
// dropping or duplicating sample frames to play at an arbitrary rate. At
// rate 2.0 every other frame is dropped; at 0.5 each frame plays twice;
// fractional rates are spread by the accumulator.
type rateReader struct {
	source    io.Reader
	frameSize int

	mu   sync.Mutex
	rate float64

	cur   []byte  // current source frame being emitted
	acc   float64 // source frames owed before the next emit
	valid bool
}

func newRateReader(source io.Reader, frameSize int) *rateReader {
	return &rateReader{
		source:    source,
		frameSize: frameSize,
		rate:      1.0,
		cur:       make([]byte, frameSize),
		acc:       1.0,
	}
}

func (rr *rateReader) Read(p []byte) (int, error) {
	rr.mu.Lock()
	rate := rr.rate
	rr.mu.Unlock()

	if rate == 1.0 {
		return rr.source.Read(p)
	}

	fs := rr.frameSize
	outFrames := len(p) / fs
	if outFrames == 0 {
		return rr.source.Read(p)
	}

	out := 0
	for i := 0; i < outFrames; i++ {
		// Pull source frames until the accumulator is paid off; the
		// last one pulled becomes the frame to emit.
		for rr.acc >= 1 {
			if _, err := io.ReadFull(rr.source, rr.cur); err != nil {
				rr.valid = false
				if out > 0 {
					return out, nil
				}
				if err == io.ErrUnexpectedEOF {
					err = io.EOF
				}
				return 0, err
			}
			rr.valid = true
			rr.acc--
		}
		if !rr.valid {
			break
		}
		copy(p[out:out+fs], rr.cur)
		out += fs
		rr.acc += rate
	}
	return out, nil
}

func (rr *rateReader) setRate(rate float64) {
	rr.mu.Lock()
	rr.rate = rate
	rr.mu.Unlock()
}

// reset drops the held frame after a seek.
func (rr *rateReader) reset() {
	rr.mu.Lock()
	rr.acc = 1.0
	rr.valid = false
	rr.mu.Unlock()
}
