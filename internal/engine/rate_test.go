package engine

import (
	"bytes"
	"io"
	"testing"
)

// frames builds a PCM byte stream of sequential 4-byte frames: frame i is
// [i i i i], so tests can tell frames apart.
func frames(n int) []byte {
	out := make([]byte, n*frameSize)
	for i := 0; i < n; i++ {
		for j := 0; j < frameSize; j++ {
			out[i*frameSize+j] = byte(i)
		}
	}
	return out
}

func frameAt(p []byte, i int) byte {
	return p[i*frameSize]
}

func TestRateReaderUnityPassesThrough(t *testing.T) {
	src := frames(8)
	rr := newRateReader(bytes.NewReader(src), frameSize)

	out := make([]byte, len(src))
	n, err := io.ReadFull(rr, out)
	if err != nil || n != len(src) {
		t.Fatalf("ReadFull failed: n=%d err=%v", n, err)
	}
	if !bytes.Equal(out, src) {
		t.Error("Rate 1.0 should pass data through unchanged")
	}
}

func TestRateReaderDoubleDropsFrames(t *testing.T) {
	rr := newRateReader(bytes.NewReader(frames(8)), frameSize)
	rr.setRate(2.0)

	out := make([]byte, 4*frameSize)
	n, err := io.ReadFull(rr, out)
	if err != nil || n != len(out) {
		t.Fatalf("ReadFull failed: n=%d err=%v", n, err)
	}
	for i, want := range []byte{0, 2, 4, 6} {
		if got := frameAt(out, i); got != want {
			t.Errorf("Output frame %d: expected source frame %d, got %d", i, want, got)
		}
	}
}

func TestRateReaderHalfDuplicatesFrames(t *testing.T) {
	rr := newRateReader(bytes.NewReader(frames(3)), frameSize)
	rr.setRate(0.5)

	out := make([]byte, 6*frameSize)
	n, err := io.ReadFull(rr, out)
	if err != nil || n != len(out) {
		t.Fatalf("ReadFull failed: n=%d err=%v", n, err)
	}
	for i, want := range []byte{0, 0, 1, 1, 2, 2} {
		if got := frameAt(out, i); got != want {
			t.Errorf("Output frame %d: expected source frame %d, got %d", i, want, got)
		}
	}
}

func TestRateReaderFractionalRate(t *testing.T) {
	rr := newRateReader(bytes.NewReader(frames(9)), frameSize)
	rr.setRate(1.5)

	// 9 source frames at 1.5x yield 6 output frames.
	out := make([]byte, 6*frameSize)
	n, err := io.ReadFull(rr, out)
	if err != nil || n != len(out) {
		t.Fatalf("ReadFull failed: n=%d err=%v", n, err)
	}

	prev := -1
	for i := 0; i < 6; i++ {
		cur := int(frameAt(out, i))
		if cur <= prev {
			t.Errorf("Frames should strictly advance at 1.5x, got %d after %d", cur, prev)
		}
		prev = cur
	}
}

func TestRateReaderEOF(t *testing.T) {
	rr := newRateReader(bytes.NewReader(frames(2)), frameSize)
	rr.setRate(2.0)

	out := make([]byte, 4*frameSize)
	n, _ := rr.Read(out)
	if n != frameSize {
		t.Fatalf("Expected one output frame from two source frames at 2x, got %d bytes", n)
	}

	if _, err := rr.Read(out); err != io.EOF {
		t.Errorf("Expected EOF on the drained source, got %v", err)
	}
}

func TestCountingReader(t *testing.T) {
	cr := &countingReader{reader: bytes.NewReader(make([]byte, 10))}

	buf := make([]byte, 6)
	if _, err := cr.Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if cr.Pos() != 6 {
		t.Errorf("Expected position 6, got %d", cr.Pos())
	}
	if cr.EOF() {
		t.Error("EOF should not be set mid-stream")
	}

	io.Copy(io.Discard, cr)
	if !cr.EOF() {
		t.Error("EOF should be set after draining")
	}

	cr.SetPos(0)
	if cr.Pos() != 0 || cr.EOF() {
		t.Error("SetPos should reset position and the EOF flag")
	}
}
