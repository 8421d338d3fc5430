package engine

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// pcmSource is an in-memory decoder for conversion tests.
type pcmSource struct {
	r    *bytes.Reader
	rate int
	ch   int
}

func newPCMSource(rate, ch int, samples []int16) *pcmSource {
	var buf bytes.Buffer
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return &pcmSource{r: bytes.NewReader(buf.Bytes()), rate: rate, ch: ch}
}

func (s *pcmSource) Read(p []byte) (int, error)         { return s.r.Read(p) }
func (s *pcmSource) Seek(o int64, w int) (int64, error) { return s.r.Seek(o, w) }
func (s *pcmSource) Length() int64                      { return s.r.Size() }
func (s *pcmSource) SampleRate() int                    { return s.rate }
func (s *pcmSource) ChannelCount() int                  { return s.ch }

func readSamples(t *testing.T, r io.Reader, n int) []int16 {
	t.Helper()
	buf := make([]byte, n*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return out
}

func TestNormalizePassesThroughDeviceFormat(t *testing.T) {
	src := newPCMSource(44100, 2, []int16{1, 2, 3, 4})
	if got := normalize(src); got != audioDecoder(src) {
		t.Error("A 44.1kHz stereo source should not be wrapped")
	}
}

func TestNormalizeMonoDuplicatesChannels(t *testing.T) {
	src := newPCMSource(44100, 1, []int16{1, 2, 3})
	dec := normalize(src)

	if dec.Length() != 12 {
		t.Errorf("3 mono samples should become 3 stereo frames (12 bytes), got %d", dec.Length())
	}

	got := readSamples(t, dec, 6)
	want := []int16{1, 1, 2, 2, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}

	if _, err := dec.Read(make([]byte, frameSize)); err != io.EOF {
		t.Errorf("Expected EOF after the last frame, got %v", err)
	}
}

func TestNormalizeUpsamplesLowRate(t *testing.T) {
	// Stereo frames A=(1,2) and B=(3,4) at half the device rate.
	src := newPCMSource(22050, 2, []int16{1, 2, 3, 4})
	dec := normalize(src)

	if dec.Length() != 16 {
		t.Errorf("2 source frames at 22.05kHz should become 4 output frames, got %d bytes", dec.Length())
	}

	got := readSamples(t, dec, 8)
	want := []int16{1, 2, 1, 2, 3, 4, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestNormalizeSeekMapsToSourceFrames(t *testing.T) {
	src := newPCMSource(44100, 1, []int16{0, 1, 2, 3, 4, 5, 6, 7})
	dec := normalize(src)

	pos, err := dec.Seek(16, io.SeekStart) // output frame 4
	if err != nil || pos != 16 {
		t.Fatalf("Seek failed: pos=%d err=%v", pos, err)
	}

	got := readSamples(t, dec, 2)
	if got[0] != 4 || got[1] != 4 {
		t.Errorf("Expected source sample 4 on both channels, got %v", got)
	}
}

func TestMonoWAVNormalizedDuration(t *testing.T) {
	samples := []int16{10, 20, 30, 40, 50, 60}
	path := filepath.Join(t.TempDir(), "track.wav")
	writeWAV(t, path, 44100, 1, samples)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open fixture: %v", err)
	}
	defer f.Close()

	raw, err := newDecoder(f)
	if err != nil {
		t.Fatalf("newDecoder failed: %v", err)
	}
	if raw.SampleRate() != 44100 || raw.ChannelCount() != 1 {
		t.Fatalf("Decoder should report the file format, got %d/%d", raw.SampleRate(), raw.ChannelCount())
	}

	dec := normalize(raw)
	if want := int64(len(samples) * frameSize); dec.Length() != want {
		t.Errorf("Normalized length should be %d output bytes, got %d", want, dec.Length())
	}

	got := readSamples(t, dec, 4)
	want := []int16{10, 10, 20, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}
