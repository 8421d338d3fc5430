package engine

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// writeWAV writes a minimal 16-bit PCM wav file containing the given
// interleaved samples.
func writeWAV(t *testing.T, path string, rate, channels int, samples []int16) {
	t.Helper()

	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write wav fixture: %v", err)
	}
}

func TestNewDecoderRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.xyz")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open fixture: %v", err)
	}
	defer f.Close()

	if _, err := newDecoder(f); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestWAVDecoderPassesThrough16Bit(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768, 5, -5, 1000}
	path := filepath.Join(t.TempDir(), "track.wav")
	writeWAV(t, path, 44100, 2, samples)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open fixture: %v", err)
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		t.Fatalf("newDecoder failed: %v", err)
	}
	if dec.Length() != int64(len(samples)*2) {
		t.Errorf("Expected length %d, got %d", len(samples)*2, dec.Length())
	}

	out, err := io.ReadAll(dec)
	if err != nil && err != io.EOF {
		t.Fatalf("Read failed: %v", err)
	}
	if len(out) != len(samples)*2 {
		t.Fatalf("Expected %d bytes, got %d", len(samples)*2, len(out))
	}
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(out[i*2:]))
		if got != want {
			t.Errorf("Sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestWAVDecoderSeek(t *testing.T) {
	samples := []int16{10, 11, 12, 13, 14, 15, 16, 17}
	path := filepath.Join(t.TempDir(), "track.wav")
	writeWAV(t, path, 44100, 2, samples)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open fixture: %v", err)
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		t.Fatalf("newDecoder failed: %v", err)
	}

	// Seek to the third sample frame (stereo, so 4 output bytes each).
	pos, err := dec.Seek(8, io.SeekStart)
	if err != nil || pos != 8 {
		t.Fatalf("Seek failed: pos=%d err=%v", pos, err)
	}

	out := make([]byte, 4)
	if _, err := io.ReadFull(dec, out); err != nil {
		t.Fatalf("Read after seek failed: %v", err)
	}
	if got := int16(binary.LittleEndian.Uint16(out)); got != 14 {
		t.Errorf("Expected sample 14 after seek, got %d", got)
	}
}

func TestClampSeek(t *testing.T) {
	if got := clampSeek(-10, io.SeekStart, 0, 100); got != 0 {
		t.Errorf("Negative target should clamp to 0, got %d", got)
	}
	if got := clampSeek(500, io.SeekStart, 0, 100); got != 100 {
		t.Errorf("Target past the end should clamp, got %d", got)
	}
	if got := clampSeek(10, io.SeekCurrent, 30, 100); got != 40 {
		t.Errorf("SeekCurrent should offset the position, got %d", got)
	}
	if got := clampSeek(-20, io.SeekEnd, 0, 100); got != 80 {
		t.Errorf("SeekEnd should offset the total, got %d", got)
	}
	if got := clampSeek(900, io.SeekStart, 0, -1); got != 900 {
		t.Errorf("Unknown total should not clamp the top, got %d", got)
	}
}
