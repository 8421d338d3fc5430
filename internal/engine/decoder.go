package engine

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// audioDecoder produces interleaved 16-bit LE PCM and reports its total
// output length in bytes, or -1 when unknown. SampleRate and ChannelCount
// describe the emitted stream; sources that do not match the output device
// format are wrapped by normalize before reaching it.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder picks a decoder by file extension.
func newDecoder(f *os.File) (audioDecoder, error) {
	switch ext := strings.ToLower(filepath.Ext(f.Name())); ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg", ".oga":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// pcmBuffer holds converted samples that did not fit the caller's slice.
type pcmBuffer struct {
	buf []byte
	pos int64
}

func (b *pcmBuffer) drain(p []byte) (int, bool) {
	if len(b.buf) == 0 {
		return 0, false
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	b.pos += int64(n)
	return n, true
}

func (b *pcmBuffer) emit(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		b.buf = append(b.buf[:0], raw[n:]...)
	}
	b.pos += int64(n)
	return n
}

func (b *pcmBuffer) seekTo(pos int64) {
	b.buf = nil
	b.pos = pos
}

func clampSeek(offset int64, whence int, pos, total int64) int64 {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = pos + offset
	case io.SeekEnd:
		target = total + offset
	}
	if target < 0 {
		target = 0
	}
	if total >= 0 && target > total {
		target = total
	}
	return target
}

// --- MP3 ---

// go-mp3 always outputs 16-bit stereo PCM at the file's native sample
// rate, so this adapter mostly renames.
type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Seek(offset int64, whence int) (int64, error) {
	return d.dec.Seek(offset, whence)
}
func (d *mp3Decoder) Length() int64     { return d.dec.Length() }
func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return 2 }

// --- WAV ---

type wavDecoder struct {
	file     *os.File
	pcm      pcmBuffer
	total    int64
	pcmStart int64
	rate     int
	channels int
	srcBits  int
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading wav pcm: %w", err)
	}

	channels := int(dec.NumChans)
	srcBits := int(dec.BitDepth)
	srcFrame := int64(channels * srcBits / 8)
	frames := dec.PCMLen() / srcFrame

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	return &wavDecoder{
		file:     f,
		total:    frames * int64(channels) * 2,
		pcmStart: pcmStart,
		rate:     int(dec.SampleRate),
		channels: channels,
		srcBits:  srcBits,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if n, ok := d.pcm.drain(p); ok {
		return n, nil
	}

	srcBytes := d.srcBits / 8
	samples := len(p) / 2
	if samples == 0 {
		samples = 1
	}
	src := make([]byte, samples*srcBytes)
	n, err := io.ReadFull(d.file, src)
	got := n / srcBytes
	if got == 0 {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, got*2)
	for i := 0; i < got; i++ {
		off := i * srcBytes
		var v int
		switch d.srcBits {
		case 8:
			v = (int(src[off]) - 128) << 8 // 8-bit wav is unsigned
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			s := int32(src[off]) | int32(src[off+1])<<8 | int32(src[off+2])<<16
			if s&0x800000 != 0 {
				s |= ^0xFFFFFF
			}
			v = int(s >> 8)
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clamp16(v)))
	}

	return d.pcm.emit(p, raw), nil
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	target := clampSeek(offset, whence, d.pcm.pos, d.total)

	outFrame := int64(d.channels) * 2
	srcFrame := int64(d.channels * d.srcBits / 8)
	srcPos := target / outFrame * srcFrame

	if _, err := d.file.Seek(d.pcmStart+srcPos, io.SeekStart); err != nil {
		return d.pcm.pos, err
	}
	d.pcm.seekTo(target)
	return target, nil
}

func (d *wavDecoder) Length() int64     { return d.total }
func (d *wavDecoder) SampleRate() int   { return d.rate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

// --- FLAC ---

type flacDecoder struct {
	stream   *flac.Stream
	pcm      pcmBuffer
	total    int64
	rate     int
	channels int
	bps      int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding flac: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		stream:   stream,
		total:    int64(info.NSamples) * int64(channels) * 2,
		rate:     int(info.SampleRate),
		channels: channels,
		bps:      int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if n, ok := d.pcm.drain(p); ok {
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	samples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, samples*d.channels*2)
	for i := 0; i < samples; i++ {
		for ch := 0; ch < d.channels; ch++ {
			v := int(frame.Subframes[ch].Samples[i])
			switch {
			case d.bps > 16:
				v >>= d.bps - 16
			case d.bps < 16:
				v <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(clamp16(v)))
		}
	}

	return d.pcm.emit(p, raw), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	target := clampSeek(offset, whence, d.pcm.pos, d.total)

	sample := uint64(target / (int64(d.channels) * 2))
	if _, err := d.stream.Seek(sample); err != nil {
		return d.pcm.pos, err
	}
	d.pcm.seekTo(target)
	return target, nil
}

func (d *flacDecoder) Length() int64     { return d.total }
func (d *flacDecoder) SampleRate() int   { return d.rate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- OGG Vorbis ---

type oggDecoder struct {
	reader   *oggvorbis.Reader
	pcm      pcmBuffer
	total    int64
	channels int
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding ogg: %w", err)
	}
	channels := reader.Channels()
	return &oggDecoder{
		reader:   reader,
		total:    reader.Length() * int64(channels) * 2,
		channels: channels,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if n, ok := d.pcm.drain(p); ok {
		return n, nil
	}

	samples := make([]float32, len(p)/2)
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := samples[i]
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(s*32767)))
	}

	return d.pcm.emit(p, raw), nil
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	target := clampSeek(offset, whence, d.pcm.pos, d.total)

	if err := d.reader.SetPosition(target / (int64(d.channels) * 2)); err != nil {
		return d.pcm.pos, err
	}
	d.pcm.seekTo(target)
	return target, nil
}

func (d *oggDecoder) Length() int64     { return d.total }
func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.channels }
