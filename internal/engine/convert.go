package engine

import "io"

// normalize wraps a decoder whose native format differs from the output
// device (44.1kHz stereo). Matching decoders pass through untouched.
func normalize(dec audioDecoder) audioDecoder {
	if dec.SampleRate() == sampleRate && dec.ChannelCount() == channelCount {
		return dec
	}
	return newConvertingDecoder(dec)
}

// convertingDecoder adapts a decoder's native sample rate and channel
// count to the device format. Mono sources are duplicated into both
// channels, sources with more than two channels keep the first two, and
// rate conversion drops or duplicates frames with the same accumulator
// scheme rateReader uses. Positions, seeks, and Length are all in output
// bytes, so the engine's time math stays uniform.
type convertingDecoder struct {
	src     audioDecoder
	srcRate int
	srcCh   int
	step    float64 // source frames consumed per output frame

	srcFrame []byte // raw frame read from the source
	cur      []byte // converted output frame being emitted
	acc      float64
	valid    bool

	pos   int64
	total int64
}

func newConvertingDecoder(src audioDecoder) *convertingDecoder {
	srcRate := src.SampleRate()
	srcCh := src.ChannelCount()

	total := src.Length()
	if total >= 0 {
		srcFrames := total / int64(srcCh*2)
		total = int64(float64(srcFrames)*float64(sampleRate)/float64(srcRate)) * frameSize
	}

	return &convertingDecoder{
		src:      src,
		srcRate:  srcRate,
		srcCh:    srcCh,
		step:     float64(srcRate) / float64(sampleRate),
		srcFrame: make([]byte, srcCh*2),
		cur:      make([]byte, frameSize),
		acc:      1.0,
		total:    total,
	}
}

func (d *convertingDecoder) Read(p []byte) (int, error) {
	outFrames := len(p) / frameSize
	if outFrames == 0 {
		return 0, io.ErrShortBuffer
	}

	out := 0
	for i := 0; i < outFrames; i++ {
		for d.acc >= 1 {
			if err := d.pull(); err != nil {
				d.valid = false
				if out > 0 {
					return out, nil
				}
				if err == io.ErrUnexpectedEOF {
					err = io.EOF
				}
				return 0, err
			}
			d.valid = true
			d.acc--
		}
		if !d.valid {
			break
		}
		copy(p[out:out+frameSize], d.cur)
		out += frameSize
		d.acc += d.step
	}
	d.pos += int64(out)
	return out, nil
}

// pull reads one source frame and converts it to an output frame.
func (d *convertingDecoder) pull() error {
	if _, err := io.ReadFull(d.src, d.srcFrame); err != nil {
		return err
	}
	if d.srcCh == 1 {
		d.cur[0] = d.srcFrame[0]
		d.cur[1] = d.srcFrame[1]
		d.cur[2] = d.srcFrame[0]
		d.cur[3] = d.srcFrame[1]
	} else {
		copy(d.cur, d.srcFrame[:frameSize])
	}
	return nil
}

func (d *convertingDecoder) Seek(offset int64, whence int) (int64, error) {
	target := clampSeek(offset, whence, d.pos, d.total)
	target -= target % frameSize

	srcFrame := int64(float64(target/frameSize) * d.step)
	if _, err := d.src.Seek(srcFrame*int64(d.srcCh*2), io.SeekStart); err != nil {
		return d.pos, err
	}

	d.pos = target
	d.acc = 1.0
	d.valid = false
	return target, nil
}

func (d *convertingDecoder) Length() int64     { return d.total }
func (d *convertingDecoder) SampleRate() int   { return sampleRate }
func (d *convertingDecoder) ChannelCount() int { return channelCount }
