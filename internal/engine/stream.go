package engine

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// streamDecoder plays a remote URL by piping it through an ffmpeg
// subprocess decoding to raw 16-bit stereo PCM. Streams are not seekable
// and their length is unknown.
type streamDecoder struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	waitDone  chan struct{}
	closeOnce sync.Once
}

func newStreamDecoder(url string) (*streamDecoder, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found (required for direct stream playback)")
	}

	cmd := exec.Command(
		ffmpeg,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-ac", "2",
		"-ar", "44100",
		"-f", "s16le",
		"pipe:1",
	)
	cmd.Stdin = nil
	cmd.Stderr = io.Discard

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("setting up stream decode: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting stream decode: %w", err)
	}

	d := &streamDecoder{
		cmd:      cmd,
		stdout:   stdout,
		waitDone: make(chan struct{}),
	}
	go func() {
		_ = cmd.Wait()
		close(d.waitDone)
	}()
	return d, nil
}

func (d *streamDecoder) Read(p []byte) (int, error) {
	return d.stdout.Read(p)
}

func (d *streamDecoder) Seek(int64, int) (int64, error) {
	return 0, fmt.Errorf("stream is not seekable")
}

func (d *streamDecoder) Length() int64 { return -1 }

// ffmpeg is told to emit the device format directly.
func (d *streamDecoder) SampleRate() int   { return sampleRate }
func (d *streamDecoder) ChannelCount() int { return channelCount }

func (d *streamDecoder) Close() error {
	d.closeOnce.Do(func() {
		_ = d.stdout.Close()
		if d.cmd.Process != nil {
			_ = d.cmd.Process.Kill()
		}
		<-d.waitDone
	})
	return nil
}
