package engine

import (
	"io"
	"sync"
)

// countingReader wraps the decoder and tracks decoded bytes, which is what
// position reporting is based on. It also remembers hitting EOF so the
// monitor can tell a drained media from a stalled one.
type countingReader struct {
	reader io.Reader
	mu     sync.Mutex
	pos    int64
	eof    bool
	err    error
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	if err == io.EOF {
		cr.eof = true
	} else if err != nil {
		cr.err = err
	}
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.eof = false
	cr.err = nil
	cr.mu.Unlock()
}

func (cr *countingReader) EOF() bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.eof
}

// Err returns a read failure other than end of stream, if one happened.
func (cr *countingReader) Err() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.err
}
