package stream

import (
	"bufio"
	"errors"
	"io"
)

// MaxLineSize bounds a single JSONL request
const MaxLineSize = 10 * 1024 * 1024

var ErrLineTooLong = errors.New("JSONL line exceeds maximum size")

// LimitedLineReader reads newline-delimited records without buffering more
// than maxSize bytes of any one line.
type LimitedLineReader struct {
	reader  *bufio.Reader
	maxSize int
	buf     []byte
}

func NewLimitedLineReader(r io.Reader, maxSize int) *LimitedLineReader {
	if maxSize <= 0 {
		maxSize = MaxLineSize
	}
	return &LimitedLineReader{
		reader:  bufio.NewReaderSize(r, 64*1024),
		maxSize: maxSize,
		buf:     make([]byte, 0, 4096),
	}
}

// ReadLine returns the next line without its terminator. The slice is
// reused by the next call. An oversized line is drained and reported as
// ErrLineTooLong so the caller can continue with the following line.
func (l *LimitedLineReader) ReadLine() ([]byte, error) {
	l.buf = l.buf[:0]

	for {
		if len(l.buf) >= l.maxSize {
			for {
				b, err := l.reader.ReadByte()
				if err != nil || b == '\n' {
					break
				}
			}
			return nil, ErrLineTooLong
		}

		b, err := l.reader.ReadByte()
		if err != nil {
			if err == io.EOF && len(l.buf) > 0 {
				return l.buf, nil
			}
			return nil, err
		}

		if b == '\n' {
			line := l.buf
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			return line, nil
		}

		l.buf = append(l.buf, b)
	}
}

// ReadLineCopy is ReadLine with a caller-owned result.
func (l *LimitedLineReader) ReadLineCopy() ([]byte, error) {
	line, err := l.ReadLine()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(line))
	copy(out, line)
	return out, nil
}
