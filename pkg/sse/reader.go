package sse

import (
	"bufio"
	"bytes"
	"io"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineLength     = 1024 * 1024
)

// LineReader reads newline-delimited lines from an upstream body while
// optionally writing every raw line to a destination io.Writer.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌───────────────────┐   ┌───────────────────────┐
// │ LineReader.Next() │──▶│ destination io.Writer │
// └───────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │ line (no ending) │
// └──────────────────┘
//
// The destination is useful for capturing the raw stream while debugging.
//
// Lines longer than maxLineLength are dropped whole, terminator included,
// and counted by Dropped. They never reach the destination.
type LineReader struct {
	scanner  *bufio.Scanner
	splitter *lineSplitter
	dest     io.Writer
}

// NewLineReader returns a LineReader over src. A nil dest discards the copy.
func NewLineReader(src io.Reader, dest io.Writer) *LineReader {
	splitter := &lineSplitter{max: maxLineLength}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineLength)
	scanner.Split(splitter.split)

	if dest == nil {
		dest = io.Discard
	}

	return &LineReader{
		scanner:  scanner,
		splitter: splitter,
		dest:     dest,
	}
}

// Dropped returns how many over-long lines have been skipped so far.
func (r *LineReader) Dropped() int {
	return r.splitter.dropped
}

// Next returns the next line without its terminator. ok is false once the
// source is exhausted; err is then the first non-EOF read error, if any.
func (r *LineReader) Next() (line string, ok bool, err error) {
	if !r.scanner.Scan() {
		return "", false, r.scanner.Err()
	}

	line = r.scanner.Text()

	// The scanner strips the terminator, so the copy is written with "\n".
	if _, err := io.WriteString(r.dest, line+"\n"); err != nil {
		return "", false, err
	}

	return line, true, nil
}

// lineSplitter wraps ScanLines so that a line which would overflow the
// scanner buffer is discarded instead of failing the scan with
// bufio.ErrTooLong.
type lineSplitter struct {
	max     int
	dropped int

	// discarding is set while the tail of an over-long line is skipped.
	discarding bool

	// skipLF is set when a line ended in "\r" at the buffer edge, so a
	// following "\n" belongs to the same terminator.
	skipLF bool
}

func (s *lineSplitter) split(data []byte, atEOF bool) (int, []byte, error) {
	if s.skipLF && len(data) > 0 {
		s.skipLF = false
		if data[0] == '\n' {
			return 1, nil, nil
		}
	}

	if s.discarding {
		i := bytes.IndexAny(data, "\r\n")
		if i < 0 {
			if atEOF {
				s.discarding = false
			}
			return len(data), nil, nil
		}

		s.discarding = false
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, nil, nil
				}
			} else if !atEOF {
				s.skipLF = true
			}
		}
		return i + 1, nil, nil
	}

	advance, token, err := ScanLines(data, atEOF)
	if advance == 0 && token == nil && err == nil && len(data) >= s.max {
		// A full line ending in "\r" is only waiting on a possible "\n".
		if i := bytes.IndexByte(data, '\r'); i >= 0 {
			s.skipLF = true
			return i + 1, data[:i], nil
		}

		s.dropped++
		s.discarding = true
		return len(data), nil, nil
	}

	return advance, token, err
}

// ScanLines is a bufio.SplitFunc that accepts "\n", "\r\n" and a lone "\r"
// as line terminators. A final line without a terminator is still returned.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}

		// data[i] == '\r': it may be the first half of "\r\n".
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}

		// Need one more byte to decide.
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}
