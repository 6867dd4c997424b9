package dxf

import (
	"bufio"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Tag is one (group code, value) pair.
type Tag struct {
	Code  int
	Value string
	// Line is the 1-based line number of the code line.
	Line int
}

// TagScanner produces tags lazily from a line stream.
// Like bufio.Scanner, read errors are reported by Err once iteration stops.
type TagScanner struct {
	sc   *bufio.Scanner
	line int
	err  error
}

// NewTagScanner returns a scanner reading from r.
func NewTagScanner(r io.Reader) *TagScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &TagScanner{sc: sc}
}

// All yields the tags of the stream in order. Values are trimmed.
// A pair whose code line is not an integer is skipped; a stream ending
// after a code line ends the sequence.
func (s *TagScanner) All() iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for {
			codeLine, ok := s.next()
			if !ok {
				return
			}
			at := s.line
			valueLine, ok := s.next()
			if !ok {
				return
			}

			code, err := strconv.Atoi(strings.TrimSpace(codeLine))
			if err != nil {
				continue
			}
			if !yield(Tag{Code: code, Value: strings.TrimSpace(valueLine), Line: at}) {
				return
			}
		}
	}
}

// Err returns the first non-EOF read error.
func (s *TagScanner) Err() error {
	return s.err
}

func (s *TagScanner) next() (string, bool) {
	if !s.sc.Scan() {
		s.err = s.sc.Err()
		return "", false
	}
	s.line++
	return s.sc.Text(), true
}

// Tags is a convenience over NewTagScanner(r).All() that discards read errors.
func Tags(r io.Reader) iter.Seq[Tag] {
	return NewTagScanner(r).All()
}
