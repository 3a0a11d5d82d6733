package rdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultBlockSize is the number of bytes a reader requests from its source at once
const DefaultBlockSize = 4096

// Source is an input document for a Reader. It is opened by Reader.Start
// and closed by Reader.Finish.
type Source struct {
	name string
	open func() (io.Reader, io.Closer, error)
}

// FileSource reads the file at path. The file is not opened until the
// reader is started.
func FileSource(path string) *Source {
	return &Source{
		name: path,
		open: func() (io.Reader, io.Closer, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, nil, err
			}
			return f, f, nil
		},
	}
}

// StringSource reads an in-memory document
func StringSource(text string) *Source {
	return &Source{
		name: "string",
		open: func() (io.Reader, io.Closer, error) {
			return strings.NewReader(text), nil, nil
		},
	}
}

// ReaderSource reads from r, which is never closed by the reader
func ReaderSource(name string, r io.Reader) *Source {
	return &Source{
		name: name,
		open: func() (io.Reader, io.Closer, error) {
			return r, nil, nil
		},
	}
}

// Name returns the document name used in cursors
func (s *Source) Name() string {
	return s.name
}

// byteSource buffers input in blocks and tracks the cursor of the next byte.
// Consumed bytes are discarded at chunk boundaries, so memory use is bounded
// by the largest top-level production.
type byteSource struct {
	r         io.Reader
	closer    io.Closer
	buf       []byte
	head      int
	blockSize int
	eof       bool
	err       error
	cur       Cursor
}

func newByteSource(name string, r io.Reader, closer io.Closer, blockSize int) *byteSource {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &byteSource{
		r:         r,
		closer:    closer,
		blockSize: blockSize,
		cur:       Cursor{Name: name, Line: 1},
	}
}

// fill makes at least n bytes available after head, unless input ends first
func (s *byteSource) fill(n int) bool {
	for len(s.buf)-s.head < n {
		if s.eof {
			return false
		}

		block := make([]byte, s.blockSize)
		read, err := s.r.Read(block)
		s.buf = append(s.buf, block[:read]...)
		if err != nil {
			s.eof = true
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
		}
	}
	return true
}

// peek returns the next byte, or -1 at the end of input
func (s *byteSource) peek() int {
	return s.peekAt(0)
}

// peekAt returns the byte i positions ahead, or -1 past the end of input
func (s *byteSource) peekAt(i int) int {
	if !s.fill(i + 1) {
		return -1
	}
	return int(s.buf[s.head+i])
}

// peekRune decodes the next UTF-8 character without consuming it
func (s *byteSource) peekRune() (rune, int) {
	s.fill(utf8.UTFMax)
	if s.head >= len(s.buf) {
		return -1, 0
	}
	return utf8.DecodeRune(s.buf[s.head:])
}

func (s *byteSource) hasPrefix(prefix string) bool {
	if !s.fill(len(prefix)) {
		return false
	}
	return string(s.buf[s.head:s.head+len(prefix)]) == prefix
}

// hasPrefixFold is hasPrefix ignoring ASCII case
func (s *byteSource) hasPrefixFold(prefix string) bool {
	if !s.fill(len(prefix)) {
		return false
	}
	return strings.EqualFold(string(s.buf[s.head:s.head+len(prefix)]), prefix)
}

// advance consumes n bytes
func (s *byteSource) advance(n int) {
	for i := 0; i < n && s.fill(1); i++ {
		if s.buf[s.head] == '\n' {
			s.cur.Line++
			s.cur.Column = 0
		} else if s.buf[s.head]&0xC0 != 0x80 {
			s.cur.Column++
		}
		s.head++
	}
}

func (s *byteSource) atEnd() bool {
	return s.peek() < 0
}

// discard drops consumed bytes from the buffer
func (s *byteSource) discard() {
	if s.head == 0 {
		return
	}
	s.buf = append(s.buf[:0], s.buf[s.head:]...)
	s.head = 0
}

func (s *byteSource) close() error {
	s.buf = nil
	s.head = 0
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", s.cur.Name, err)
	}
	return nil
}
