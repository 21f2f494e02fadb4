package emit

import (
	"bytes"
	"io"
	"strings"
)

// Stream is a readable response body. Size reports the total length when it
// is known without reading; ok is false for streams of unknown length.
// A known size of zero is still a known size.
type Stream interface {
	io.Reader
	Size() (size int64, ok bool)
}

type sizedStream struct {
	io.Reader
	size int64
}

func (s *sizedStream) Size() (int64, bool) {
	return s.size, true
}

type unsizedStream struct {
	io.Reader
}

func (s *unsizedStream) Size() (int64, bool) {
	return 0, false
}

// NewBufferStream returns a stream over b with a known size.
func NewBufferStream(b []byte) Stream {
	return &sizedStream{Reader: bytes.NewReader(b), size: int64(len(b))}
}

func NewStringStream(s string) Stream {
	return &sizedStream{Reader: strings.NewReader(s), size: int64(len(s))}
}

// NewReaderStream wraps r as a stream of unknown size.
func NewReaderStream(r io.Reader) Stream {
	return &unsizedStream{Reader: r}
}

// NewSizedReaderStream wraps r with a caller-declared size. The emitter trusts
// the declared size when deriving Content-Length.
func NewSizedReaderStream(r io.Reader, size int64) Stream {
	return &sizedStream{Reader: r, size: size}
}

func emptyStream() Stream {
	return NewBufferStream(nil)
}
