package emit

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// BufferLayers is the part of a transport that manages nested output
// buffering layers.
type BufferLayers interface {
	CurrentBufferDepth() int
	PopBufferLayer(flushToParent bool) error
}

// BufferStack is a stack of output capture layers in front of a sink. Writes
// land in the innermost layer, or in the sink when no layer is active.
// Not safe for concurrent use.
type BufferStack struct {
	sink   io.Writer
	layers []*bytebufferpool.ByteBuffer
}

func NewBufferStack(sink io.Writer) *BufferStack {
	return &BufferStack{sink: sink}
}

// Push opens a new innermost layer.
func (s *BufferStack) Push() {
	s.layers = append(s.layers, bytebufferpool.Get())
}

func (s *BufferStack) Depth() int {
	return len(s.layers)
}

func (s *BufferStack) Write(p []byte) (int, error) {
	if n := len(s.layers); n > 0 {
		return s.layers[n-1].Write(p)
	}
	return s.sink.Write(p)
}

// Contents returns a copy of the innermost layer, nil without layers.
func (s *BufferStack) Contents() []byte {
	n := len(s.layers)
	if n == 0 {
		return nil
	}
	return append([]byte(nil), s.layers[n-1].B...)
}

// Pop closes the innermost layer. With flush its bytes are appended to the
// next outer layer, or written to the sink; without flush they are dropped.
func (s *BufferStack) Pop(flush bool) error {
	n := len(s.layers)
	if n == 0 {
		return New(ErrDrainStalled, "no output buffer layer to pop")
	}
	top := s.layers[n-1]
	s.layers[n-1] = nil
	s.layers = s.layers[:n-1]
	defer bytebufferpool.Put(top)

	if !flush || top.Len() == 0 {
		return nil
	}
	if _, err := s.Write(top.B); err != nil {
		return Wrap(err, ErrTransportWrite, "flushing output buffer layer")
	}
	return nil
}

// Discard drops every layer without flushing.
func (s *BufferStack) Discard() {
	for _, b := range s.layers {
		bytebufferpool.Put(b)
	}
	s.layers = nil
}

// DrainBuffers pops layers until the depth reaches targetDepth. With flush
// each popped layer's bytes move to the next outer layer (or the real
// output), innermost first; without flush they are discarded. It is a no-op
// when the depth is already at or below targetDepth.
func DrainBuffers(layers BufferLayers, targetDepth int, flush bool) error {
	if targetDepth < 0 {
		targetDepth = 0
	}
	depth := layers.CurrentBufferDepth()
	for depth > targetDepth {
		if err := layers.PopBufferLayer(flush); err != nil {
			return err
		}
		next := layers.CurrentBufferDepth()
		if next >= depth {
			return Newf(ErrDrainStalled, "buffer depth stayed at %d after pop", next)
		}
		depth = next
	}
	return nil
}
