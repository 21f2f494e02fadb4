package emit

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// HTTPTransport adapts a net/http ResponseWriter to Transport. It also
// implements http.ResponseWriter, so it can be handed to code that writes
// directly. Direct writes land in the innermost buffer layer when one is
// open; otherwise they commit the response, and a later emission fails
// preflight with the location of the offending call.
type HTTPTransport struct {
	http.ResponseWriter
	Status int

	// committed is set once the underlying writer has its status, by an
	// emission or by a direct call.
	committed     bool
	committedFile string
	committedLine int
	finalized     bool
	layers        *BufferStack
}

func NewHTTPTransport(w http.ResponseWriter) *HTTPTransport {
	t := &HTTPTransport{
		ResponseWriter: w,
		Status:         http.StatusOK,
	}
	t.layers = NewBufferStack(writerFunc(t.writeOut))
	return t
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// commit sends the status to the underlying writer once and records who
// caused it.
func (w *HTTPTransport) commit() {
	if w.committed {
		return
	}
	w.committed = true
	w.committedFile, w.committedLine = outputSite()
	w.ResponseWriter.WriteHeader(w.Status)
}

// WriteHeader is the http.ResponseWriter method, for callers outside the
// emitter.
func (w *HTTPTransport) WriteHeader(statusCode int) {
	if w.committed {
		return
	}
	w.Status = statusCode
	w.commit()
}

// Write is the http.ResponseWriter method, for callers outside the emitter.
// With a buffer layer open the bytes are captured and nothing is committed.
func (w *HTTPTransport) Write(data []byte) (int, error) {
	return w.layers.Write(data)
}

// HeadersAlreadyCommitted reports whether the status has gone to the
// underlying writer, including by an earlier emission.
func (w *HTTPTransport) HeadersAlreadyCommitted() (bool, string, int) {
	return w.committed, w.committedFile, w.committedLine
}

func (w *HTTPTransport) WriteHeaderLine(line string, replace bool, statusHint int) error {
	name, value, err := ParseHeaderLine(line)
	if err != nil {
		return err
	}
	if w.committed {
		return New(ErrTransportWrite, "header line after status was sent")
	}
	h := w.ResponseWriter.Header()
	if replace {
		h.Del(name)
	}
	h.Add(name, value)
	w.Status = statusHint
	return nil
}

// WriteStatusLine commits the head with statusHint. net/http renders the
// status line itself, so the line is only validated.
func (w *HTTPTransport) WriteStatusLine(line string, replace bool, statusHint int) error {
	if _, _, _, err := ParseStatusLine(line); err != nil {
		return err
	}
	if w.committed {
		return New(ErrTransportWrite, "status line after status was sent")
	}
	w.Status = statusHint
	w.commit()
	return nil
}

func (w *HTTPTransport) WriteBodyBytes(p []byte) error {
	if _, err := w.layers.Write(p); err != nil {
		return Wrap(err, ErrTransportWrite, "")
	}
	return nil
}

// writeOut is the sink under the buffer layers: bytes reaching it go on the
// wire.
func (w *HTTPTransport) writeOut(p []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(p)
}

func (w *HTTPTransport) PushBufferLayer() {
	w.layers.Push()
}

func (w *HTTPTransport) CurrentBufferDepth() int {
	return w.layers.Depth()
}

func (w *HTTPTransport) PopBufferLayer(flushToParent bool) error {
	return w.layers.Pop(flushToParent)
}

// BufferContents returns the innermost buffer layer.
func (w *HTTPTransport) BufferContents() []byte {
	return w.layers.Contents()
}

// FinalizeConnection flushes the underlying writer. Open buffer layers are
// left to their owner.
func (w *HTTPTransport) FinalizeConnection() error {
	if w.finalized {
		return nil
	}
	w.finalized = true
	w.commit()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

func (w *HTTPTransport) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("ResponseWriter does not implement http.Hijacker")
}

// Flush sends the status and anything written so far. Buffer layers are not
// flushed.
func (w *HTTPTransport) Flush() {
	w.commit()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *HTTPTransport) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := w.ResponseWriter.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}
