package emit

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

type headerField struct {
	name  string
	value string
}

// ConnTransport writes a raw HTTP/1.x response onto an io.Writer such as a
// net.Conn. Header and status instructions are collected and the head is
// serialized, status line first, on the first body write or at finalize.
type ConnTransport struct {
	bw *bufio.Writer

	fields     []headerField
	statusLine string
	status     int

	headWritten   bool
	committedFile string
	committedLine int
	finalized     bool

	layers *BufferStack
}

func NewConnTransport(w io.Writer) *ConnTransport {
	t := &ConnTransport{
		bw:     bufio.NewWriter(w),
		status: http.StatusOK,
	}
	t.layers = NewBufferStack(writerFunc(t.writeOut))
	return t
}

func (t *ConnTransport) HeadersAlreadyCommitted() (bool, string, int) {
	return t.headWritten, t.committedFile, t.committedLine
}

func (t *ConnTransport) WriteHeaderLine(line string, replace bool, statusHint int) error {
	if t.headWritten {
		return New(ErrTransportWrite, "header line after head was written")
	}
	name, value, err := ParseHeaderLine(line)
	if err != nil {
		return err
	}
	if replace {
		kept := t.fields[:0]
		for _, f := range t.fields {
			if !strings.EqualFold(f.name, name) {
				kept = append(kept, f)
			}
		}
		t.fields = kept
	}
	t.fields = append(t.fields, headerField{name: name, value: value})
	if t.statusLine == "" {
		t.status = statusHint
	}
	return nil
}

// WriteStatusLine stores the status line. When the code in line disagrees
// with statusHint the line is re-rendered for statusHint with its standard
// reason.
func (t *ConnTransport) WriteStatusLine(line string, replace bool, statusHint int) error {
	if t.headWritten {
		return New(ErrTransportWrite, "status line after head was written")
	}
	version, code, _, err := ParseStatusLine(line)
	if err != nil {
		return err
	}
	if t.statusLine != "" && !replace {
		return nil
	}
	if code != statusHint {
		line = RenderStatusLine(statusHint, http.StatusText(statusHint), version).Line
	}
	t.statusLine = line
	t.status = statusHint
	return nil
}

// Status returns the status code the head carries or will carry.
func (t *ConnTransport) Status() int {
	return t.status
}

// Headers returns the collected header fields.
func (t *ConnTransport) Headers() Headers {
	var h Headers
	for _, f := range t.fields {
		h = h.Add(f.name, f.value)
	}
	return h
}

func (t *ConnTransport) writeHead() error {
	if t.headWritten {
		return nil
	}
	t.headWritten = true
	t.committedFile, t.committedLine = outputSite()

	statusLine := t.statusLine
	if statusLine == "" {
		statusLine = RenderStatusLine(t.status, http.StatusText(t.status), DefaultProtocolVersion).Line
	}
	t.bw.WriteString(statusLine)
	t.bw.WriteString(crlf)
	for _, f := range t.fields {
		t.bw.WriteString(f.name)
		t.bw.WriteString(": ")
		t.bw.WriteString(f.value)
		t.bw.WriteString(crlf)
	}
	_, err := t.bw.WriteString(crlf)
	return err
}

func (t *ConnTransport) writeOut(p []byte) (int, error) {
	if err := t.writeHead(); err != nil {
		return 0, err
	}
	return t.bw.Write(p)
}

func (t *ConnTransport) WriteBodyBytes(p []byte) error {
	if _, err := t.layers.Write(p); err != nil {
		return Wrap(err, ErrTransportWrite, "")
	}
	return nil
}

func (t *ConnTransport) PushBufferLayer() {
	t.layers.Push()
}

func (t *ConnTransport) CurrentBufferDepth() int {
	return t.layers.Depth()
}

func (t *ConnTransport) PopBufferLayer(flushToParent bool) error {
	return t.layers.Pop(flushToParent)
}

// FinalizeConnection writes the head if no body byte did, and flushes.
// The underlying writer is not closed.
func (t *ConnTransport) FinalizeConnection() error {
	if t.finalized {
		return nil
	}
	t.finalized = true
	if err := t.writeHead(); err != nil {
		return Wrap(err, ErrFinalize, "")
	}
	if err := t.bw.Flush(); err != nil {
		return Wrap(err, ErrFinalize, "")
	}
	return nil
}
