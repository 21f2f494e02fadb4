package emit

import (
	"bytes"
	"strings"
)

// Write kinds recorded by Recorder
const (
	KindHeader = "header"
	KindStatus = "status"
)

// RecordedWrite is one header or status instruction seen by a Recorder.
type RecordedWrite struct {
	Kind       string
	Line       string
	Replace    bool
	StatusHint int
}

// Recorder is an in-memory Transport for tests. It logs every instruction,
// applies replace semantics to a simulated header list, and captures body
// bytes. Set HeadersSent (with File and Line) to simulate output that
// escaped before emission.
type Recorder struct {
	HeadersSent bool
	File        string
	Line        int

	// Body is the real output channel, below every buffer layer.
	Body      *bytes.Buffer
	Finalized bool

	stack  []RecordedWrite
	lines  []string
	status int
	layers *BufferStack
}

func NewRecorder() *Recorder {
	r := &Recorder{Body: &bytes.Buffer{}}
	r.layers = NewBufferStack(r.Body)
	return r
}

func (r *Recorder) HeadersAlreadyCommitted() (bool, string, int) {
	if !r.HeadersSent {
		return false, "", 0
	}
	return true, r.File, r.Line
}

func (r *Recorder) WriteHeaderLine(line string, replace bool, statusHint int) error {
	r.stack = append(r.stack, RecordedWrite{Kind: KindHeader, Line: line, Replace: replace, StatusHint: statusHint})
	name, _, err := ParseHeaderLine(line)
	if err != nil {
		return err
	}
	if replace {
		kept := r.lines[:0]
		for _, l := range r.lines {
			if n, _, _ := ParseHeaderLine(l); !strings.EqualFold(n, name) {
				kept = append(kept, l)
			}
		}
		r.lines = kept
	}
	r.lines = append(r.lines, line)
	r.status = statusHint
	return nil
}

func (r *Recorder) WriteStatusLine(line string, replace bool, statusHint int) error {
	r.stack = append(r.stack, RecordedWrite{Kind: KindStatus, Line: line, Replace: replace, StatusHint: statusHint})
	r.status = statusHint
	return nil
}

func (r *Recorder) WriteBodyBytes(p []byte) error {
	_, err := r.layers.Write(p)
	return err
}

func (r *Recorder) PushBufferLayer() {
	r.layers.Push()
}

func (r *Recorder) CurrentBufferDepth() int {
	return r.layers.Depth()
}

func (r *Recorder) PopBufferLayer(flushToParent bool) error {
	return r.layers.Pop(flushToParent)
}

// BufferContents returns the innermost buffer layer, or the real output when
// no layer is open.
func (r *Recorder) BufferContents() []byte {
	if r.layers.Depth() == 0 {
		return r.Body.Bytes()
	}
	return r.layers.Contents()
}

func (r *Recorder) FinalizeConnection() error {
	r.Finalized = true
	return nil
}

// Stack returns every recorded instruction in write order.
func (r *Recorder) Stack() []RecordedWrite {
	return append([]RecordedWrite(nil), r.stack...)
}

// Has reports whether line was ever written as a header or status line.
func (r *Recorder) Has(line string) bool {
	for _, w := range r.stack {
		if w.Line == line {
			return true
		}
	}
	return false
}

// HeaderLines returns the header list left after replace semantics.
func (r *Recorder) HeaderLines() []string {
	return append([]string(nil), r.lines...)
}

// Status returns the last status hint written.
func (r *Recorder) Status() int {
	return r.status
}

// Reset clears the log, header state, body and buffer layers.
func (r *Recorder) Reset() {
	r.stack = nil
	r.lines = nil
	r.status = 0
	r.Body.Reset()
	r.layers.Discard()
	r.Finalized = false
	r.HeadersSent = false
	r.File = ""
	r.Line = 0
}
