package emit

import (
	"io"
)

// EmitterConfig holds optional post-emission behavior.
type EmitterConfig struct {
	// DrainAfterEmit unwinds the transport's buffer layers to DrainDepth
	// once the body is written, flushing them when DrainFlush is set.
	DrainAfterEmit bool
	DrainDepth     int
	DrainFlush     bool
}

// Emitter writes a Response to a Transport: preflight, headers, status
// line, body, finalize. An Emitter holds no per-response state and may be
// shared; the Transport may not.
type Emitter struct {
	config EmitterConfig
}

func NewEmitter(config EmitterConfig) *Emitter {
	return &Emitter{config: config}
}

var defaultEmitter = NewEmitter(EmitterConfig{})

// Emit writes r to t with the default emitter.
func Emit(t Transport, r *Response) error {
	return defaultEmitter.Emit(t, r)
}

// Emit writes r to t.
//
// It refuses to start, without writing anything, when t reports output
// already committed. Headers go out before the status line so the explicit
// status wins over any status a transport derives from headers such as
// Location. Errors after preflight are returned as-is; bytes already
// written are not rolled back.
func (e *Emitter) Emit(t Transport, r *Response) error {
	if committed, file, line := t.HeadersAlreadyCommitted(); committed {
		err := NewPrematureOutput(file, line)
		LogError(logger, err)
		return err
	}

	status := r.StatusCode()
	for _, ins := range RenderHeaders(r.Headers(), status) {
		if err := t.WriteHeaderLine(ins.Line, ins.Replace, ins.StatusHint); err != nil {
			LogError(logger, err)
			return err
		}
	}

	sl := RenderStatusLine(status, r.ReasonPhrase(), r.ProtocolVersion())
	if err := t.WriteStatusLine(sl.Line, sl.Replace, sl.StatusHint); err != nil {
		LogError(logger, err)
		return err
	}

	written, err := e.emitBody(t, r.Body())
	if err != nil {
		return err
	}

	if e.config.DrainAfterEmit {
		if err := DrainBuffers(t, e.config.DrainDepth, e.config.DrainFlush); err != nil {
			LogError(logger, err)
			return err
		}
	}

	if err := t.FinalizeConnection(); err != nil {
		if !Is(err, ErrFinalize) {
			err = Wrap(err, ErrFinalize, "")
		}
		LogError(logger, err)
		return err
	}

	if logger != nil {
		logger.Debug().
			Int("status_code", status).
			Int("headers", r.Headers().Len()).
			Int64("body_bytes", written).
			Msg("[emit] response emitted")
	}
	return nil
}

// emitBody copies the body in chunks. Read errors come back unchanged.
func (e *Emitter) emitBody(t Transport, body Stream) (int64, error) {
	if body == nil {
		return 0, nil
	}
	buf := make([]byte, GetChunkSize())
	var written int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if err := t.WriteBodyBytes(buf[:n]); err != nil {
				LogError(logger, err)
				return written, err
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			LogError(logger, Wrap(readErr, ErrStreamRead, ""))
			return written, readErr
		}
	}
}
