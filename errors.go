package emit

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Identifies the emission step an error came from
type ErrorCode string

const (
	ErrUnknown         ErrorCode = "err_unknown_error"
	ErrInternal        ErrorCode = "err_internal_error"
	ErrPrematureOutput ErrorCode = "err_premature_output"
	ErrStreamRead      ErrorCode = "err_stream_read"
	ErrTransportWrite  ErrorCode = "err_transport_write"
	ErrFinalize        ErrorCode = "err_finalize"
	ErrInvalidLine     ErrorCode = "err_invalid_line"
	ErrDrainStalled    ErrorCode = "err_drain_stalled"
)

var defaultMessages = map[ErrorCode]string{
	ErrUnknown:         "Unknown error",
	ErrInternal:        "Internal error",
	ErrPrematureOutput: "Unable to emit response: headers already sent",
	ErrStreamRead:      "Failed to read response body",
	ErrTransportWrite:  "Transport write failed",
	ErrFinalize:        "Failed to finalize connection",
	ErrInvalidLine:     "Invalid header or status line",
	ErrDrainStalled:    "Output buffer layer did not pop",
}

// Error carries a code, a message and the wrapped cause. For
// ErrPrematureOutput, File and Line point at whatever wrote output before
// emission started, when the transport knows it.
type Error struct {
	Original error
	Code     ErrorCode
	Message  string
	File     string
	Line     int

	// caller of New/Wrap
	file     string
	line     int
	function string
}

func (e *Error) Error() string {
	base := fmt.Sprintf("[emit:%s] %s", e.Code, e.Message)
	if e.Original != nil {
		return fmt.Sprintf("%s: %v", base, e.Original)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Original
}

func (e *Error) capture(skip int) {
	if pc, file, line, ok := runtime.Caller(skip + 1); ok {
		e.file = file
		e.line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			e.function = fn.Name()
		}
	}
}

func New(code ErrorCode, msg string) *Error {
	if msg == "" {
		msg = defaultMessages[code]
		if msg == "" {
			msg = defaultMessages[ErrUnknown]
		}
	}
	err := &Error{Code: code, Message: msg}
	err.capture(1)
	return err
}

func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	err := New(code, fmt.Sprintf(format, args...))
	err.capture(1)
	return err
}

// Wrap attaches code and msg to err. Wrapping nil returns nil.
func Wrap(err error, code ErrorCode, msg string) *Error {
	if err == nil {
		return nil
	}
	wrapped := New(code, msg)
	wrapped.Original = errors.WithStack(err)
	wrapped.capture(1)
	return wrapped
}

// NewPrematureOutput builds the preflight failure. file may be empty when
// the transport cannot tell where the output came from.
func NewPrematureOutput(file string, line int) *Error {
	msg := defaultMessages[ErrPrematureOutput]
	if file != "" {
		msg = fmt.Sprintf("Unable to emit response: Headers already sent in file %s on line %d", file, line)
	}
	msg += ". This happens if something wrote to the response (Write, WriteHeader, fmt.Fprint or similar) before it was emitted."
	err := &Error{Code: ErrPrematureOutput, Message: msg, File: file, Line: line}
	err.capture(1)
	return err
}

func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var emitErr *Error
	if errors.As(err, &emitErr) {
		return emitErr.Code == code
	}
	return false
}

func IsPrematureOutput(err error) bool {
	return Is(err, ErrPrematureOutput)
}

// Logs errors with their code and capture site
func LogError(logger *zerolog.Logger, err error) {
	if err == nil || logger == nil {
		return
	}

	event := logger.Error().Err(err)

	var emitErr *Error
	if errors.As(err, &emitErr) {
		event = event.
			Str("error_code", string(emitErr.Code)).
			Str("file", emitErr.file).
			Int("line", emitErr.line).
			Str("function", emitErr.function)
		if emitErr.File != "" {
			event = event.Str("output_file", emitErr.File).Int("output_line", emitErr.Line)
		}
	} else if pc, file, line, ok := runtime.Caller(1); ok {
		shortFile := file
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			shortFile = file[idx+1:]
		}
		funcName := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
			if idx := strings.LastIndex(funcName, "."); idx >= 0 {
				funcName = funcName[idx+1:]
			}
		}
		event = event.Str("file", shortFile).Int("line", line).Str("function", funcName)
	}

	event.Msg("[emit-error] Error occurred")
}

// LogPanic logs a recovered panic with its stack and the request it broke.
func LogPanic(logger *zerolog.Logger, recovered interface{}, stack []byte, path, method string) {
	if logger == nil {
		return
	}

	stackArr := zerolog.Arr()
	for _, l := range strings.Split(strings.TrimSpace(string(stack)), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			stackArr = stackArr.Str(l)
		}
	}

	logger.Error().
		Str("error_code", string(ErrInternal)).
		Str("panic", fmt.Sprintf("%v", recovered)).
		Str("path", path).
		Str("method", method).
		Array("stack_array", stackArr).
		Msgf("[emit-panic] Panic recovered: %v during %s %s", recovered, method, path)
}
