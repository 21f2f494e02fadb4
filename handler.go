package emit

import (
	"bufio"
	"net"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
)

// HandlerFunc produces the response for a request. A returned error is
// turned into a JSON error envelope.
type HandlerFunc func(*http.Request) (*Response, error)

type HandlerConfig struct {
	// InjectContentLength derives Content-Length from sized bodies.
	InjectContentLength bool
	// RequestIDHeader is echoed from the request, or filled with a new
	// UUID. Empty disables it.
	RequestIDHeader string
	// Emitter defaults to an Emitter with zero config.
	Emitter *Emitter
}

// DefaultHandlerConfig injects Content-Length and tags responses with
// X-Request-ID.
var DefaultHandlerConfig = HandlerConfig{
	InjectContentLength: true,
	RequestIDHeader:     HeaderXRequestID,
}

func (c HandlerConfig) emitter() *Emitter {
	if c.Emitter != nil {
		return c.Emitter
	}
	return defaultEmitter
}

// prepare resolves the handler result into the response to emit.
func (c HandlerConfig) prepare(req *http.Request, resp *Response, err error) *Response {
	if err != nil {
		LogError(logger, err)
		code := "err_internal_error"
		if Is(err, ErrPrematureOutput) {
			code = "err_premature_output"
		}
		resp = NewErrorResponse(code, nil)
	} else if resp == nil {
		resp = NewEmptyResponse(http.StatusNoContent)
	}

	if c.RequestIDHeader != "" && !resp.HasHeader(c.RequestIDHeader) {
		id := req.Header.Get(c.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		resp = resp.WithHeader(c.RequestIDHeader, id)
	}

	if c.InjectContentLength {
		resp = InjectContentLength(resp)
	}
	return resp
}

type handler struct {
	fn     HandlerFunc
	config HandlerConfig
}

// Handler adapts fn to net/http, emitting its responses through an
// HTTPTransport.
func Handler(fn HandlerFunc, config HandlerConfig) http.Handler {
	return &handler{fn: fn, config: config}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	t := NewHTTPTransport(w)
	resp, err := h.call(req)
	resp = h.config.prepare(req, resp, err)

	if err := h.config.emitter().Emit(t, resp); err != nil && logger != nil {
		logger.Error().Err(err).
			Str("path", req.URL.Path).
			Str("method", req.Method).
			Msg("[emit] emission failed")
	}
}

// call runs the handler, turning a panic into an error. http.ErrAbortHandler
// is re-raised so net/http can abort the connection quietly.
func (h *handler) call(req *http.Request) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			LogPanic(logger, rec, debug.Stack(), req.URL.Path, req.Method)
			resp, err = nil, Newf(ErrInternal, "panic: %v", rec)
		}
	}()
	return h.fn(req)
}

// ServeConn reads one HTTP/1.x request from conn, runs fn and writes the
// response as raw HTTP/1.1 through a ConnTransport. The connection is
// closed afterwards.
func ServeConn(conn net.Conn, fn HandlerFunc, config HandlerConfig) error {
	defer conn.Close()

	t := NewConnTransport(conn)
	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		resp := NewTextResponse(http.StatusBadRequest, "Bad Request").
			WithHeader("Connection", "close")
		return config.emitter().Emit(t, InjectContentLength(resp))
	}

	resp, err := fn(req)
	resp = config.prepare(req, resp, err)
	if !resp.HasHeader("Connection") {
		resp = resp.WithHeader("Connection", "close")
	}
	if req.Method == http.MethodHead {
		resp = resp.WithBody(nil)
	}
	return config.emitter().Emit(t, resp)
}
