package emit

import (
	"net/http"
)

const DefaultProtocolVersion = "1.1"

// Response is an immutable HTTP response: status, reason phrase, protocol
// version, ordered headers and a body stream. The With* methods return a
// modified copy.
type Response struct {
	statusCode      int
	reasonPhrase    string
	protocolVersion string
	headers         Headers
	body            Stream
}

// NewResponse returns an empty-bodied response with the standard reason
// phrase for status.
func NewResponse(status int) *Response {
	return &Response{
		statusCode:      status,
		reasonPhrase:    http.StatusText(status),
		protocolVersion: DefaultProtocolVersion,
		body:            emptyStream(),
	}
}

func (r *Response) StatusCode() int         { return r.statusCode }
func (r *Response) ReasonPhrase() string    { return r.reasonPhrase }
func (r *Response) ProtocolVersion() string { return r.protocolVersion }
func (r *Response) Headers() Headers        { return r.headers }
func (r *Response) Body() Stream            { return r.body }

func (r *Response) Header(name string) string {
	return r.headers.Get(name)
}

func (r *Response) HasHeader(name string) bool {
	return r.headers.Has(name)
}

func (r *Response) clone() *Response {
	c := *r
	return &c
}

// WithStatus sets the status code. Without a reason phrase the standard
// text for code is used.
func (r *Response) WithStatus(code int, reason ...string) *Response {
	c := r.clone()
	c.statusCode = code
	if len(reason) > 0 && reason[0] != "" {
		c.reasonPhrase = reason[0]
	} else {
		c.reasonPhrase = http.StatusText(code)
	}
	return c
}

func (r *Response) WithProtocolVersion(version string) *Response {
	c := r.clone()
	c.protocolVersion = version
	return c
}

// WithHeader replaces all values of name.
func (r *Response) WithHeader(name string, values ...string) *Response {
	c := r.clone()
	c.headers = r.headers.Set(name, values...)
	return c
}

// WithAddedHeader appends value to name, keeping existing values.
func (r *Response) WithAddedHeader(name, value string) *Response {
	c := r.clone()
	c.headers = r.headers.Add(name, value)
	return c
}

func (r *Response) WithoutHeader(name string) *Response {
	c := r.clone()
	c.headers = r.headers.Del(name)
	return c
}

func (r *Response) WithHeaders(h Headers) *Response {
	c := r.clone()
	c.headers = h
	return c
}

func (r *Response) WithBody(body Stream) *Response {
	c := r.clone()
	if body == nil {
		body = emptyStream()
	}
	c.body = body
	return c
}
