package emit

import (
	"strconv"
)

// InjectContentLength sets Content-Length from the body size when the body
// size is known and no Content-Length is present. An explicit header always
// wins and an unknown size leaves the response untouched, since a guessed
// length would corrupt framing. The body is not read.
func InjectContentLength(r *Response) *Response {
	if len(r.Headers().Values(HeaderContentLength)) > 0 {
		return r
	}
	size, ok := r.Body().Size()
	if !ok || size < 0 {
		return r
	}
	return r.WithHeader(HeaderContentLength, strconv.FormatInt(size, 10))
}
