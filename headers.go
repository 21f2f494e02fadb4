package emit

import (
	"net/http"
	"sort"
	"strings"
)

// HeaderName constants for headers the emitter and builders touch
const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderLocation      = "Location"
	HeaderSetCookie     = "Set-Cookie"
	HeaderCacheControl  = "Cache-Control"
	HeaderXRequestID    = "X-Request-ID"
)

// ContentType constants
const (
	ContentTypeJSON        = "application/json"
	ContentTypeForm        = "application/x-www-form-urlencoded"
	ContentTypeHTML        = "text/html; charset=utf-8"
	ContentTypePlain       = "text/plain; charset=utf-8"
	ContentTypeOctetStream = "application/octet-stream"
)

type headerEntry struct {
	name   string
	values []string
}

// Headers is an ordered, case-insensitive mapping of header name to values.
// The name keeps the case it was first inserted with and values keep their
// insertion order, so repeated headers such as Set-Cookie survive intact.
//
// Headers is a value type: every mutator returns a new Headers and leaves
// the receiver untouched.
type Headers struct {
	entries []headerEntry
}

// FromHTTPHeader converts a net/http header map. Map iteration order is
// random, so names are sorted to keep emission deterministic.
func FromHTTPHeader(h http.Header) Headers {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := Headers{entries: make([]headerEntry, 0, len(names))}
	seen := make(map[string]int, len(names))
	for _, name := range names {
		values := h[name]
		if len(values) == 0 {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := seen[key]; ok {
			out.entries[i].values = append(out.entries[i].values, values...)
			continue
		}
		seen[key] = len(out.entries)
		out.entries = append(out.entries, headerEntry{name: name, values: append([]string(nil), values...)})
	}
	return out
}

func (h Headers) index(name string) int {
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].name, name) {
			return i
		}
	}
	return -1
}

func (h Headers) clone() Headers {
	entries := make([]headerEntry, len(h.entries))
	for i, e := range h.entries {
		entries[i] = headerEntry{
			name:   e.name,
			values: append([]string(nil), e.values...),
		}
	}
	return Headers{entries: entries}
}

// Len returns the number of distinct header names.
func (h Headers) Len() int {
	return len(h.entries)
}

func (h Headers) Has(name string) bool {
	return h.index(name) >= 0
}

// Get returns the first value for name, or "".
func (h Headers) Get(name string) string {
	if i := h.index(name); i >= 0 && len(h.entries[i].values) > 0 {
		return h.entries[i].values[0]
	}
	return ""
}

// Values returns a copy of all values for name in insertion order.
func (h Headers) Values(name string) []string {
	if i := h.index(name); i >= 0 {
		return append([]string(nil), h.entries[i].values...)
	}
	return nil
}

// Names returns header names in insertion order, with their original case.
func (h Headers) Names() []string {
	names := make([]string, len(h.entries))
	for i, e := range h.entries {
		names[i] = e.name
	}
	return names
}

// Each calls fn for every (name, value) pair in emission order.
func (h Headers) Each(fn func(name, value string, first bool)) {
	for _, e := range h.entries {
		for i, v := range e.values {
			fn(e.name, v, i == 0)
		}
	}
}

// Set replaces all values of name. An existing entry keeps its position and
// its originally inserted case.
func (h Headers) Set(name string, values ...string) Headers {
	out := h.clone()
	if i := out.index(name); i >= 0 {
		out.entries[i].values = append([]string(nil), values...)
		return out
	}
	out.entries = append(out.entries, headerEntry{name: name, values: append([]string(nil), values...)})
	return out
}

// Add appends value to name, creating the entry when missing.
func (h Headers) Add(name, value string) Headers {
	out := h.clone()
	if i := out.index(name); i >= 0 {
		out.entries[i].values = append(out.entries[i].values, value)
		return out
	}
	out.entries = append(out.entries, headerEntry{name: name, values: []string{value}})
	return out
}

func (h Headers) Del(name string) Headers {
	i := h.index(name)
	if i < 0 {
		return h
	}
	out := h.clone()
	out.entries = append(out.entries[:i], out.entries[i+1:]...)
	return out
}

// HTTPHeader converts back to a net/http header map.
func (h Headers) HTTPHeader() http.Header {
	out := make(http.Header, len(h.entries))
	for _, e := range h.entries {
		for _, v := range e.values {
			out.Add(e.name, v)
		}
	}
	return out
}
