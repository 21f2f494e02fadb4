package emit

import (
	"strconv"
	"strings"
)

const crlf = "\r\n"

// HeaderInstruction is one header line to hand to a transport.
//
// Replace is true only for the first value of a name so a transport clears
// whatever it set for that name itself, while later values are appended
// instead of overwriting the earlier ones. StatusHint always carries the
// response status so a transport that infers status from headers (Location)
// is told the intended code.
type HeaderInstruction struct {
	Line       string
	Replace    bool
	StatusHint int
}

// Wire returns the CRLF-terminated header line.
func (i HeaderInstruction) Wire() string {
	return i.Line + crlf
}

// StatusInstruction is the status line. It always replaces.
type StatusInstruction struct {
	Line       string
	Replace    bool
	StatusHint int
}

func (i StatusInstruction) Wire() string {
	return i.Line + crlf
}

// RenderHeaders turns headers into write instructions, names in insertion
// order and values in insertion order within a name.
func RenderHeaders(h Headers, statusCode int) []HeaderInstruction {
	out := make([]HeaderInstruction, 0, h.Len())
	h.Each(func(name, value string, first bool) {
		out = append(out, HeaderInstruction{
			Line:       name + ": " + value,
			Replace:    first,
			StatusHint: statusCode,
		})
	})
	return out
}

// RenderStatusLine builds "HTTP/<version> <code> <reason>". The reason part
// is left out when empty.
func RenderStatusLine(statusCode int, reasonPhrase, protocolVersion string) StatusInstruction {
	var b strings.Builder
	b.Grow(len(protocolVersion) + len(reasonPhrase) + 10)
	b.WriteString("HTTP/")
	b.WriteString(protocolVersion)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(statusCode))
	if reasonPhrase != "" {
		b.WriteByte(' ')
		b.WriteString(reasonPhrase)
	}
	return StatusInstruction{
		Line:       b.String(),
		Replace:    true,
		StatusHint: statusCode,
	}
}

// ParseHeaderLine splits "Name: value". Whitespace around the value is
// trimmed.
func ParseHeaderLine(line string) (name, value string, err error) {
	i := strings.IndexByte(line, ':')
	if i <= 0 {
		return "", "", Newf(ErrInvalidLine, "malformed header line %q", line)
	}
	name = line[:i]
	if strings.ContainsAny(name, " \t") {
		return "", "", Newf(ErrInvalidLine, "malformed header name %q", name)
	}
	return name, strings.TrimSpace(line[i+1:]), nil
}

// ParseStatusLine splits "HTTP/<version> <code>[ <reason>]".
func ParseStatusLine(line string) (version string, code int, reason string, err error) {
	if !strings.HasPrefix(line, "HTTP/") {
		return "", 0, "", Newf(ErrInvalidLine, "malformed status line %q", line)
	}
	rest := line[len("HTTP/"):]
	sp := strings.IndexByte(rest, ' ')
	if sp <= 0 {
		return "", 0, "", Newf(ErrInvalidLine, "malformed status line %q", line)
	}
	version, rest = rest[:sp], rest[sp+1:]

	codeText := rest
	if sp = strings.IndexByte(rest, ' '); sp >= 0 {
		codeText, reason = rest[:sp], rest[sp+1:]
	}
	code, convErr := strconv.Atoi(codeText)
	if convErr != nil || code < 100 || code > 999 {
		return "", 0, "", Newf(ErrInvalidLine, "malformed status code in %q", line)
	}
	return version, code, reason, nil
}
