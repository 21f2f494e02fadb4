package emit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHeadersReplaceOnlyFirstValue(t *testing.T) {
	h := Headers{}.
		Add("Set-Cookie", "a=1").
		Add("Content-Type", "text/plain").
		Add("set-cookie", "b=2").
		Add("Set-Cookie", "c=3")

	got := RenderHeaders(h, 200)

	require.Equal(t, []HeaderInstruction{
		{Line: "Set-Cookie: a=1", Replace: true, StatusHint: 200},
		{Line: "Set-Cookie: b=2", Replace: false, StatusHint: 200},
		{Line: "Set-Cookie: c=3", Replace: false, StatusHint: 200},
		{Line: "Content-Type: text/plain", Replace: true, StatusHint: 200},
	}, got)
}

func TestRenderHeadersCarriesStatusHint(t *testing.T) {
	h := Headers{}.Add("Location", "http://svc/123")
	for _, ins := range RenderHeaders(h, 202) {
		require.Equal(t, 202, ins.StatusHint)
	}
}

func TestRenderHeadersEmpty(t *testing.T) {
	require.Empty(t, RenderHeaders(Headers{}, 200))
}

func TestRenderStatusLine(t *testing.T) {
	sl := RenderStatusLine(202, "Accepted", "1.1")
	require.Equal(t, "HTTP/1.1 202 Accepted", sl.Line)
	require.True(t, sl.Replace)
	require.Equal(t, 202, sl.StatusHint)
	require.Equal(t, "HTTP/1.1 202 Accepted\r\n", sl.Wire())

	require.Equal(t, "HTTP/1.0 599", RenderStatusLine(599, "", "1.0").Line)
}

func TestParseHeaderLine(t *testing.T) {
	name, value, err := ParseHeaderLine("Content-Type:  text/plain ")
	require.NoError(t, err)
	require.Equal(t, "Content-Type", name)
	require.Equal(t, "text/plain", value)

	name, value, err = ParseHeaderLine("X-Empty:")
	require.NoError(t, err)
	require.Equal(t, "X-Empty", name)
	require.Equal(t, "", value)

	for _, bad := range []string{"", "no colon", ": value", "Bad Name: v"} {
		_, _, err := ParseHeaderLine(bad)
		require.Error(t, err, bad)
		require.True(t, Is(err, ErrInvalidLine), bad)
	}
}

func TestParseStatusLine(t *testing.T) {
	version, code, reason, err := ParseStatusLine("HTTP/1.1 404 Not Found")
	require.NoError(t, err)
	require.Equal(t, "1.1", version)
	require.Equal(t, 404, code)
	require.Equal(t, "Not Found", reason)

	_, code, reason, err = ParseStatusLine("HTTP/2 204")
	require.NoError(t, err)
	require.Equal(t, 204, code)
	require.Equal(t, "", reason)

	for _, bad := range []string{"", "HTTP/1.1", "HTTP/1.1 abc OK", "HTTP/1.1 42 Odd", "ICY 200 OK"} {
		_, _, _, err := ParseStatusLine(bad)
		require.True(t, Is(err, ErrInvalidLine), bad)
	}
}

func TestHeaderInstructionWire(t *testing.T) {
	ins := RenderHeaders(Headers{}.Add("Content-Length", "8"), 200)[0]
	require.Equal(t, "Content-Length: 8\r\n", ins.Wire())
}
