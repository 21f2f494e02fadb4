package emit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestHTTPTransportKeepsExplicitStatusWithLocation(t *testing.T) {
	w := httptest.NewRecorder()
	resp := NewRedirectResponse(http.StatusAccepted, "http://api.my-service.com/12345678").
		WithAddedHeader("Content-Type", "text/plain").
		WithBody(NewStringStream("queued"))

	if err := Emit(NewHTTPTransport(w), resp); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	if w.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", w.Code)
	}
	if w.Header().Get("Location") != "http://api.my-service.com/12345678" {
		t.Errorf("Unexpected Location %q", w.Header().Get("Location"))
	}
	if w.Body.String() != "queued" {
		t.Errorf("Expected body 'queued', got %q", w.Body.String())
	}
	if !w.Flushed {
		t.Error("Expected finalize to flush the writer")
	}
}

func TestHTTPTransportReplacesStaleHeadersButKeepsCookies(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("Set-Cookie", "stale=1")
	w.Header().Set("Content-Type", "application/octet-stream")

	resp := NewResponse(200).
		WithAddedHeader("Set-Cookie", "foo=bar").
		WithAddedHeader("Set-Cookie", "bar=baz").
		WithHeader("Content-Type", "text/plain")

	if err := Emit(NewHTTPTransport(w), resp); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	if got := w.Header().Values("Set-Cookie"); !reflect.DeepEqual(got, []string{"foo=bar", "bar=baz"}) {
		t.Errorf("Expected [foo=bar bar=baz], got %v", got)
	}
	if got := w.Header().Values("Content-Type"); !reflect.DeepEqual(got, []string{"text/plain"}) {
		t.Errorf("Expected [text/plain], got %v", got)
	}
}

func TestHTTPTransportReportsDirectWriteLocation(t *testing.T) {
	w := httptest.NewRecorder()
	tr := NewHTTPTransport(w)

	fmt.Fprint(tr, "oops")

	err := Emit(tr, NewTextResponse(200, "Content!"))
	if !IsPrematureOutput(err) {
		t.Fatalf("Expected premature output error, got %v", err)
	}

	var emitErr *Error
	errors.As(err, &emitErr)
	if !strings.HasSuffix(emitErr.File, "rwriter_test.go") || emitErr.Line == 0 {
		t.Errorf("Expected location in rwriter_test.go, got %s:%d", emitErr.File, emitErr.Line)
	}
	if w.Body.String() != "oops" {
		t.Errorf("Emission must not add output, got %q", w.Body.String())
	}
}

func TestHTTPTransportDirectWriteHeaderCommits(t *testing.T) {
	tr := NewHTTPTransport(httptest.NewRecorder())
	tr.WriteHeader(http.StatusTeapot)

	committed, file, _ := tr.HeadersAlreadyCommitted()
	if !committed || !strings.HasSuffix(file, "rwriter_test.go") {
		t.Errorf("Expected commit recorded in this file, got %v %q", committed, file)
	}
	if tr.Status != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", tr.Status)
	}
}

func TestHTTPTransportBufferLayers(t *testing.T) {
	w := httptest.NewRecorder()
	tr := NewHTTPTransport(w)
	tr.PushBufferLayer()

	if err := Emit(tr, NewTextResponse(200, "Content!")); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	if w.Body.Len() != 0 {
		t.Errorf("Body should be held in the layer, got %q", w.Body.String())
	}
	if string(tr.BufferContents()) != "Content!" {
		t.Errorf("Expected layer 'Content!', got %q", tr.BufferContents())
	}

	if err := DrainBuffers(tr, 0, true); err != nil {
		t.Fatalf("DrainBuffers failed: %v", err)
	}
	if w.Body.String() != "Content!" {
		t.Errorf("Expected flushed body 'Content!', got %q", w.Body.String())
	}
	if committed, _, _ := tr.HeadersAlreadyCommitted(); !committed {
		t.Error("Expected the emitted head to count as committed")
	}
}

func TestHTTPTransportSecondEmissionIsPremature(t *testing.T) {
	w := httptest.NewRecorder()
	tr := NewHTTPTransport(w)
	if err := Emit(tr, NewTextResponse(http.StatusOK, "first")); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	err := Emit(tr, NewTextResponse(http.StatusNotFound, "second").WithHeader("X-Late", "1"))

	if !IsPrematureOutput(err) {
		t.Fatalf("Expected premature output error, got %v", err)
	}
	var emitErr *Error
	errors.As(err, &emitErr)
	if !strings.HasSuffix(emitErr.File, "rwriter_test.go") {
		t.Errorf("Expected location in rwriter_test.go, got %s:%d", emitErr.File, emitErr.Line)
	}
	if w.Code != http.StatusOK || w.Body.String() != "first" || w.Header().Get("X-Late") != "" {
		t.Errorf("Second emission leaked: code %d body %q X-Late %q", w.Code, w.Body.String(), w.Header().Get("X-Late"))
	}
}

func TestHTTPTransportDirectWriteIsCapturedByLayer(t *testing.T) {
	w := httptest.NewRecorder()
	tr := NewHTTPTransport(w)
	tr.PushBufferLayer()

	fmt.Fprint(tr, "debug")

	if committed, _, _ := tr.HeadersAlreadyCommitted(); committed {
		t.Fatal("Captured output must not commit the response")
	}
	if err := Emit(tr, NewTextResponse(http.StatusCreated, "Content!")); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	if got := string(tr.BufferContents()); got != "debugContent!" {
		t.Errorf("Expected layer 'debugContent!', got %q", got)
	}
	if w.Code != http.StatusCreated || w.Body.Len() != 0 {
		t.Errorf("Expected status 201 and nothing on the wire, got %d %q", w.Code, w.Body.String())
	}
}

func TestHTTPTransportLayerFlushCommitsAtPopSite(t *testing.T) {
	w := httptest.NewRecorder()
	tr := NewHTTPTransport(w)
	tr.PushBufferLayer()
	fmt.Fprint(tr, "early")

	if err := tr.PopBufferLayer(true); err != nil {
		t.Fatalf("PopBufferLayer failed: %v", err)
	}

	committed, file, _ := tr.HeadersAlreadyCommitted()
	if !committed || !strings.HasSuffix(file, "rwriter_test.go") {
		t.Errorf("Expected commit recorded in this file, got %v %q", committed, file)
	}
	if w.Body.String() != "early" {
		t.Errorf("Expected 'early' on the wire, got %q", w.Body.String())
	}
}

func TestHTTPTransportRejectsMalformedHeaderLine(t *testing.T) {
	tr := NewHTTPTransport(httptest.NewRecorder())
	if err := tr.WriteHeaderLine("not a header", true, 200); !Is(err, ErrInvalidLine) {
		t.Errorf("Expected ErrInvalidLine, got %v", err)
	}
}

func TestHTTPTransportPushNotSupported(t *testing.T) {
	tr := NewHTTPTransport(httptest.NewRecorder())
	if err := tr.Push("/style.css", nil); err != http.ErrNotSupported {
		t.Errorf("Expected http.ErrNotSupported, got %v", err)
	}
	if _, _, err := tr.Hijack(); err == nil {
		t.Error("Expected Hijack to fail on a recorder")
	}
}
