package main

import (
	"flag"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/coffyg/emit"
	"github.com/rs/zerolog"
)

type User struct {
	ID    int    `json:"id" form:"id"`
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
}

var users = []User{
	{ID: 1, Name: "John Doe", Email: "john@example.com"},
	{ID: 2, Name: "Jane Smith", Email: "jane@example.com"},
}

func route(req *http.Request) (*emit.Response, error) {
	switch {
	case req.URL.Path == "/":
		return emit.NewTextResponse(http.StatusOK, "emit test server\n"), nil

	case req.URL.Path == "/health":
		return emit.NewJSONResponse(http.StatusOK, map[string]string{"status": "healthy"}), nil

	case req.URL.Path == "/api/v1/users":
		return emit.NewResultResponse(users, nil), nil

	case req.URL.Path == "/api/v1/users.form":
		return emit.NewFormResponse(http.StatusOK, users[0])

	case req.URL.Path == "/api/v1/jobs" && req.Method == http.MethodPost:
		// 202 with Location stays a 202
		return emit.NewRedirectResponse(http.StatusAccepted, "/api/v1/jobs/12345678").
			WithHeader(emit.HeaderContentType, emit.ContentTypePlain).
			WithBody(emit.NewStringStream("queued\n")), nil

	case req.URL.Path == "/login":
		return emit.NewTextResponse(http.StatusOK, "logged in\n").
			WithAddedHeader(emit.HeaderSetCookie, "session=abc123; Path=/; HttpOnly").
			WithAddedHeader(emit.HeaderSetCookie, "theme=dark; Path=/"), nil

	case req.URL.Path == "/stream":
		// unknown size, no Content-Length
		return emit.NewResponse(http.StatusOK).
			WithHeader(emit.HeaderContentType, emit.ContentTypePlain).
			WithBody(emit.NewReaderStream(strings.NewReader(strings.Repeat("tick\n", 10)))), nil

	case strings.HasPrefix(req.URL.Path, "/old"):
		return emit.NewRedirectResponse(http.StatusMovedPermanently, "/"), nil
	}
	return emit.NewErrorResponse("err_not_found", nil), nil
}

func main() {
	addr := flag.String("addr", ":8056", "listen address")
	raw := flag.Bool("raw", false, "serve raw HTTP/1.1 over TCP instead of net/http")
	flag.Parse()

	if port := os.Getenv("PORT"); port != "" {
		*addr = ":" + port
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	emit.SetupEmitLogger(&log)

	config := emit.DefaultHandlerConfig

	if !*raw {
		log.Info().Str("addr", *addr).Msg("Starting emit test server")
		if err := http.ListenAndServe(*addr, emit.Handler(route, config)); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatal().Err(err).Msg("listen failed")
	}
	log.Info().Str("addr", *addr).Msg("Starting emit raw test server")
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error().Err(err).Msg("accept failed")
			continue
		}
		go func() {
			if err := emit.ServeConn(conn, route, config); err != nil {
				emit.LogError(&log, err)
			}
		}()
	}
}
