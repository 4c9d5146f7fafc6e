package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvcrn/go-mal/auth"
	"github.com/dvcrn/go-mal/mal"
)

// Server is an authenticated pass-through proxy for the v2 API. It
// forwards requests through the client, which handles bearer
// injection, token refresh, and the 401 retry policy.
type Server struct {
	client *mal.Client
	mux    *http.ServeMux
	logger zerolog.Logger
}

func New(logger zerolog.Logger, client *mal.Client) *Server {
	s := &Server{
		client: client,
		mux:    http.NewServeMux(),
		logger: logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/v2/", s.apiHandler)
	s.mux.HandleFunc("/health", s.healthHandler)
	s.mux.HandleFunc("/", s.notFoundHandler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.loggingMiddleware(s.mux).ServeHTTP(w, r)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("Incoming request")
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Dur("duration", time.Since(start)).
			Msg("Finished request")
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn().
		Str("method", r.Method).
		Str("uri", r.RequestURI).
		Str("remote_addr", r.RemoteAddr).
		Msg("Unhandled route")
	http.NotFound(w, r)
}

func (s *Server) apiHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v2")
	if path == "" {
		path = "/"
	}
	ctx := r.Context()

	var body json.RawMessage
	var err error
	switch r.Method {
	case http.MethodGet:
		body, err = s.client.Get(ctx, path, r.URL.Query())
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		if perr := r.ParseForm(); perr != nil {
			http.Error(w, "Failed to parse form body", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodPost:
			body, err = s.client.Post(ctx, path, r.PostForm)
		case http.MethodPatch:
			body, err = s.client.Patch(ctx, path, r.PostForm)
		default:
			body, err = s.client.Put(ctx, path, r.PostForm)
		}
	case http.MethodDelete:
		body, err = s.client.Delete(ctx, path, nil)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err != nil {
		s.writeError(w, path, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, path string, err error) {
	var apiErr *mal.APIError
	if errors.As(err, &apiErr) {
		s.logger.Warn().
			Int("status_code", apiErr.StatusCode).
			Str("path", path).
			Msg("Upstream API error")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(apiErr.StatusCode)
		w.Write(apiErr.Body)
		return
	}

	var authErr *auth.AuthenticationError
	if errors.As(err, &authErr) {
		s.logger.Error().Err(err).Msg("No usable token for upstream request")
		http.Error(w, authErr.Error(), http.StatusUnauthorized)
		return
	}

	var confErr *auth.ConfigurationError
	if errors.As(err, &confErr) {
		s.logger.Error().Err(err).Msg("Proxy is misconfigured")
		http.Error(w, confErr.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Error().Err(err).Str("path", path).Msg("Error forwarding request to upstream API")
	http.Error(w, "Failed to communicate with upstream API: "+err.Error(), http.StatusBadGateway)
}
