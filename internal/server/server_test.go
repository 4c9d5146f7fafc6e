package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvcrn/go-mal/mal"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc) *Server {
	t.Helper()
	api := httptest.NewServer(upstream)
	t.Cleanup(api.Close)

	client, err := mal.New(mal.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		AccessToken:  "access-token",
		APIBaseURL:   api.URL,
	})
	require.NoError(t, err)

	return New(zerolog.Nop(), client)
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestProxyForwardsGet(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "monogatari", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":[]}`))
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2/anime?q=monogatari", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestProxyForwardsPatchForm(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "8", r.PostForm.Get("score"))
		w.Write([]byte(`{"score":8}`))
	})

	req := httptest.NewRequest(http.MethodPatch, "/v2/anime/1/my_list_status",
		strings.NewReader(url.Values{"score": []string{"8"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"score":8}`, rec.Body.String())
}

func TestProxyPassesUpstreamErrorThrough(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found","message":"anime does not exist"}`))
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2/anime/0", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"anime does not exist"}`, rec.Body.String())
}

func TestUnhandledRoute(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/other", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
