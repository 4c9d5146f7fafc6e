package mal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "monogatari", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Do(context.Background(), ts.URL, Request{
		Method:  http.MethodGet,
		Path:    "/anime",
		Query:   url.Values{"q": []string{"monogatari"}},
		Headers: map[string]string{"Authorization": "Bearer token"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
}

func TestHTTPTransportPostForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "8", r.PostForm.Get("score"))
		w.Write([]byte(`{"score":8}`))
	}))
	defer ts.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Do(context.Background(), ts.URL, Request{
		Method: http.MethodPost,
		Path:   "/anime/1/my_list_status",
		Form:   url.Values{"score": []string{"8"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPTransportReturnsErrorStatusAsResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer ts.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Do(context.Background(), ts.URL, Request{Method: http.MethodGet, Path: "/anime"})
	require.NoError(t, err, "non-2xx statuses are responses, not transport errors")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid_token"}`, string(resp.Body))
}
