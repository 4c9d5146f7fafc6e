package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Request describes a single API call for the transport: a verb, a path
// relative to the base URL, and query or form parameters.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Form    url.Values
	Headers map[string]string
}

// Response carries the status code and raw JSON body of a completed
// call. The transport returns a Response for every status; policy
// decisions about non-2xx statuses belong to the caller.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Transport performs HTTP calls for the dispatcher.
type Transport interface {
	Do(ctx context.Context, baseURL string, req Request) (*Response, error)
}

// HTTPTransport is the default Transport. It is backed by retryablehttp
// so transient network failures and 5xx responses are retried at the
// transport level; 4xx responses are returned untouched, which keeps
// the 401 refresh policy in the dispatcher.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport creates the default retrying HTTP transport.
func NewHTTPTransport() *HTTPTransport {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	rc.HTTPClient.Timeout = 60 * time.Second
	return &HTTPTransport{Client: rc.StandardClient()}
}

func (t *HTTPTransport) Do(ctx context.Context, baseURL string, req Request) (*Response, error) {
	u := strings.TrimSuffix(baseURL, "/") + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build api request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read api response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}

func (t *HTTPTransport) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}
