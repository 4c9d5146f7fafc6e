package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dvcrn/go-mal/auth"
)

// dispatchState records how the access token for an outbound call was
// obtained. A call that already went through a refresh must never
// trigger another one.
type dispatchState int

const (
	// stateDirect: access token was present and used as-is
	stateDirect dispatchState = iota
	// stateRefreshed: access token was just minted from the refresh token
	stateRefreshed
)

// Get performs an authenticated GET. params may be nil, a Params map,
// url.Values, or a struct with `url` tags.
func (c *Client) Get(ctx context.Context, path string, params any) (json.RawMessage, error) {
	return c.read(ctx, http.MethodGet, path, params)
}

// Post performs an authenticated POST with a form-encoded body.
func (c *Client) Post(ctx context.Context, path string, form any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPost, path, form)
}

// Patch performs an authenticated PATCH with a form-encoded body.
func (c *Client) Patch(ctx context.Context, path string, form any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPatch, path, form)
}

// Put performs an authenticated PUT with a form-encoded body.
func (c *Client) Put(ctx context.Context, path string, form any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPut, path, form)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, form any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodDelete, path, form)
}

// read dispatches a GET with the 401 refresh policy: at most one
// refresh retry, and a 401 that cannot be retried is surfaced as the
// response body rather than an error.
func (c *Client) read(ctx context.Context, method, path string, params any) (json.RawMessage, error) {
	q, err := queryValues(params)
	if err != nil {
		return nil, err
	}

	state, token, err := c.preflight(ctx)
	if err != nil {
		return nil, err
	}
	viaRefresh := state == stateRefreshed

	// viaRefresh is the loop state bounding this at one extra attempt:
	// every branch of the second pass returns.
	for {
		resp, err := c.transport.Do(ctx, c.baseURL, Request{
			Method:  method,
			Path:    path,
			Query:   q,
			Headers: bearerHeader(token),
		})
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			pair, serr := c.store.Get()
			if serr != nil {
				return nil, fmt.Errorf("failed to read token store: %w", serr)
			}
			if viaRefresh || pair.RefreshToken == "" {
				// The unauthorized body is surfaced to the caller as
				// data; a further refresh would not help here.
				return resp.Body, nil
			}

			if c.logger != nil {
				c.logger.Warn().Str("path", path).Msg("Received 401 Unauthorized, refreshing and retrying once")
			}
			if err := c.store.ClearAccessToken(); err != nil {
				return nil, fmt.Errorf("failed to clear access token: %w", err)
			}
			if _, token, err = c.preflight(ctx); err != nil {
				return nil, err
			}
			viaRefresh = true
			continue
		}

		if !isSuccess(resp.StatusCode) {
			return nil, newAPIError(resp)
		}
		return resp.Body, nil
	}
}

// write dispatches a mutating verb. Write verbs run preflight and
// dispatch exactly once; a 401 here is an error, not a refresh
// trigger.
func (c *Client) write(ctx context.Context, method, path string, form any) (json.RawMessage, error) {
	f, err := queryValues(form)
	if err != nil {
		return nil, err
	}

	_, token, err := c.preflight(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, c.baseURL, Request{
		Method:  method,
		Path:    path,
		Form:    f,
		Headers: bearerHeader(token),
	})
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, newAPIError(resp)
	}
	return resp.Body, nil
}

// preflight ensures an access token is available before dispatch,
// refreshing when necessary.
func (c *Client) preflight(ctx context.Context) (dispatchState, string, error) {
	pair, err := c.store.Get()
	if err != nil {
		return stateDirect, "", fmt.Errorf("failed to read token store: %w", err)
	}
	if pair.AccessToken != "" {
		return stateDirect, pair.AccessToken, nil
	}
	if !c.autoRefresh {
		return stateDirect, "", &auth.AuthenticationError{Reason: "access token required and auto-refresh is disabled"}
	}
	if pair.RefreshToken == "" {
		return stateDirect, "", &auth.AuthenticationError{Reason: "no access or refresh token available"}
	}

	res, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.auth.ExchangeRefreshToken(ctx, "")
	})
	if err != nil {
		return stateDirect, "", err
	}
	return stateRefreshed, res.(*auth.TokenResponse).AccessToken, nil
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
