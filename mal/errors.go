package mal

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx API response, other than a 401 the dispatcher
// resolves itself by refreshing. It is propagated to the caller unchanged.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
	Body       json.RawMessage
}

func (ae *APIError) Error() string {
	if ae.Name != "" && ae.Message != "" {
		return fmt.Sprintf("api request failed (HTTP %d): %s: %s", ae.StatusCode, ae.Name, ae.Message)
	}
	if ae.Name != "" {
		return fmt.Sprintf("api request failed (HTTP %d): %s", ae.StatusCode, ae.Name)
	}
	return fmt.Sprintf("api request failed (HTTP %d)", ae.StatusCode)
}

type errorBody struct {
	Name    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func newAPIError(resp *Response) error {
	ae := &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	var eb errorBody
	if err := json.Unmarshal(resp.Body, &eb); err == nil {
		ae.Name = eb.Name
		ae.Message = eb.Message
	}
	return ae
}
