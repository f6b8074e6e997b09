package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// errorBody covers the common shapes external services use for error
// payloads: {"error": "..."} or {"message": "..."}.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx response and turns it into
// an error that carries the service name, status, and any structured message
// the service returned. The body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var parsed errorBody
	if json.Unmarshal(bodyBytes, &parsed) == nil {
		if parsed.Error != "" {
			return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, parsed.Error)
		}
		if parsed.Message != "" {
			return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, parsed.Message)
		}
	}

	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes))
}

// IsClientError reports whether the status code is a 4xx client error.
// Client errors should not be retried by callers.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
