package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrQuotaExceeded is returned when the provider quota guard blocks a request
// before it is sent.
var ErrQuotaExceeded = errors.New("provider quota exceeded")

// UpstreamError represents a non-success response from the asset provider.
type UpstreamError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}

// errorFromResponse builds an UpstreamError from a non-2xx response,
// preferring the provider's JSON error message over the HTTP status text.
func errorFromResponse(resp *http.Response) *UpstreamError {
	ue := &UpstreamError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ue
	}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		ue.Message = envelope.Error.Message
	}
	return ue
}
