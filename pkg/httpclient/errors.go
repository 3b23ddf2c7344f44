package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// maxErrorBody bounds how much of an error body is kept in the message.
const maxErrorBody = 1 << 16

// NetworkError is returned for any non-2xx response from an upstream
// endpoint. It is never retried.
type NetworkError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += " " + e.Body
	}
	return msg
}

// Unwrap lets errors.Is match apperrors.ErrUpstream.
func (e *NetworkError) Unwrap() error {
	return apperrors.ErrUpstream
}

// ParseResponseError reads and closes the body of a non-2xx response and
// returns it as a *NetworkError. An unreadable body yields an empty body text.
func ParseResponseError(resp *http.Response, method, path string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}

	return &NetworkError{
		Method: method,
		Path:   path,
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
