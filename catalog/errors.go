package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPath is returned for endpoint paths not starting with "/".
	ErrInvalidPath = errors.New("catalog path must start with /")
	// ErrDecode wraps response bodies that are not valid JSON for the target.
	ErrDecode = errors.New("catalog response decode failed")
)

// Error is a non-2xx catalog response. It is never cached and never retried.
type Error struct {
	StatusCode int
	Status     string
	Path       string
}

func (e *Error) Error() string {
	return "catalog request failed: " + e.Status
}

func newError(resp *http.Response, path string) *Error {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &Error{StatusCode: resp.StatusCode, Status: text, Path: path}
}
