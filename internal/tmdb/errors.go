package tmdb

import (
	"errors"
	"fmt"

	"github.com/reelistapp/reelist-server/internal/domain"
)

// Sentinel errors for TMDB API operations.
var (
	ErrNotFound    = errors.New("tmdb: not found")
	ErrRateLimited = errors.New("tmdb: rate limited by server")
	ErrBadRequest  = errors.New("tmdb: bad request")
	ErrServer      = errors.New("tmdb: server error")
	ErrInvalidID   = errors.New("tmdb: invalid id format")
	ErrUnsupported = errors.New("tmdb: unsupported operation")
	ErrNoAPIKey    = errors.New("tmdb: api key not configured")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op        string // Operation: "fetch", "search"
	Namespace domain.Namespace
	ID        string // If applicable
	Err       error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("tmdb %s [%s/%s]: %v", e.Op, e.Namespace, e.ID, e.Err)
	}
	return fmt.Sprintf("tmdb %s [%s]: %v", e.Op, e.Namespace, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op string, ns domain.Namespace, id string, err error) error {
	return &Error{
		Op:        op,
		Namespace: ns,
		ID:        id,
		Err:       err,
	}
}
