// Package recordstore talks to the backend that holds booking_requests and
// contact_messages: a hosted PostgREST service, or MySQL for self-hosting.
package recordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/urocare/clinic/internal/model"
)

// Store is the record store surface used by the intake form and the admin
// dashboard. token is the admin access token; it is empty for public inserts.
type Store interface {
	Insert(ctx context.Context, table model.Table, sub model.NewSubmission) error
	ListBookings(ctx context.Context, token string) ([]model.BookingRequest, error)
	ListMessages(ctx context.Context, token string) ([]model.ContactMessage, error)
	Update(ctx context.Context, token string, table model.Table, id string, u Update) error
	Delete(ctx context.Context, token string, table model.Table, id string) error
}

// Update carries the only fields that may change after creation.
type Update struct {
	Status *model.BookingStatus `json:"status,omitempty"`
	IsRead *bool                `json:"is_read,omitempty"`
}

func StatusUpdate(s model.BookingStatus) Update { return Update{Status: &s} }

func ReadUpdate() Update {
	read := true
	return Update{IsRead: &read}
}

var (
	ErrRemote      = errors.New("record store request failed")
	ErrBreakerOpen = errors.New("record store circuit open")
	ErrEmptyUpdate = errors.New("empty update")
)

// RemoteError describes a failed call. Status is the HTTP status for
// non-2xx responses and 0 when the request never got a response.
type RemoteError struct {
	Table  model.Table
	Op     string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("record store %s %s: status=%d", e.Op, e.Table, e.Status)
	}
	return fmt.Sprintf("record store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// IsTransport reports whether err is a failure without an HTTP response
// (network error, timeout, open breaker, database error).
func IsTransport(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status == 0
	}
	return err != nil
}
