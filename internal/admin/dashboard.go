// Package admin implements the admin dashboard workflow: the auth gate,
// loading both record collections and per-record mutations.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/urocare/clinic/internal/auth"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/metrics"
	"github.com/urocare/clinic/internal/model"
	"github.com/urocare/clinic/internal/notice"
	"github.com/urocare/clinic/internal/recordstore"
	"go.uber.org/zap"
)

type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unauthenticated"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

var (
	ErrNotAuthorized     = errors.New("dashboard is not authorized")
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store is the part of the record store the dashboard uses.
type Store interface {
	ListBookings(ctx context.Context, token string) ([]model.BookingRequest, error)
	ListMessages(ctx context.Context, token string) ([]model.ContactMessage, error)
	Update(ctx context.Context, token string, table model.Table, id string, u recordstore.Update) error
	Delete(ctx context.Context, token string, table model.Table, id string) error
}

type Option func(*Dashboard)

// WithLocation sets the zone used to format record timestamps.
func WithLocation(loc *time.Location) Option {
	return func(d *Dashboard) { d.loc = loc }
}

// Dashboard is the state of one admin's dashboard. Every mutation is followed
// by a full re-fetch of both collections; nothing is patched locally.
type Dashboard struct {
	store Store
	gate  auth.Gate
	role  string
	loc   *time.Location
	notes notice.Buffer

	mu       sync.Mutex
	phase    Phase
	session  auth.Session
	bookings []model.BookingRequest
	messages []model.ContactMessage
	inflight int
	issued   uint64 // sequence of the newest fetch
}

func New(store Store, gate auth.Gate, role string, opts ...Option) *Dashboard {
	d := &Dashboard{
		store: store,
		gate:  gate,
		role:  role,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enter runs the admin gate for token. Only an Authorized result moves the
// dashboard to loading and fetches data; every other result leaves it
// unauthenticated without touching the record store.
func (d *Dashboard) Enter(ctx context.Context, token string) auth.AuthorizationResult {
	res := auth.Authorize(ctx, d.gate, token, d.role)

	a, ok := res.(auth.Authorized)
	if !ok {
		d.reset()
		metrics.AdminActions.WithLabelValues("enter", "denied").Inc()
		return res
	}

	d.mu.Lock()
	d.session = a.Session
	d.phase = PhaseLoading
	d.mu.Unlock()

	metrics.AdminActions.WithLabelValues("enter", "ok").Inc()
	_ = d.Refresh(ctx)
	return res
}

// Refresh fetches both collections. A response is applied only when it
// belongs to the newest fetch, so a slow stale fetch cannot overwrite
// fresher data. A non-2xx answer leaves that collection as it was; a
// transport failure leaves both as they were and raises one notice.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.phase == PhaseUnauthenticated {
		d.mu.Unlock()
		return ErrNotAuthorized
	}
	d.issued++
	seq := d.issued
	token := d.session.AccessToken
	d.inflight++
	d.mu.Unlock()

	var (
		wg       sync.WaitGroup
		bookings []model.BookingRequest
		messages []model.ContactMessage
		bErr     error
		mErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		bookings, bErr = d.store.ListBookings(ctx, token)
	}()
	go func() {
		defer wg.Done()
		messages, mErr = d.store.ListMessages(ctx, token)
	}()
	wg.Wait()

	transport := (bErr != nil && recordstore.IsTransport(bErr)) || (mErr != nil && recordstore.IsTransport(mErr))

	d.mu.Lock()
	d.inflight--
	latest := seq == d.issued
	if latest && !transport {
		if bErr == nil {
			d.bookings = bookings
		}
		if mErr == nil {
			d.messages = messages
		}
	}
	if d.phase == PhaseLoading {
		d.phase = PhaseReady
	}
	d.mu.Unlock()

	if !latest {
		logger.Log.Debug("discarded stale fetch", zap.Uint64("seq", seq))
	}
	if transport && latest {
		d.notes.Notify(notice.Notice{Level: notice.Error, Title: "Error", Description: "Failed to fetch data."})
	}
	return errors.Join(bErr, mErr)
}

func (d *Dashboard) ConfirmBooking(ctx context.Context, id string) error {
	return d.setStatus(ctx, "confirm", id, model.BookingConfirmed)
}

func (d *Dashboard) CompleteBooking(ctx context.Context, id string) error {
	return d.setStatus(ctx, "complete", id, model.BookingCompleted)
}

func (d *Dashboard) CancelBooking(ctx context.Context, id string) error {
	return d.setStatus(ctx, "cancel", id, model.BookingCancelled)
}

func (d *Dashboard) setStatus(ctx context.Context, action, id string, next model.BookingStatus) error {
	token, err := d.token()
	if err != nil {
		return err
	}

	d.mu.Lock()
	cur, found := findBooking(d.bookings, id)
	d.mu.Unlock()
	if !found {
		return fmt.Errorf("booking %s: %w", id, ErrRecordNotFound)
	}
	if !cur.Status.CanTransitionTo(next) {
		return fmt.Errorf("booking %s %s -> %s: %w", id, cur.Status, next, ErrInvalidTransition)
	}

	err = d.store.Update(ctx, token, model.TableBookings, id, recordstore.StatusUpdate(next))
	d.report(action, err, "Booking status updated.", "Failed to update status.", true)
	_ = d.Refresh(ctx)
	return err
}

// DeleteBooking removes the booking whatever its status.
func (d *Dashboard) DeleteBooking(ctx context.Context, id string) error {
	token, err := d.token()
	if err != nil {
		return err
	}

	err = d.store.Delete(ctx, token, model.TableBookings, id)
	d.report("delete_booking", err, "Booking deleted successfully.", "Failed to delete.", true)
	_ = d.Refresh(ctx)
	return err
}

// MarkMessageRead sets is_read once. A message already read is left alone
// without a request. Failures raise no notice.
func (d *Dashboard) MarkMessageRead(ctx context.Context, id string) error {
	token, err := d.token()
	if err != nil {
		return err
	}

	d.mu.Lock()
	cur, found := findMessage(d.messages, id)
	d.mu.Unlock()
	if !found {
		return fmt.Errorf("message %s: %w", id, ErrRecordNotFound)
	}
	if cur.IsRead {
		return nil
	}

	err = d.store.Update(ctx, token, model.TableMessages, id, recordstore.ReadUpdate())
	d.report("mark_read", err, "", "", false)
	_ = d.Refresh(ctx)
	return err
}

func (d *Dashboard) DeleteMessage(ctx context.Context, id string) error {
	token, err := d.token()
	if err != nil {
		return err
	}

	err = d.store.Delete(ctx, token, model.TableMessages, id)
	d.report("delete_message", err, "Message deleted successfully.", "Failed to delete.", true)
	_ = d.Refresh(ctx)
	return err
}

// Logout signs the session out and drops all loaded data.
func (d *Dashboard) Logout(ctx context.Context) {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()

	if s.AccessToken != "" {
		if err := d.gate.SignOut(ctx, s); err != nil {
			logger.Log.Warn("admin sign out failed", zap.String("user_id", s.UserID), zap.Error(err))
		}
	}
	d.reset()
	metrics.AdminActions.WithLabelValues("logout", "ok").Inc()
}

// DrainNotices returns the notices raised since the last call.
func (d *Dashboard) DrainNotices() []notice.Notice { return d.notes.Drain() }

func (d *Dashboard) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *Dashboard) Session() auth.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

func (d *Dashboard) token() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase == PhaseUnauthenticated {
		return "", ErrNotAuthorized
	}
	return d.session.AccessToken, nil
}

func (d *Dashboard) reset() {
	d.mu.Lock()
	d.phase = PhaseUnauthenticated
	d.session = auth.Session{}
	d.bookings = nil
	d.messages = nil
	d.mu.Unlock()
}

func (d *Dashboard) report(action string, err error, okText, failText string, loud bool) {
	if err != nil {
		metrics.AdminActions.WithLabelValues(action, "error").Inc()
		logger.Log.Warn("admin action failed", zap.String("action", action), zap.Error(err))
		if loud {
			d.notes.Notify(notice.Notice{Level: notice.Error, Title: "Error", Description: failText})
		}
		return
	}
	metrics.AdminActions.WithLabelValues(action, "ok").Inc()
	if loud {
		title := "Success"
		if action == "delete_booking" || action == "delete_message" {
			title = "Deleted"
		}
		d.notes.Notify(notice.Notice{Level: notice.Success, Title: title, Description: okText})
	}
}

func findBooking(list []model.BookingRequest, id string) (model.BookingRequest, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return model.BookingRequest{}, false
}

func findMessage(list []model.ContactMessage, id string) (model.ContactMessage, bool) {
	for _, m := range list {
		if m.ID == id {
			return m, true
		}
	}
	return model.ContactMessage{}, false
}
