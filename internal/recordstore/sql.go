package recordstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/urocare/clinic/internal/metrics"
	"github.com/urocare/clinic/internal/model"
)

// SQLStore keeps both tables in MySQL for self-hosted deployments and local
// development. Access tokens are ignored; the admin gate runs before any call.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Insert assigns a UUID and lets the database set created_at.
func (s *SQLStore) Insert(ctx context.Context, table model.Table, sub model.NewSubmission) error {
	var q string
	switch table {
	case model.TableBookings:
		q = `
		INSERT INTO booking_requests
		    (id, full_name, mobile, address, message, status)
		VALUES
		    (?,  ?,         ?,      ?,       ?,       'pending')
	`
	case model.TableMessages:
		q = `
		INSERT INTO contact_messages
		    (id, full_name, mobile, address, message, is_read)
		VALUES
		    (?,  ?,         ?,      ?,       ?,       FALSE)
	`
	default:
		return s.fail(table, "insert", fmt.Errorf("unknown table %q", table))
	}

	_, err := s.db.ExecContext(ctx, q, uuid.NewString(), sub.FullName, sub.Mobile, sub.Address, sub.Message)
	return s.result(table, "insert", err)
}

func (s *SQLStore) ListBookings(ctx context.Context, _ string) ([]model.BookingRequest, error) {
	var rows []model.BookingRequest
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, full_name, mobile, address, message, status, created_at
		  FROM booking_requests
		 ORDER BY created_at DESC
	`)
	if err := s.result(model.TableBookings, "list", err); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SQLStore) ListMessages(ctx context.Context, _ string) ([]model.ContactMessage, error) {
	var rows []model.ContactMessage
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, full_name, mobile, address, message, is_read, created_at
		  FROM contact_messages
		 ORDER BY created_at DESC
	`)
	if err := s.result(model.TableMessages, "list", err); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SQLStore) Update(ctx context.Context, _ string, table model.Table, id string, u Update) error {
	q, args, err := updateStatement(table, id, u)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return s.result(table, "patch", err)
}

// Delete of a missing id succeeds, as the PostgREST filter delete does.
func (s *SQLStore) Delete(ctx context.Context, _ string, table model.Table, id string) error {
	var q string
	switch table {
	case model.TableBookings:
		q = `DELETE FROM booking_requests WHERE id = ?`
	case model.TableMessages:
		q = `DELETE FROM contact_messages WHERE id = ?`
	default:
		return s.fail(table, "delete", fmt.Errorf("unknown table %q", table))
	}
	_, err := s.db.ExecContext(ctx, q, id)
	return s.result(table, "delete", err)
}

// updateStatement builds the UPDATE for the single mutable column of table.
func updateStatement(table model.Table, id string, u Update) (string, []any, error) {
	switch {
	case table == model.TableBookings && u.Status != nil:
		if !u.Status.Valid() {
			return "", nil, fmt.Errorf("invalid booking status %q", *u.Status)
		}
		return `UPDATE booking_requests SET status = ? WHERE id = ?`, []any{u.Status.String(), id}, nil
	case table == model.TableMessages && u.IsRead != nil:
		return `UPDATE contact_messages SET is_read = ? WHERE id = ?`, []any{*u.IsRead, id}, nil
	default:
		return "", nil, ErrEmptyUpdate
	}
}

func (s *SQLStore) result(table model.Table, op string, err error) error {
	if err != nil {
		return s.fail(table, op, err)
	}
	metrics.RecordStoreRequests.WithLabelValues(table.String(), op, "ok").Inc()
	return nil
}

func (s *SQLStore) fail(table model.Table, op string, err error) error {
	metrics.RecordStoreRequests.WithLabelValues(table.String(), op, "error").Inc()
	return &RemoteError{Table: table, Op: op, Err: err}
}
