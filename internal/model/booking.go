package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) Valid() bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingCompleted || s == BookingCancelled
}

// CanTransitionTo reports whether next is a legal successor of s:
// pending -> confirmed -> completed, and cancelled from pending or confirmed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	default:
		return false
	}
}

// BookingRequest is a row of booking_requests. Only Status changes after creation.
type BookingRequest struct {
	ID        string        `json:"id"         db:"id"`
	FullName  string        `json:"full_name"  db:"full_name"`
	Mobile    string        `json:"mobile"     db:"mobile"`
	Address   string        `json:"address"    db:"address"`
	Message   *string       `json:"message"    db:"message"` // nullable
	Status    BookingStatus `json:"status"     db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
