package model

import "strings"

// Table names a record collection in the record store.
type Table string

const (
	TableBookings Table = "booking_requests"
	TableMessages Table = "contact_messages"
)

func (t Table) String() string { return string(t) }

// ParseTable normalizes input. Returns (value, true) if it names a known table.
func ParseTable(s string) (Table, bool) {
	switch Table(strings.TrimSpace(s)) {
	case TableBookings:
		return TableBookings, true
	case TableMessages:
		return TableMessages, true
	default:
		return "", false
	}
}

// NewSubmission is the create body shared by both tables.
type NewSubmission struct {
	FullName string  `json:"full_name"`
	Mobile   string  `json:"mobile"`
	Address  string  `json:"address"`
	Message  *string `json:"message"`
}
