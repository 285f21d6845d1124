package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBookingStatus_Valid(t *testing.T) {
	assert.True(t, BookingCompleted.Valid())
	assert.False(t, BookingStatus("archived").Valid())
}

func TestParseTable(t *testing.T) {
	tb, ok := ParseTable(" contact_messages ")
	assert.True(t, ok)
	assert.Equal(t, TableMessages, tb)

	_, ok = ParseTable("users")
	assert.False(t, ok)
}
