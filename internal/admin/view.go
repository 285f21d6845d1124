package admin

import (
	"time"

	"github.com/urocare/clinic/internal/model"
)

// DateLayout renders record timestamps as "Mar 1, 2026, 09:00 AM".
const DateLayout = "Jan 2, 2006, 03:04 PM"

type BookingView struct {
	model.BookingRequest
	Created string   `json:"created"`
	Actions []string `json:"actions"`
}

type MessageView struct {
	model.ContactMessage
	Created string `json:"created"`
}

// View is a snapshot of the dashboard for rendering.
type View struct {
	Phase        Phase         `json:"phase"`
	Loading      bool          `json:"loading"`
	Email        string        `json:"email,omitempty"`
	PendingCount int           `json:"pendingCount"`
	UnreadCount  int           `json:"unreadCount"`
	Bookings     []BookingView `json:"bookings"`
	Messages     []MessageView `json:"messages"`
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{
		Phase:    d.phase,
		Loading:  d.phase == PhaseLoading || d.inflight > 0,
		Email:    d.session.Email,
		Bookings: make([]BookingView, 0, len(d.bookings)),
		Messages: make([]MessageView, 0, len(d.messages)),
	}

	for _, b := range d.bookings {
		if b.Status == model.BookingPending {
			v.PendingCount++
		}
		v.Bookings = append(v.Bookings, BookingView{
			BookingRequest: b,
			Created:        formatTime(b.CreatedAt, d.loc),
			Actions:        bookingActions(b.Status),
		})
	}

	for _, m := range d.messages {
		if !m.IsRead {
			v.UnreadCount++
		}
		v.Messages = append(v.Messages, MessageView{
			ContactMessage: m,
			Created:        formatTime(m.CreatedAt, d.loc),
		})
	}

	return v
}

// bookingActions lists what the dashboard offers for a booking in status s.
func bookingActions(s model.BookingStatus) []string {
	actions := make([]string, 0, 3)
	switch s {
	case model.BookingPending:
		actions = append(actions, "confirm")
	case model.BookingConfirmed:
		actions = append(actions, "complete")
	}
	if s.CanTransitionTo(model.BookingCancelled) {
		actions = append(actions, "cancel")
	}
	return append(actions, "delete")
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}
