package dispatcher

import (
	"time"

	"github.com/urocare/clinic/internal/i18n"
	"github.com/urocare/clinic/internal/model"
)

// Alert tells clinic staff that a visitor submitted the public form.
type Alert struct {
	EventID  string    `json:"event_id"`
	Kind     string    `json:"kind"` // booking | message
	Title    string    `json:"title"`
	FullName string    `json:"full_name"`
	Mobile   string    `json:"mobile"`
	Address  string    `json:"address"`
	Message  string    `json:"message,omitempty"`
	At       time.Time `json:"at"`
}

// FromEvent builds the staff alert for a stored submission.
func FromEvent(ev model.IntakeEvent, lang i18n.Lang) Alert {
	kind, key := "message", i18n.AlertNewMessage
	if ev.Table == model.TableBookings {
		kind, key = "booking", i18n.AlertNewBooking
	}

	a := Alert{
		EventID:  ev.ID,
		Kind:     kind,
		Title:    i18n.T(lang, key),
		FullName: ev.Submission.FullName,
		Mobile:   ev.Submission.Mobile,
		Address:  ev.Submission.Address,
		At:       ev.At,
	}
	if ev.Submission.Message != nil {
		a.Message = *ev.Submission.Message
	}
	return a
}
