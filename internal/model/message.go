package model

import "time"

// ContactMessage is a row of contact_messages. Only IsRead changes after
// creation, and only from false to true.
type ContactMessage struct {
	ID        string    `json:"id"         db:"id"`
	FullName  string    `json:"full_name"  db:"full_name"`
	Mobile    string    `json:"mobile"     db:"mobile"`
	Address   string    `json:"address"    db:"address"`
	Message   *string   `json:"message"    db:"message"` // nullable
	IsRead    bool      `json:"is_read"    db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
