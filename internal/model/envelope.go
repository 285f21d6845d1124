package model

import "time"

// IntakeEvent is published to Kafka after a submission is stored.
type IntakeEvent struct {
	ID         string        `json:"id"` // request ULID
	Table      Table         `json:"table"`
	Submission NewSubmission `json:"submission"`
	At         time.Time     `json:"at"`
}
