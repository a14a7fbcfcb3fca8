// internal/model/call.go
package model

import "time"

// Call statuses. A call starts as initiated and is moved to a terminal
// status by the engine's status callback.
const (
	CallInitiated = "initiated"
	CallCompleted = "completed"
	CallHangup    = "hangup"
	CallFailed    = "failed"
)

type Call struct {
	ID          int        `db:"id" json:"-"`
	CallID      string     `db:"call_id" json:"call_id"`
	PhoneNumber string     `db:"phone_number" json:"phone_number"`
	Direction   string     `db:"direction" json:"direction"`
	Status      string     `db:"status" json:"status"`
	AudioFile   string     `db:"audio_file" json:"audio_file,omitempty"`
	CallerID    *string    `db:"caller_id" json:"caller_id,omitempty"`
	GroupName   *string    `db:"group_name" json:"group_name,omitempty"`
	BroadcastID *string    `db:"broadcast_id" json:"broadcast_id,omitempty"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	EndedAt     *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	Duration    *int       `db:"duration" json:"duration,omitempty"`
}
