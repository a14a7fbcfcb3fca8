// internal/model/broadcast.go
package model

import "time"

// Broadcast statuses.
const (
	BroadcastInitiated  = "initiated"
	BroadcastProcessing = "processing"
	BroadcastCompleted  = "completed"
	BroadcastFailed     = "failed"
)

type Broadcast struct {
	ID           int        `db:"id" json:"-"`
	BroadcastID  string     `db:"broadcast_id" json:"broadcast_id"`
	Name         string     `db:"name" json:"name"`
	Status       string     `db:"status" json:"status"`
	TotalNumbers int        `db:"total_numbers" json:"total_numbers"`
	Completed    int        `db:"completed" json:"completed"`
	Failed       int        `db:"failed" json:"failed"`
	InProgress   int        `db:"in_progress" json:"in_progress"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
