// internal/model/group.go
package model

import "time"

type ContactGroup struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CallerID    *string   `db:"caller_id" json:"caller_id,omitempty"`
	MemberCount int       `db:"member_count" json:"member_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
