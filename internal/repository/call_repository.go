package repository

import (
	"database/sql"
	"time"

	"github.com/redwoodtel/callwave-backend/internal/model"
)

type CallRepositoryInterface interface {
	Create(c *model.Call) error
	GetByCallID(callID string) (*model.Call, error)
	ListRecent(limit int) ([]*model.Call, error)

	// MarkEnded sets the terminal status and ended_at. withDuration also
	// derives duration from started_at; only completed calls get one.
	MarkEnded(callID, status string, withDuration bool) error
}

type CallRepository struct {
	DB *sql.DB
}

func (r *CallRepository) Create(c *model.Call) error {
	c.StartedAt = time.Now()
	if c.Direction == "" {
		c.Direction = "outbound"
	}
	if c.Status == "" {
		c.Status = model.CallInitiated
	}
	query := `
        INSERT INTO call_history (call_id, phone_number, direction, status, audio_file, caller_id, group_name, broadcast_id, started_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.CallID, c.PhoneNumber, c.Direction, c.Status, c.AudioFile,
		c.CallerID, c.GroupName, c.BroadcastID, c.StartedAt,
	).Scan(&c.ID)
}

func (r *CallRepository) GetByCallID(callID string) (*model.Call, error) {
	query := `
        SELECT id, call_id, phone_number, direction, status, audio_file, caller_id, group_name, broadcast_id, started_at, ended_at, duration
        FROM call_history
        WHERE call_id=$1
    `
	var c model.Call
	err := r.DB.QueryRow(query, callID).Scan(
		&c.ID, &c.CallID, &c.PhoneNumber, &c.Direction, &c.Status, &c.AudioFile,
		&c.CallerID, &c.GroupName, &c.BroadcastID, &c.StartedAt, &c.EndedAt, &c.Duration,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

func (r *CallRepository) ListRecent(limit int) ([]*model.Call, error) {
	query := `
        SELECT id, call_id, phone_number, direction, status, audio_file, caller_id, group_name, broadcast_id, started_at, ended_at, duration
        FROM call_history
        ORDER BY started_at DESC
        LIMIT $1
    `
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := []*model.Call{}
	for rows.Next() {
		c := &model.Call{}
		if err := rows.Scan(
			&c.ID, &c.CallID, &c.PhoneNumber, &c.Direction, &c.Status, &c.AudioFile,
			&c.CallerID, &c.GroupName, &c.BroadcastID, &c.StartedAt, &c.EndedAt, &c.Duration,
		); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

func (r *CallRepository) MarkEnded(callID, status string, withDuration bool) error {
	if withDuration {
		query := `
            UPDATE call_history
            SET status=$1, ended_at=NOW(),
                duration=EXTRACT(EPOCH FROM (NOW() - started_at))::INTEGER
            WHERE call_id=$2
        `
		_, err := r.DB.Exec(query, status, callID)
		return err
	}

	query := `UPDATE call_history SET status=$1, ended_at=NOW() WHERE call_id=$2`
	_, err := r.DB.Exec(query, status, callID)
	return err
}

var _ CallRepositoryInterface = (*CallRepository)(nil)
