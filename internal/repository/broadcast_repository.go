package repository

import (
	"database/sql"
	"sync"
	"time"

	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
	"github.com/redwoodtel/callwave-backend/internal/model"
)

type BroadcastRepositoryInterface interface {
	Create(b *model.Broadcast) error
	GetByBroadcastID(broadcastID string) (*model.Broadcast, error)
	ListRecent(limit int) ([]*model.Broadcast, error)
	UpdateStatus(broadcastID, status string) error
	MarkCompleted(broadcastID string) error

	// Counter updates. Each is a single UPDATE statement; updates for the
	// same broadcast are serialized in-process so concurrent dispatch slots
	// and status callbacks cannot interleave lost writes.
	IncrementInProgress(broadcastID string) error
	IncrementFailed(broadcastID string) error
	ApplyCallCompleted(broadcastID string) error
	ApplyCallFailed(broadcastID string) error
}

type BroadcastRepository struct {
	DB *sql.DB

	// one mutex per broadcast id, created on first use
	locks sync.Map
}

// ====================== Broadcast CRUD ======================

func (r *BroadcastRepository) Create(b *model.Broadcast) error {
	b.CreatedAt = time.Now()
	if b.Status == "" {
		b.Status = model.BroadcastInitiated
	}
	query := `
        INSERT INTO broadcasts (broadcast_id, name, status, total_numbers, completed, failed, in_progress, created_at)
        VALUES ($1, $2, $3, $4, 0, 0, 0, $5)
        RETURNING id
    `
	return r.DB.QueryRow(query, b.BroadcastID, b.Name, b.Status, b.TotalNumbers, b.CreatedAt).Scan(&b.ID)
}

func (r *BroadcastRepository) GetByBroadcastID(broadcastID string) (*model.Broadcast, error) {
	query := `
        SELECT id, broadcast_id, name, status, total_numbers, completed, failed, in_progress, created_at, completed_at
        FROM broadcasts WHERE broadcast_id=$1
    `
	var b model.Broadcast
	err := r.DB.QueryRow(query, broadcastID).Scan(
		&b.ID, &b.BroadcastID, &b.Name, &b.Status, &b.TotalNumbers,
		&b.Completed, &b.Failed, &b.InProgress, &b.CreatedAt, &b.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewBroadcastNotFound(broadcastID)
		}
		return nil, err
	}
	return &b, nil
}

func (r *BroadcastRepository) ListRecent(limit int) ([]*model.Broadcast, error) {
	query := `
        SELECT id, broadcast_id, name, status, total_numbers, completed, failed, in_progress, created_at, completed_at
        FROM broadcasts
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	broadcasts := []*model.Broadcast{}
	for rows.Next() {
		b := &model.Broadcast{}
		if err := rows.Scan(
			&b.ID, &b.BroadcastID, &b.Name, &b.Status, &b.TotalNumbers,
			&b.Completed, &b.Failed, &b.InProgress, &b.CreatedAt, &b.CompletedAt,
		); err != nil {
			return nil, err
		}
		broadcasts = append(broadcasts, b)
	}
	return broadcasts, rows.Err()
}

func (r *BroadcastRepository) UpdateStatus(broadcastID, status string) error {
	query := `UPDATE broadcasts SET status=$1 WHERE broadcast_id=$2`
	_, err := r.DB.Exec(query, status, broadcastID)
	return err
}

func (r *BroadcastRepository) MarkCompleted(broadcastID string) error {
	query := `UPDATE broadcasts SET status=$1, completed_at=NOW() WHERE broadcast_id=$2`
	_, err := r.DB.Exec(query, model.BroadcastCompleted, broadcastID)
	return err
}

// ====================== Counters ======================

// lockFor returns the mutex serializing counter updates for one broadcast.
func (r *BroadcastRepository) lockFor(broadcastID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(broadcastID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (r *BroadcastRepository) exec(broadcastID, query string) error {
	mu := r.lockFor(broadcastID)
	mu.Lock()
	defer mu.Unlock()
	_, err := r.DB.Exec(query, broadcastID)
	return err
}

func (r *BroadcastRepository) IncrementInProgress(broadcastID string) error {
	return r.exec(broadcastID,
		`UPDATE broadcasts SET in_progress = in_progress + 1 WHERE broadcast_id=$1`)
}

func (r *BroadcastRepository) IncrementFailed(broadcastID string) error {
	return r.exec(broadcastID,
		`UPDATE broadcasts SET failed = failed + 1 WHERE broadcast_id=$1`)
}

func (r *BroadcastRepository) ApplyCallCompleted(broadcastID string) error {
	return r.exec(broadcastID,
		`UPDATE broadcasts SET completed = completed + 1, in_progress = in_progress - 1 WHERE broadcast_id=$1`)
}

func (r *BroadcastRepository) ApplyCallFailed(broadcastID string) error {
	return r.exec(broadcastID,
		`UPDATE broadcasts SET failed = failed + 1, in_progress = in_progress - 1 WHERE broadcast_id=$1`)
}

var _ BroadcastRepositoryInterface = (*BroadcastRepository)(nil)
