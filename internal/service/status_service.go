// internal/service/status_service.go
package service

import (
	"fmt"
	"log"

	"github.com/redwoodtel/callwave-backend/internal/model"
	"github.com/redwoodtel/callwave-backend/internal/repository"
)

// StatusService reconciles the engine's asynchronous terminal callbacks into
// call and broadcast state. It is the only writer of call rows after
// dispatch.
type StatusService struct {
	Calls      repository.CallRepositoryInterface
	Broadcasts repository.BroadcastRepositoryInterface
}

// Apply records one terminal callback. Unknown call ids are tolerated and
// reported as known=false: the engine may notify late, twice, or about calls
// the service never tracked. Note that a duplicate callback for a known call
// id is applied again and double-counts the broadcast counters; callers that
// need idempotency must deduplicate upstream.
func (s *StatusService) Apply(callID, status string) (known bool, err error) {
	call, err := s.Calls.GetByCallID(callID)
	if err != nil {
		return false, err
	}
	if call == nil {
		log.Println("ℹ️ Ignoring status for unknown call:", callID)
		return false, nil
	}

	switch status {
	case model.CallCompleted:
		if err := s.Calls.MarkEnded(callID, status, true); err != nil {
			return true, err
		}
		if call.BroadcastID != nil {
			if err := s.Broadcasts.ApplyCallCompleted(*call.BroadcastID); err != nil {
				return true, err
			}
		}

	case model.CallHangup, model.CallFailed:
		if err := s.Calls.MarkEnded(callID, status, false); err != nil {
			return true, err
		}
		if call.BroadcastID != nil {
			if err := s.Broadcasts.ApplyCallFailed(*call.BroadcastID); err != nil {
				return true, err
			}
		}

	default:
		return true, fmt.Errorf("unknown call status: %s", status)
	}

	log.Println("📋 Call", callID, "->", status)
	return true, nil
}

// ListCallHistory returns the most recent calls, newest first.
func (s *StatusService) ListCallHistory(limit int) ([]*model.Call, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.Calls.ListRecent(limit)
}
