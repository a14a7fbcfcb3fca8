// internal/service/broadcast_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redwoodtel/callwave-backend/internal/events"
	"github.com/redwoodtel/callwave-backend/internal/model"
	"github.com/redwoodtel/callwave-backend/internal/repository"
	"github.com/redwoodtel/callwave-backend/internal/tasks"
)

// DefaultConcurrentCalls bounds the dispatch fan-out when the request does
// not choose its own bound.
const DefaultConcurrentCalls = 5

// BroadcastRequest is a submitted broadcast before any resolution happens.
type BroadcastRequest struct {
	Name            string
	PhoneNumbers    []string
	GroupName       string
	Audio           AudioSpec
	CallerID        string
	ConcurrentCalls int
}

// Result struct for CreateBroadcast
type CreateBroadcastResult struct {
	BroadcastID  string
	TotalNumbers int
}

// BroadcastService owns the broadcast lifecycle: it records the submission,
// answers immediately with the precomputed recipient count, and drives the
// background dispatch phase through the task registry.
type BroadcastService struct {
	Broadcasts repository.BroadcastRepositoryInterface
	Recipients *RecipientResolver
	Audio      *AudioResolver
	Dispatcher *CallDispatcher
	Tasks      *tasks.Registry
	Bus        events.Bus

	// PaceInterval is how long each dispatch slot is held after a call
	// order is dropped. It throttles how fast descriptors hit the intake
	// directory; it does not track the call's talk time, so the concurrency
	// bound limits submission rate rather than simultaneous live calls.
	PaceInterval time.Duration
}

// CreateBroadcast validates and records the broadcast, starts the dispatch
// phase in the background, and returns before any call is placed. The
// returned total is the count computed now; the dispatch phase never
// recomputes it.
func (s *BroadcastService) CreateBroadcast(req BroadcastRequest) (*CreateBroadcastResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("broadcast name is required")
	}

	total, err := s.Recipients.Count(req.PhoneNumbers, req.GroupName)
	if err != nil {
		return nil, err
	}

	broadcastID := strings.ReplaceAll(uuid.New().String(), "-", "")
	b := &model.Broadcast{
		BroadcastID:  broadcastID,
		Name:         req.Name,
		Status:       model.BroadcastInitiated,
		TotalNumbers: total,
	}
	if err := s.Broadcasts.Create(b); err != nil {
		return nil, err
	}

	events.LogPublishError(events.BroadcastStarted, s.Bus.Publish(events.BroadcastStarted, map[string]any{
		"broadcast_id":  broadcastID,
		"name":          req.Name,
		"total_numbers": total,
	}))

	s.Tasks.Go(broadcastID, func() {
		s.process(broadcastID, req)
	})

	log.Println("📣 Broadcast submitted:", broadcastID, "-", req.Name)
	return &CreateBroadcastResult{BroadcastID: broadcastID, TotalNumbers: total}, nil
}

// process is the background dispatch phase. It resolves audio once and
// recipients once, then fans out call orders under the concurrency bound.
// Once dispatch has begun the broadcast cannot fail as a whole; individual
// recipients just land in the failed counter.
func (s *BroadcastService) process(broadcastID string, req BroadcastRequest) {
	log.Println("⚙️ Processing broadcast:", broadcastID)

	audioFile, err := s.Audio.Resolve(context.Background(), req.Audio)
	if err != nil {
		log.Println("⚠️ Broadcast", broadcastID, "audio resolution failed:", err)
		s.fail(broadcastID)
		return
	}

	numbers, err := s.Recipients.Resolve(broadcastID, req.PhoneNumbers, req.GroupName)
	if err != nil {
		log.Println("⚠️ Broadcast", broadcastID, "recipient resolution failed:", err)
		s.fail(broadcastID)
		return
	}

	if err := s.Broadcasts.UpdateStatus(broadcastID, model.BroadcastProcessing); err != nil {
		log.Println("⚠️ Failed to mark broadcast processing:", err)
	}

	concurrent := req.ConcurrentCalls
	if concurrent <= 0 {
		concurrent = DefaultConcurrentCalls
	}

	sem := make(chan struct{}, concurrent)
	var wg sync.WaitGroup

	// Slots are acquired here, in recipient order, so dispatch issuance
	// follows the resolved sequence even though slots finish out of order.
	for _, number := range numbers {
		sem <- struct{}{}
		wg.Add(1)

		go func(phoneNumber string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			_, err := s.Dispatcher.Dispatch(DispatchRequest{
				PhoneNumber: phoneNumber,
				AudioFile:   audioFile,
				CallerID:    req.CallerID,
				GroupName:   req.GroupName,
				BroadcastID: broadcastID,
			})
			if err != nil {
				log.Println("⚠️ ", err)
				if err := s.Broadcasts.IncrementFailed(broadcastID); err != nil {
					log.Println("⚠️ Failed to record dispatch failure:", err)
				}
			} else {
				if err := s.Broadcasts.IncrementInProgress(broadcastID); err != nil {
					log.Println("⚠️ Failed to record dispatched call:", err)
				}
			}

			// Hold the slot for the pacing interval so descriptors drip
			// into the intake directory instead of flooding it.
			time.Sleep(s.PaceInterval)
		}(number)
	}

	wg.Wait()

	// Every attempt has been issued. The broadcast is completed now even if
	// status callbacks are still outstanding, so a completed broadcast can
	// briefly show in_progress > 0.
	if err := s.Broadcasts.MarkCompleted(broadcastID); err != nil {
		log.Println("⚠️ Failed to mark broadcast completed:", err)
		return
	}

	events.LogPublishError(events.BroadcastCompleted, s.Bus.Publish(events.BroadcastCompleted, map[string]any{
		"broadcast_id": broadcastID,
		"name":         req.Name,
		"total":        len(numbers),
	}))

	log.Println("✅ Broadcast completed:", broadcastID)
}

func (s *BroadcastService) fail(broadcastID string) {
	if err := s.Broadcasts.UpdateStatus(broadcastID, model.BroadcastFailed); err != nil {
		log.Println("⚠️ Failed to mark broadcast failed:", err)
	}
}

// ListBroadcasts returns the most recent broadcasts, newest first.
func (s *BroadcastService) ListBroadcasts(limit int) ([]*model.Broadcast, error) {
	if limit < 1 || limit > 50 {
		limit = 50
	}
	return s.Broadcasts.ListRecent(limit)
}
