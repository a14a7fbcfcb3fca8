// internal/service/dispatcher.go
package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
	"github.com/redwoodtel/callwave-backend/internal/model"
	"github.com/redwoodtel/callwave-backend/internal/repository"
	"github.com/redwoodtel/callwave-backend/internal/spool"
)

// Engine retry defaults carried into every call order unless the request
// overrides MaxRetries.
const (
	DefaultMaxRetries = 3
	DefaultRetryTime  = 300 // seconds
	DefaultWaitTime   = 45  // seconds
)

// DispatchRequest describes one call to place. BroadcastID is empty for
// standalone calls.
type DispatchRequest struct {
	PhoneNumber string
	AudioFile   string
	CallerID    string
	GroupName   string
	BroadcastID string
	MaxRetries  int
}

// CallDispatcher places single calls: it allocates the call id, publishes
// the call order into the engine's intake directory, and records the call as
// initiated. It does not wait for the engine; completion arrives later
// through the status callback.
type CallDispatcher struct {
	Calls           repository.CallRepositoryInterface
	Spool           *spool.Publisher
	Trunk           string
	DefaultCallerID string
}

// Dispatch places one call and returns its call id. Under a broadcast the
// id is derived from the broadcast id plus a random suffix, so ids from
// concurrently dispatching recipients (and concurrent broadcasts) never
// collide and a call's origin is readable from its id.
func (d *CallDispatcher) Dispatch(req DispatchRequest) (string, error) {
	callID := newCallID(req.BroadcastID)

	callerID := req.CallerID
	if callerID == "" {
		callerID = d.DefaultCallerID
	}
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	desc := spool.Descriptor{
		Channel:     fmt.Sprintf("SIP/%s/%s", d.Trunk, req.PhoneNumber),
		CallerID:    callerID,
		MaxRetries:  maxRetries,
		RetryTime:   DefaultRetryTime,
		WaitTime:    DefaultWaitTime,
		AudioFile:   req.AudioFile,
		CallID:      callID,
		PhoneNumber: req.PhoneNumber,
	}

	if err := d.Spool.Publish(desc); err != nil {
		return "", appErrors.NewDispatchFailed(req.PhoneNumber, err)
	}

	call := &model.Call{
		CallID:      callID,
		PhoneNumber: req.PhoneNumber,
		Direction:   "outbound",
		Status:      model.CallInitiated,
		AudioFile:   req.AudioFile,
	}
	if req.CallerID != "" {
		call.CallerID = &req.CallerID
	}
	if req.GroupName != "" {
		call.GroupName = &req.GroupName
	}
	if req.BroadcastID != "" {
		call.BroadcastID = &req.BroadcastID
	}

	if err := d.Calls.Create(call); err != nil {
		return "", appErrors.NewDispatchFailed(req.PhoneNumber, err)
	}

	log.Println("📞 Call order published:", callID, "->", req.PhoneNumber)
	return callID, nil
}

func newCallID(broadcastID string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	if broadcastID == "" {
		return hex
	}
	return fmt.Sprintf("%s_%s", broadcastID, hex[:8])
}
