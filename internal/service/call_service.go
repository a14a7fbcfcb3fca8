// internal/service/call_service.go
package service

import (
	"context"

	"github.com/redwoodtel/callwave-backend/internal/events"
)

// PlaceCallRequest is a single standalone outbound call.
type PlaceCallRequest struct {
	PhoneNumber string
	Audio       AudioSpec
	CallerID    string
	MaxRetries  int
}

// CallService places standalone calls outside any broadcast.
type CallService struct {
	Audio      *AudioResolver
	Dispatcher *CallDispatcher
	Bus        events.Bus
}

// PlaceCall resolves the audio source and hands the call to the engine.
// It returns the call id; the outcome arrives later via the status callback.
func (s *CallService) PlaceCall(ctx context.Context, req PlaceCallRequest) (string, error) {
	audioFile, err := s.Audio.Resolve(ctx, req.Audio)
	if err != nil {
		return "", err
	}

	callID, err := s.Dispatcher.Dispatch(DispatchRequest{
		PhoneNumber: req.PhoneNumber,
		AudioFile:   audioFile,
		CallerID:    req.CallerID,
		MaxRetries:  req.MaxRetries,
	})
	if err != nil {
		return "", err
	}

	events.LogPublishError(events.CallInitiated, s.Bus.Publish(events.CallInitiated, map[string]any{
		"call_id":      callID,
		"phone_number": req.PhoneNumber,
	}))

	return callID, nil
}
