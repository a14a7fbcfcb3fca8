// internal/controller/broadcast_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/redwoodtel/callwave-backend/internal/service"
)

type BroadcastController struct {
	BroadcastService *service.BroadcastService
}

// CreateBroadcast handles POST /api/broadcast. The response carries the
// recipient count computed at submission; dispatch continues in the
// background after the response is written.
func (c *BroadcastController) CreateBroadcast(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string   `json:"name"`
		PhoneNumbers    []string `json:"phone_numbers"`
		GroupName       string   `json:"group_name"`
		Message         string   `json:"message"`
		TTSText         string   `json:"tts_text"`
		RecordingFile   string   `json:"recording_file"`
		CallerID        string   `json:"caller_id"`
		ConcurrentCalls int      `json:"concurrent_calls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	result, err := c.BroadcastService.CreateBroadcast(service.BroadcastRequest{
		Name:         body.Name,
		PhoneNumbers: body.PhoneNumbers,
		GroupName:    body.GroupName,
		Audio: service.AudioSpec{
			TTSText:       body.TTSText,
			RecordingFile: body.RecordingFile,
			Message:       body.Message,
		},
		CallerID:        body.CallerID,
		ConcurrentCalls: body.ConcurrentCalls,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":        "success",
		"broadcast_id":  result.BroadcastID,
		"total_numbers": result.TotalNumbers,
	})
}

// ListBroadcasts handles GET /api/broadcasts, newest first.
func (c *BroadcastController) ListBroadcasts(w http.ResponseWriter, r *http.Request) {
	broadcasts, err := c.BroadcastService.ListBroadcasts(50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"broadcasts": broadcasts})
}
