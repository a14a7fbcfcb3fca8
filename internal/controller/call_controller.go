// internal/controller/call_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
	"github.com/redwoodtel/callwave-backend/internal/service"
)

type CallController struct {
	CallService   *service.CallService
	StatusService *service.StatusService
}

// PlaceCall handles POST /api/call.
func (c *CallController) PlaceCall(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PhoneNumber   string `json:"phone_number"`
		Message       string `json:"message"`
		TTSText       string `json:"tts_text"`
		RecordingFile string `json:"recording_file"`
		CallerID      string `json:"caller_id"`
		MaxRetries    int    `json:"max_retries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.PhoneNumber == "" {
		http.Error(w, "phone_number is required", http.StatusBadRequest)
		return
	}

	callID, err := c.CallService.PlaceCall(r.Context(), service.PlaceCallRequest{
		PhoneNumber: body.PhoneNumber,
		Audio: service.AudioSpec{
			TTSText:       body.TTSText,
			RecordingFile: body.RecordingFile,
			Message:       body.Message,
		},
		CallerID:   body.CallerID,
		MaxRetries: body.MaxRetries,
	})
	if err != nil {
		var noAudio *appErrors.ErrNoAudioSource
		if errors.As(err, &noAudio) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "success",
		"call_id":      callID,
		"phone_number": body.PhoneNumber,
	})
}

// CallStatus handles POST /api/call_status, the engine's terminal callback.
// Unknown call ids are accepted and ignored so late or duplicate engine
// notifications never error.
func (c *CallController) CallStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CallID string `json:"call_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := c.StatusService.Apply(body.CallID, body.Status); err != nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok"})
}

// CallHistory handles GET /api/call_history.
func (c *CallController) CallHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	calls, err := c.StatusService.ListCallHistory(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"calls": calls})
}
