// internal/handler/group_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
	"github.com/redwoodtel/callwave-backend/internal/repository"
)

// GroupHandler holds the dependencies for contact-group HTTP handlers
type GroupHandler struct {
	Repo repository.GroupRepositoryInterface
}

// CreateGroupHandler handles creating a new contact group
func (h *GroupHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string   `json:"name"`
		PhoneNumbers []string `json:"phone_numbers"`
		CallerID     *string  `json:"caller_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	group, err := h.Repo.Create(payload.Name, payload.CallerID, payload.PhoneNumbers)
	if err != nil {
		var dup *appErrors.ErrDuplicateGroup
		if errors.As(err, &dup) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to create group: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "success",
		"group_id": group.ID,
		"name":     group.Name,
	})
}

// ListGroupsHandler returns all contact groups with their member counts
func (h *GroupHandler) ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Repo.List()
	if err != nil {
		http.Error(w, "failed to fetch groups: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"groups": groups})
}

// DeleteGroupHandler removes a group and its members
func (h *GroupHandler) DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Repo.Delete(name); err != nil {
		http.Error(w, "failed to delete group: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "success"})
}
