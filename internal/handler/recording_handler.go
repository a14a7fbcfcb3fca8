// internal/handler/recording_handler.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RecordingHandler manages pre-recorded audio files on disk. Recordings are
// referenced by name from call and broadcast requests.
type RecordingHandler struct {
	Dir string
}

// sanitize rejects names that would escape the recordings directory.
func sanitize(name string) (string, bool) {
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}

// UploadRecordingHandler handles multipart upload of a recording
func (h *RecordingHandler) UploadRecordingHandler(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name, ok := sanitize(filepath.Base(header.Filename))
	if !ok {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}

	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		http.Error(w, "failed to store recording: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		http.Error(w, "failed to store recording: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"name":   name,
	})
}

// ListRecordingsHandler lists stored recordings
func (h *RecordingHandler) ListRecordingsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.Dir)
	if err != nil {
		http.Error(w, "failed to list recordings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	recordings := []map[string]interface{}{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		recordings = append(recordings, map[string]interface{}{
			"name":        e.Name(),
			"size":        info.Size(),
			"modified_at": info.ModTime(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"recordings": recordings})
}

// StreamRecordingHandler serves a recording's bytes
func (h *RecordingHandler) StreamRecordingHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := sanitize(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "invalid recording name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.Dir, name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "recording not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}

// RenameRecordingHandler renames a recording
func (h *RecordingHandler) RenameRecordingHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := sanitize(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "invalid recording name", http.StatusBadRequest)
		return
	}

	var payload struct {
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	newName, ok := sanitize(payload.NewName)
	if !ok {
		http.Error(w, "invalid new name", http.StatusBadRequest)
		return
	}

	if err := os.Rename(filepath.Join(h.Dir, name), filepath.Join(h.Dir, newName)); err != nil {
		http.Error(w, "failed to rename recording: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"name":   newName,
	})
}

// DeleteRecordingHandler removes a recording
func (h *RecordingHandler) DeleteRecordingHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := sanitize(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "invalid recording name", http.StatusBadRequest)
		return
	}

	if err := os.Remove(filepath.Join(h.Dir, name)); err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "recording not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete recording: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "success"})
}
