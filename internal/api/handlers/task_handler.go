package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/taskdeck-be/internal/auth"
	"github.com/isdelr/taskdeck-be/internal/services"
)

// TaskHandler handles HTTP requests for tasks. The owner id always
// comes from the verified token, never from the request body.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTaskPayload defines the structure for task creation. Done
// defaults to false; CategoryID is optional.
type CreateTaskPayload struct {
	Text       string `json:"text" validate:"required"`
	Done       bool   `json:"done"`
	CategoryID *uint  `json:"category_id"`
}

// GetAll lists the owner's tasks.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	tasks, err := h.service.List(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", claims.UserID).Msg("Failed to list tasks")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// GetByCategory lists the owner's tasks filed under one category.
func (h *TaskHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	categoryID, err := urlID(r, "categoryID")
	if err != nil {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	tasks, err := h.service.ListByCategory(r.Context(), claims.UserID, categoryID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", claims.UserID).Msg("Failed to list tasks by category")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get returns one of the owner's tasks.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	task, err := h.service.Get(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Create stores a new task for the owner.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		http.Error(w, "Task text is required", http.StatusBadRequest)
		return
	}

	task, err := h.service.Create(r.Context(), claims.UserID, payload.Text, payload.Done, payload.CategoryID)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", claims.UserID).Msg("Failed to create task")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// Update applies a partial update to one of the owner's tasks.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	var p services.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	// text and done are not nullable columns; only category_id accepts
	// an explicit null (meaning "uncategorize").
	if p.Text.Null() || p.Done.Null() {
		http.Error(w, "Fields text and done cannot be null", http.StatusBadRequest)
		return
	}

	task, err := h.service.Update(r.Context(), claims.UserID, id, p)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Delete removes one of the owner's tasks.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
