package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/taskdeck-be/internal/auth"
	"github.com/isdelr/taskdeck-be/internal/services"
)

// CategoryHandler handles HTTP requests for categories. The owner id
// always comes from the verified token, never from the request body.
type CategoryHandler struct {
	service services.CategoryServiceProvider
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// CreateCategoryPayload defines the structure for category creation.
type CreateCategoryPayload struct {
	Name string `json:"name" validate:"required,max=100"`
}

// GetAll lists the owner's categories.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	categories, err := h.service.List(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", claims.UserID).Msg("Failed to list categories")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// Get returns one of the owner's categories.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	category, err := h.service.Get(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// Create stores a new category for the owner.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload CreateCategoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}

	category, err := h.service.Create(r.Context(), claims.UserID, payload.Name)
	if err != nil {
		log.Error().Err(err).Uint("user_id", claims.UserID).Msg("Failed to create category")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// Update applies a partial update to one of the owner's categories.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	var p services.CategoryPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if p.Name.Null() {
		http.Error(w, "Category name cannot be null", http.StatusBadRequest)
		return
	}

	category, err := h.service.Update(r.Context(), claims.UserID, id, p)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// Delete removes one of the owner's categories, uncategorizing its
// tasks rather than deleting them.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
