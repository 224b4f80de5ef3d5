package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/api/dto"
	"github.com/nadia/mockdeck/internal/api/middleware"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/pkg/token"
	"gorm.io/gorm"
)

type ApiKeyHandler struct {
	db *gorm.DB
}

func NewApiKeyHandler(db *gorm.DB) *ApiKeyHandler {
	return &ApiKeyHandler{db: db}
}

type CreateApiKeyRequest struct {
	Name               string     `json:"name"`
	CanGenerateMockups *bool      `json:"can_generate_mockups,omitempty"`
	CanSaveMockups     *bool      `json:"can_save_mockups,omitempty"`
	CanAccessTemplates *bool      `json:"can_access_templates,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
}

func (r CreateApiKeyRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(time.Now()) {
		errors["expires_at"] = "Expiry must be in the future"
	}
	return errors
}

// CreateApiKeyResponse carries the raw secret. It is returned exactly
// once; subsequent reads only expose the prefix.
type CreateApiKeyResponse struct {
	models.ApiKey
	Key string `json:"key"`
}

// Create handles POST /api/v1/apikeys
func (h *ApiKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateApiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	secret, prefix, err := token.NewAPIKey()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create API key"})
		return
	}

	key := models.ApiKey{
		UserID:             userID,
		Name:               req.Name,
		KeyHash:            token.Hash(secret),
		KeyPrefix:          prefix,
		CanGenerateMockups: true,
		CanSaveMockups:     true,
		IsActive:           true,
		RateLimit:          60,
		ExpiresAt:          req.ExpiresAt,
	}
	if req.CanGenerateMockups != nil {
		key.CanGenerateMockups = *req.CanGenerateMockups
	}
	if req.CanSaveMockups != nil {
		key.CanSaveMockups = *req.CanSaveMockups
	}
	if req.CanAccessTemplates != nil {
		key.CanAccessTemplates = *req.CanAccessTemplates
	}

	if err := h.db.WithContext(r.Context()).Create(&key).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create API key"})
		return
	}

	writeJSON(w, http.StatusCreated, CreateApiKeyResponse{ApiKey: key, Key: secret})
}

// List handles GET /api/v1/apikeys
func (h *ApiKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var keys []models.ApiKey
	if err := h.db.WithContext(r.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list API keys"})
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

// Delete handles DELETE /api/v1/apikeys/:id. Revocation is a hard delete;
// a lost secret cannot be recovered anyway.
func (h *ApiKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid API key ID"})
		return
	}

	result := h.db.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ApiKey{})
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete API key"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "API key not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "API key deleted"})
}
