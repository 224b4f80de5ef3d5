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
	"github.com/nadia/mockdeck/internal/mockups"
)

type VersionHandler struct {
	svc *mockups.Service
}

func NewVersionHandler(svc *mockups.Service) *VersionHandler {
	return &VersionHandler{svc: svc}
}

type CreateVersionRequest struct {
	ChangeDescription string `json:"change_description,omitempty"`
}

// VersionResponse is the full snapshot. List endpoints return
// VersionSummary instead; the payloads are only worth shipping for a
// single-version read or restore preview.
type VersionResponse struct {
	ID                string          `json:"id"`
	MockupID          string          `json:"mockup_id"`
	UserID            string          `json:"user_id"`
	VersionNumber     int             `json:"version_number"`
	Name              string          `json:"name"`
	Data              json.RawMessage `json:"data"`
	Appearance        json.RawMessage `json:"appearance"`
	ThumbnailURL      string          `json:"thumbnail_url,omitempty"`
	ChangeDescription string          `json:"change_description,omitempty"`
	CreatedAt         string          `json:"created_at"`
}

type VersionSummary struct {
	ID                string `json:"id"`
	MockupID          string `json:"mockup_id"`
	UserID            string `json:"user_id"`
	VersionNumber     int    `json:"version_number"`
	Name              string `json:"name"`
	ThumbnailURL      string `json:"thumbnail_url,omitempty"`
	ChangeDescription string `json:"change_description,omitempty"`
	CreatedAt         string `json:"created_at"`
}

func versionToResponse(v *models.MockupVersion) VersionResponse {
	return VersionResponse{
		ID:                v.ID.String(),
		MockupID:          v.MockupID.String(),
		UserID:            v.UserID.String(),
		VersionNumber:     v.VersionNumber,
		Name:              v.Name,
		Data:              json.RawMessage(v.Data),
		Appearance:        json.RawMessage(v.Appearance),
		ThumbnailURL:      v.ThumbnailURL,
		ChangeDescription: v.ChangeDescription,
		CreatedAt:         v.CreatedAt.Format(time.RFC3339),
	}
}

func versionToSummary(v *models.MockupVersion) VersionSummary {
	return VersionSummary{
		ID:                v.ID.String(),
		MockupID:          v.MockupID.String(),
		UserID:            v.UserID.String(),
		VersionNumber:     v.VersionNumber,
		Name:              v.Name,
		ThumbnailURL:      v.ThumbnailURL,
		ChangeDescription: v.ChangeDescription,
		CreatedAt:         v.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /api/v1/mockups/:id/versions
func (h *VersionHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	// An empty body means a snapshot without a description.
	var req CreateVersionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
			return
		}
	}

	version, err := h.svc.CreateVersion(r.Context(), mockupID, requester, mockups.CreateVersionInput{
		ChangeDescription: req.ChangeDescription,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, versionToResponse(version))
}

// List handles GET /api/v1/mockups/:id/versions
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	versions, err := h.svc.ListVersions(r.Context(), mockupID, requester)
	if err != nil {
		serviceError(w, err)
		return
	}

	response := make([]VersionSummary, len(versions))
	for i := range versions {
		response[i] = versionToSummary(&versions[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/mockups/:id/versions/:versionID
func (h *VersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, versionID, ok := h.parseIDs(w, r)
	if !ok {
		return
	}

	version, err := h.svc.GetVersion(r.Context(), mockupID, versionID, requester)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, versionToResponse(version))
}

// Restore handles POST /api/v1/mockups/:id/versions/:versionID/restore
func (h *VersionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, versionID, ok := h.parseIDs(w, r)
	if !ok {
		return
	}

	m, err := h.svc.RestoreVersion(r.Context(), mockupID, versionID, requester)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mockupToResponse(m, mockups.PermissionOwner))
}

// Delete handles DELETE /api/v1/mockups/:id/versions/:versionID
func (h *VersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, versionID, ok := h.parseIDs(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteVersion(r.Context(), mockupID, versionID, requester); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Version deleted"})
}

func (h *VersionHandler) parseIDs(w http.ResponseWriter, r *http.Request) (mockupID, versionID uuid.UUID, ok bool) {
	var err error
	if mockupID, err = uuid.Parse(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return uuid.Nil, uuid.Nil, false
	}
	if versionID, err = uuid.Parse(chi.URLParam(r, "versionID")); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid version ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return mockupID, versionID, true
}
