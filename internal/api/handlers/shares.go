package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/api/dto"
	"github.com/nadia/mockdeck/internal/api/middleware"
	"github.com/nadia/mockdeck/internal/api/validation"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/mockups"
)

type ShareHandler struct {
	svc *mockups.Service
}

func NewShareHandler(svc *mockups.Service) *ShareHandler {
	return &ShareHandler{svc: svc}
}

// CreateShareRequest represents the request to share a mockup
type CreateShareRequest struct {
	SharedWithUserID *string    `json:"shared_with_user_id,omitempty"`
	SharedWithEmail  string     `json:"shared_with_email,omitempty"`
	Permission       string     `json:"permission"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

type ShareResponse struct {
	ID               string     `json:"id"`
	MockupID         string     `json:"mockup_id"`
	SharedWithUserID *string    `json:"shared_with_user_id,omitempty"`
	SharedWithEmail  string     `json:"shared_with_email,omitempty"`
	Permission       string     `json:"permission"`
	ShareToken       string     `json:"share_token,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        string     `json:"created_at"`
}

func shareToResponse(s *models.MockupShare) ShareResponse {
	resp := ShareResponse{
		ID:              s.ID.String(),
		MockupID:        s.MockupID.String(),
		SharedWithEmail: s.SharedWithEmail,
		Permission:      string(s.Permission),
		ShareToken:      s.ShareToken,
		ExpiresAt:       s.ExpiresAt,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
	if s.SharedWithUserID != nil {
		id := s.SharedWithUserID.String()
		resp.SharedWithUserID = &id
	}
	return resp
}

// Create handles POST /api/v1/mockups/:id/shares
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	in := mockups.CreateShareInput{
		SharedWithEmail: req.SharedWithEmail,
		Permission:      models.SharePermission(req.Permission),
		ExpiresAt:       req.ExpiresAt,
	}
	if req.SharedWithUserID != nil {
		if !validation.IsValidUUID(*req.SharedWithUserID) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
			return
		}
		userID, _ := uuid.Parse(*req.SharedWithUserID)
		in.SharedWithUserID = &userID
	}

	share, err := h.svc.CreateShare(r.Context(), mockupID, requester, in)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, shareToResponse(share))
}

// List handles GET /api/v1/mockups/:id/shares
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	shares, err := h.svc.ListShares(r.Context(), mockupID, requester)
	if err != nil {
		serviceError(w, err)
		return
	}

	response := make([]ShareResponse, len(shares))
	for i := range shares {
		response[i] = shareToResponse(&shares[i])
	}
	writeJSON(w, http.StatusOK, response)
}

type UpdateShareRequest struct {
	Permission *string    `json:"permission,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	// ClearExpiry removes an existing expiry, making the share permanent.
	ClearExpiry bool `json:"clear_expiry,omitempty"`
}

// Update handles PUT /api/v1/mockups/:id/shares/:shareID
func (h *ShareHandler) Update(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}
	shareID, err := uuid.Parse(chi.URLParam(r, "shareID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid share ID"})
		return
	}

	var req UpdateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	in := mockups.UpdateShareInput{
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
	}
	if req.Permission != nil {
		p := models.SharePermission(*req.Permission)
		in.Permission = &p
	}

	share, err := h.svc.UpdateShare(r.Context(), mockupID, shareID, requester, in)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shareToResponse(share))
}

// Delete handles DELETE /api/v1/mockups/:id/shares/:shareID
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}
	shareID, err := uuid.Parse(chi.URLParam(r, "shareID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid share ID"})
		return
	}

	if err := h.svc.DeleteShare(r.Context(), mockupID, shareID, requester); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Share revoked"})
}
