package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nadia/mockdeck/internal/api/dto"
	"github.com/nadia/mockdeck/internal/api/middleware"
	"github.com/nadia/mockdeck/internal/api/validation"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/mockups"
	"github.com/nadia/mockdeck/internal/tasks"
)

type MockupHandler struct {
	svc         *mockups.Service
	asynqClient *asynq.Client
}

func NewMockupHandler(svc *mockups.Service, asynqClient *asynq.Client) *MockupHandler {
	return &MockupHandler{svc: svc, asynqClient: asynqClient}
}

// serviceError maps core errors onto transport responses. Not-found and
// no-permission arrive here already collapsed into ErrNotFound.
func serviceError(w http.ResponseWriter, err error) {
	if ve, ok := mockups.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: ve.Fields})
		return
	}
	switch {
	case errors.Is(err, mockups.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Mockup not found"})
	case errors.Is(err, mockups.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Permission denied"})
	case errors.Is(err, mockups.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Version conflict, retry the snapshot"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal error"})
	}
}

// CreateMockupRequest represents the request to create a mockup
type CreateMockupRequest struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Platform   string          `json:"platform"`
	Data       json.RawMessage `json:"data,omitempty"`
	Appearance json.RawMessage `json:"appearance,omitempty"`
	ProjectID  *string         `json:"project_id,omitempty"`
	IsPublic   bool            `json:"is_public,omitempty"`
}

func (r CreateMockupRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Type == "" {
		errors["type"] = "Type is required"
	}
	if r.Platform == "" {
		errors["platform"] = "Platform is required"
	}
	if r.ProjectID != nil && *r.ProjectID != "" && !validation.IsValidUUID(*r.ProjectID) {
		errors["project_id"] = "Invalid project ID format"
	}
	return errors
}

// MockupResponse represents a mockup in API responses
type MockupResponse struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	ProjectID    *string         `json:"project_id,omitempty"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Platform     string          `json:"platform"`
	Data         json.RawMessage `json:"data"`
	Appearance   json.RawMessage `json:"appearance"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	IsPublic     bool            `json:"is_public"`
	Permission   string          `json:"permission,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func mockupToResponse(m *models.Mockup, perm mockups.Permission) MockupResponse {
	resp := MockupResponse{
		ID:           m.ID.String(),
		OwnerID:      m.OwnerID.String(),
		Name:         m.Name,
		Type:         string(m.Type),
		Platform:     m.Platform,
		Data:         json.RawMessage(m.Data),
		Appearance:   json.RawMessage(m.Appearance),
		ThumbnailURL: m.ThumbnailURL,
		IsPublic:     m.IsPublic,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    m.UpdatedAt.Format(time.RFC3339),
	}
	if m.ProjectID != nil {
		s := m.ProjectID.String()
		resp.ProjectID = &s
	}
	if perm != "" {
		resp.Permission = string(perm)
	}
	return resp
}

// Create handles POST /api/v1/mockups
func (h *MockupHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	var req CreateMockupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	in := mockups.CreateInput{
		Name:       req.Name,
		Type:       models.MockupType(req.Type),
		Platform:   req.Platform,
		Data:       string(req.Data),
		Appearance: string(req.Appearance),
		IsPublic:   req.IsPublic,
	}
	if req.ProjectID != nil && *req.ProjectID != "" {
		projectID, _ := uuid.Parse(*req.ProjectID)
		in.ProjectID = &projectID
	}

	m, err := h.svc.Create(r.Context(), requester.ID, in)
	if err != nil {
		serviceError(w, err)
		return
	}

	h.enqueueThumbnail(m.ID)
	writeJSON(w, http.StatusCreated, mockupToResponse(m, mockups.PermissionOwner))
}

// Get handles GET /api/v1/mockups/:id. Runs under optional auth so that
// public mockups resolve for anonymous requesters.
func (h *MockupHandler) Get(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	m, perm, err := h.svc.Get(r.Context(), id, requester)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mockupToResponse(m, perm))
}

// UpdateMockupRequest carries a sparse field set; absent fields are left
// untouched. An empty project_id string detaches the mockup from its
// project.
type UpdateMockupRequest struct {
	Name         *string          `json:"name,omitempty"`
	Data         *json.RawMessage `json:"data,omitempty"`
	Appearance   *json.RawMessage `json:"appearance,omitempty"`
	ThumbnailURL *string          `json:"thumbnail_url,omitempty"`
	ProjectID    *string          `json:"project_id,omitempty"`
	IsPublic     *bool            `json:"is_public,omitempty"`
}

// Update handles PUT /api/v1/mockups/:id
func (h *MockupHandler) Update(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	var req UpdateMockupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	in := mockups.UpdateInput{
		Name:         req.Name,
		ThumbnailURL: req.ThumbnailURL,
		IsPublic:     req.IsPublic,
	}
	if req.Data != nil {
		s := string(*req.Data)
		in.Data = &s
	}
	if req.Appearance != nil {
		s := string(*req.Appearance)
		in.Appearance = &s
	}
	if req.ProjectID != nil {
		if *req.ProjectID == "" {
			in.ClearProjectID = true
		} else {
			projectID, err := uuid.Parse(*req.ProjectID)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid project ID"})
				return
			}
			in.ProjectID = &projectID
		}
	}

	m, err := h.svc.Update(r.Context(), id, requester, in)
	if err != nil {
		serviceError(w, err)
		return
	}

	if req.Name != nil || req.Data != nil || req.Appearance != nil {
		h.enqueueThumbnail(m.ID)
	}
	writeJSON(w, http.StatusOK, mockupToResponse(m, ""))
}

// Delete handles DELETE /api/v1/mockups/:id
func (h *MockupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	if err := h.svc.Delete(r.Context(), id, requester); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Mockup deleted"})
}

// List handles GET /api/v1/mockups
func (h *MockupHandler) List(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	opts := mockups.ListOptions{
		Type:     models.MockupType(r.URL.Query().Get("type")),
		Platform: r.URL.Query().Get("platform"),
	}

	var err error
	if v := r.URL.Query().Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
			return
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid offset"})
			return
		}
	}

	page, total, err := h.svc.List(r.Context(), requester.ID, opts)
	if err != nil {
		serviceError(w, err)
		return
	}

	response := make([]MockupResponse, len(page))
	for i := range page {
		response[i] = mockupToResponse(&page[i], "")
	}

	limit := opts.Limit
	if limit == 0 {
		limit = 50
	}
	writeJSON(w, http.StatusOK, dto.ListResponse{
		Data:   response,
		Total:  total,
		Limit:  limit,
		Offset: opts.Offset,
	})
}

// GetPublic handles GET /api/v1/public/mockups/:id without any auth.
func (h *MockupHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	pub, err := h.svc.GetPublic(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		Type       string          `json:"type"`
		Platform   string          `json:"platform"`
		Data       json.RawMessage `json:"data"`
		Appearance json.RawMessage `json:"appearance"`
		CreatedAt  string          `json:"created_at"`
	}{
		ID:         pub.ID.String(),
		Name:       pub.Name,
		Type:       string(pub.Type),
		Platform:   pub.Platform,
		Data:       json.RawMessage(pub.Data),
		Appearance: json.RawMessage(pub.Appearance),
		CreatedAt:  pub.CreatedAt.Format(time.RFC3339),
	})
}

// Export handles GET /api/v1/mockups/:id/export
func (h *MockupHandler) Export(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	env, err := h.svc.Export(r.Context(), id, requester)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, env)
}

// Import handles POST /api/v1/mockups/import, creating a new mockup from
// an exported envelope.
func (h *MockupHandler) Import(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	var env mockups.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	m, err := h.svc.Import(r.Context(), requester.ID, env)
	if err != nil {
		serviceError(w, err)
		return
	}

	h.enqueueThumbnail(m.ID)
	writeJSON(w, http.StatusCreated, mockupToResponse(m, mockups.PermissionOwner))
}

// ImportInto handles POST /api/v1/mockups/:id/import, replacing an
// existing mockup's content from an envelope of the same type.
func (h *MockupHandler) ImportInto(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetRequester(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid mockup ID"})
		return
	}

	var env mockups.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	m, err := h.svc.ImportInto(r.Context(), id, requester, env)
	if err != nil {
		serviceError(w, err)
		return
	}

	h.enqueueThumbnail(m.ID)
	writeJSON(w, http.StatusOK, mockupToResponse(m, ""))
}

func (h *MockupHandler) enqueueThumbnail(mockupID uuid.UUID) {
	if h.asynqClient == nil {
		return
	}
	task, err := tasks.NewThumbnailRenderTask(tasks.ThumbnailRenderPayload{MockupID: mockupID})
	if err != nil {
		return
	}
	_, _ = h.asynqClient.Enqueue(task)
}
