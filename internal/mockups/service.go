package mockups

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service owns mockup persistence: lifecycle CRUD, shares and the version
// history engine. All state lives in the database; the service holds no
// cross-request state.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type CreateInput struct {
	Name       string
	Type       models.MockupType
	Platform   string
	Data       string
	Appearance string
	ProjectID  *uuid.UUID
	IsPublic   bool
}

func (in CreateInput) validate() error {
	fields := make(map[string]string)
	if in.Name == "" {
		fields["name"] = "Name is required"
	}
	if !models.ValidMockupType(in.Type) {
		fields["type"] = "Invalid mockup type"
	} else if !models.ValidPlatform(in.Type, in.Platform) {
		fields["platform"] = "Invalid platform for type " + string(in.Type)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create stores a new mockup owned by ownerID. The type/platform pair must
// be a valid combination; data and appearance default to empty objects.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*models.Mockup, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	data := in.Data
	if data == "" {
		data = "{}"
	}
	appearance := in.Appearance
	if appearance == "" {
		appearance = "{}"
	}

	m := models.Mockup{
		OwnerID:    ownerID,
		Name:       in.Name,
		Type:       in.Type,
		Platform:   in.Platform,
		Data:       data,
		Appearance: appearance,
		IsPublic:   in.IsPublic,
	}

	if in.ProjectID != nil {
		// The target project must belong to the creator.
		var project models.Project
		if err := s.db.WithContext(ctx).
			Where("id = ? AND owner_id = ?", *in.ProjectID, ownerID).
			First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("project_id", "Project not found")
			}
			return nil, err
		}
		m.ProjectID = in.ProjectID
	}

	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}

	return &m, nil
}

// Get returns the mockup together with the requester's resolved permission
// tier. A requester with no permission gets ErrNotFound, never a hint that
// the record exists.
func (s *Service) Get(ctx context.Context, id uuid.UUID, r *Requester) (*models.Mockup, Permission, error) {
	m, perm, err := s.load(ctx, id, r)
	if err != nil {
		return nil, PermissionNone, err
	}
	if !perm.CanView() {
		return nil, PermissionNone, ErrNotFound
	}
	return m, perm, nil
}

// load fetches a mockup and resolves the requester's permission without
// enforcing any tier.
func (s *Service) load(ctx context.Context, id uuid.UUID, r *Requester) (*models.Mockup, Permission, error) {
	var m models.Mockup
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, PermissionNone, ErrNotFound
		}
		return nil, PermissionNone, err
	}

	shares, err := s.sharesFor(ctx, &m, r)
	if err != nil {
		return nil, PermissionNone, err
	}

	return &m, ResolvePermission(&m, r, shares, time.Now()), nil
}

// sharesFor loads the shares that could apply to the requester. Expiry is
// not filtered here; the resolver skips expired rows at evaluation time.
func (s *Service) sharesFor(ctx context.Context, m *models.Mockup, r *Requester) ([]models.MockupShare, error) {
	if r == nil || r.ID == m.OwnerID {
		return nil, nil
	}

	var shares []models.MockupShare
	err := s.db.WithContext(ctx).
		Where("mockup_id = ?", m.ID).
		Where("shared_with_user_id = ? OR LOWER(shared_with_email) = LOWER(?)", r.ID, r.Email).
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

type UpdateInput struct {
	Name         *string
	Data         *string
	Appearance   *string
	ThumbnailURL *string

	// Owner-only fields. Silently ignored when the resolved tier is edit.
	ProjectID      *uuid.UUID
	ClearProjectID bool
	IsPublic       *bool
}

// Update applies a sparse set of fields. Name, data, appearance and the
// thumbnail are writable at edit tier and above; project assignment and
// public visibility only by the owner, and are dropped without error when
// a non-owner supplies them.
func (s *Service) Update(ctx context.Context, id uuid.UUID, r *Requester, in UpdateInput) (*models.Mockup, error) {
	m, perm, err := s.load(ctx, id, r)
	if err != nil {
		return nil, err
	}
	if !perm.CanView() {
		return nil, ErrNotFound
	}
	if !perm.CanEdit() {
		return nil, ErrPermissionDenied
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, validationError("name", "Name cannot be empty")
		}
		m.Name = *in.Name
	}
	if in.Data != nil {
		m.Data = *in.Data
	}
	if in.Appearance != nil {
		m.Appearance = *in.Appearance
	}
	if in.ThumbnailURL != nil {
		m.ThumbnailURL = *in.ThumbnailURL
	}

	if perm == PermissionOwner {
		if in.ClearProjectID {
			m.ProjectID = nil
		} else if in.ProjectID != nil {
			var project models.Project
			if err := s.db.WithContext(ctx).
				Where("id = ? AND owner_id = ?", *in.ProjectID, m.OwnerID).
				First(&project).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, validationError("project_id", "Project not found")
				}
				return nil, err
			}
			m.ProjectID = in.ProjectID
		}
		if in.IsPublic != nil {
			m.IsPublic = *in.IsPublic
		}
	}

	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}

	return m, nil
}

// Delete removes a mockup with its shares and versions. Only the literal
// owner may delete; a share-granted edit tier does not qualify.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, r *Requester) error {
	var m models.Mockup
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !IsLiteralOwner(&m, r) {
		return ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mockup_id = ?", m.ID).Delete(&models.MockupShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("mockup_id = ?", m.ID).Delete(&models.MockupVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
}

type ListOptions struct {
	Type     models.MockupType
	Platform string
	Limit    int
	Offset   int
}

// List returns the requester's own mockups ordered by most recently
// updated. The type filter runs in the query; the platform filter is
// applied to the already-paginated page, so a filtered page can hold
// fewer than limit rows.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]models.Mockup, int64, error) {
	if opts.Limit < 0 {
		return nil, 0, validationError("limit", "Limit must not be negative")
	}
	if opts.Offset < 0 {
		return nil, 0, validationError("offset", "Offset must not be negative")
	}
	if opts.Limit == 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	if opts.Type != "" && !models.ValidMockupType(opts.Type) {
		return nil, 0, validationError("type", "Invalid mockup type")
	}

	query := s.db.WithContext(ctx).Model(&models.Mockup{}).Where("owner_id = ?", ownerID)
	if opts.Type != "" {
		query = query.Where("type = ?", opts.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var page []models.Mockup
	if err := query.
		Order("updated_at DESC").
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&page).Error; err != nil {
		return nil, 0, err
	}

	if opts.Platform == "" {
		return page, total, nil
	}

	filtered := make([]models.Mockup, 0, len(page))
	for _, m := range page {
		if m.Platform == opts.Platform {
			filtered = append(filtered, m)
		}
	}
	return filtered, total, nil
}

// PublicMockup is the public view surface for isPublic mockups: content
// without owner PII.
type PublicMockup struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Type       models.MockupType `json:"type"`
	Platform   string            `json:"platform"`
	Data       string            `json:"data"`
	Appearance string            `json:"appearance"`
	CreatedAt  time.Time         `json:"created_at"`
}

// GetPublic returns the PII-free projection of a public mockup. Private
// mockups are indistinguishable from missing ones.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (*PublicMockup, error) {
	var m models.Mockup
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_public = ?", id, true).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &PublicMockup{
		ID:         m.ID,
		Name:       m.Name,
		Type:       m.Type,
		Platform:   m.Platform,
		Data:       m.Data,
		Appearance: m.Appearance,
		CreatedAt:  m.CreatedAt,
	}, nil
}
