package mockups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
	"gorm.io/gorm"
)

const (
	maxChangeDescriptionLen = 500
	versionListLimit        = 50
)

// versionSummaryFields excludes the heavy data/appearance payloads from
// list views; a single-version read returns the full row.
const versionSummaryFields = "id, created_at, updated_at, mockup_id, user_id, version_number, name, thumbnail_url, change_description"

type CreateVersionInput struct {
	ChangeDescription string
}

// CreateVersion snapshots the mockup's current content into an immutable
// version row. Numbering is max+1 per mockup inside a transaction; the
// composite unique index turns a concurrent duplicate into
// ErrVersionConflict instead of a silent duplicate number.
//
// Snapshots are explicit user actions, not an automatic side effect of
// editing. Literal owner only.
func (s *Service) CreateVersion(ctx context.Context, mockupID uuid.UUID, r *Requester, in CreateVersionInput) (*models.MockupVersion, error) {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return nil, err
	}

	if len(in.ChangeDescription) > maxChangeDescriptionLen {
		return nil, validationError("change_description", "Change description must be at most 500 characters")
	}

	var version models.MockupVersion
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		if err := tx.Model(&models.MockupVersion{}).
			Where("mockup_id = ?", m.ID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}

		version = models.MockupVersion{
			MockupID:          m.ID,
			UserID:            r.ID,
			VersionNumber:     maxNumber + 1,
			Name:              m.Name,
			Data:              m.Data,
			Appearance:        m.Appearance,
			ThumbnailURL:      m.ThumbnailURL,
			ChangeDescription: in.ChangeDescription,
		}
		return tx.Create(&version).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	return &version, nil
}

// ListVersions returns up to 50 most recent versions, newest first, as
// summaries without the content payloads. Owner only.
func (s *Service) ListVersions(ctx context.Context, mockupID uuid.UUID, r *Requester) ([]models.MockupVersion, error) {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return nil, err
	}

	var versions []models.MockupVersion
	if err := s.db.WithContext(ctx).
		Select(versionSummaryFields).
		Where("mockup_id = ?", m.ID).
		Order("version_number DESC").
		Limit(versionListLimit).
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// GetVersion returns one version with its full payload. Owner only.
func (s *Service) GetVersion(ctx context.Context, mockupID, versionID uuid.UUID, r *Requester) (*models.MockupVersion, error) {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return nil, err
	}

	var version models.MockupVersion
	if err := s.db.WithContext(ctx).
		Where("id = ? AND mockup_id = ?", versionID, m.ID).
		First(&version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// RestoreVersion copies a version's content fields back onto the live
// mockup. Visibility, project assignment and ownership are untouched.
//
// Restoring does not snapshot the pre-restore state; callers that want a
// safety copy must CreateVersion first. Owner only.
func (s *Service) RestoreVersion(ctx context.Context, mockupID, versionID uuid.UUID, r *Requester) (*models.Mockup, error) {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return nil, err
	}

	var version models.MockupVersion
	if err := s.db.WithContext(ctx).
		Where("id = ? AND mockup_id = ?", versionID, m.ID).
		First(&version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m.Name = version.Name
	m.Data = version.Data
	m.Appearance = version.Appearance
	m.ThumbnailURL = version.ThumbnailURL

	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteVersion removes one version row. Remaining versions keep their
// numbers; gaps are fine, only creation-time monotonicity is guaranteed.
// Owner only.
func (s *Service) DeleteVersion(ctx context.Context, mockupID, versionID uuid.UUID, r *Requester) error {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND mockup_id = ?", versionID, m.ID).
		Delete(&models.MockupVersion{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
