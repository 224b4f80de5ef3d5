package mockups

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/pkg/token"
	"gorm.io/gorm"
)

type CreateShareInput struct {
	SharedWithUserID *uuid.UUID
	SharedWithEmail  string
	Permission       models.SharePermission
	ExpiresAt        *time.Time
}

func (in CreateShareInput) validate(now time.Time) error {
	fields := make(map[string]string)

	hasUser := in.SharedWithUserID != nil
	hasEmail := in.SharedWithEmail != ""
	if hasUser == hasEmail {
		fields["shared_with"] = "Exactly one of shared_with_user_id or shared_with_email is required"
	}
	if in.Permission != models.SharePermissionView && in.Permission != models.SharePermissionEdit {
		fields["permission"] = "Permission must be view or edit"
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		fields["expires_at"] = "Expiry must be in the future"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateShare grants view or edit on a mockup. Only the literal owner may
// share. Email grantees are stored lowercased; matching is
// case-insensitive either way.
func (s *Service) CreateShare(ctx context.Context, mockupID uuid.UUID, r *Requester, in CreateShareInput) (*models.MockupShare, error) {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return nil, err
	}

	if err := in.validate(time.Now()); err != nil {
		return nil, err
	}

	shareToken, err := token.New(16)
	if err != nil {
		return nil, err
	}

	share := models.MockupShare{
		MockupID:         m.ID,
		OwnerID:          m.OwnerID,
		SharedWithUserID: in.SharedWithUserID,
		SharedWithEmail:  strings.ToLower(in.SharedWithEmail),
		Permission:       in.Permission,
		ShareToken:       shareToken,
		ExpiresAt:        in.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(&share).Error; err != nil {
		return nil, err
	}

	return &share, nil
}

// ListShares returns every share row on a mockup, expired ones included.
// Expired shares still exist, they are just inert. Owner only.
func (s *Service) ListShares(ctx context.Context, mockupID uuid.UUID, r *Requester) ([]models.MockupShare, error) {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return nil, err
	}

	var shares []models.MockupShare
	if err := s.db.WithContext(ctx).
		Where("mockup_id = ?", m.ID).
		Order("created_at DESC").
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

type UpdateShareInput struct {
	Permission  *models.SharePermission
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// UpdateShare changes a share's permission or expiry. Owner only.
func (s *Service) UpdateShare(ctx context.Context, mockupID, shareID uuid.UUID, r *Requester, in UpdateShareInput) (*models.MockupShare, error) {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return nil, err
	}

	var share models.MockupShare
	if err := s.db.WithContext(ctx).
		Where("id = ? AND mockup_id = ?", shareID, m.ID).
		First(&share).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.Permission != nil {
		if *in.Permission != models.SharePermissionView && *in.Permission != models.SharePermissionEdit {
			return nil, validationError("permission", "Permission must be view or edit")
		}
		share.Permission = *in.Permission
	}
	if in.ClearExpiry {
		share.ExpiresAt = nil
	} else if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(time.Now()) {
			return nil, validationError("expires_at", "Expiry must be in the future")
		}
		share.ExpiresAt = in.ExpiresAt
	}

	if err := s.db.WithContext(ctx).Save(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// DeleteShare revokes a grant. Owner only.
func (s *Service) DeleteShare(ctx context.Context, mockupID, shareID uuid.UUID, r *Requester) error {
	m, err := s.ownedMockup(ctx, mockupID, r)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND mockup_id = ?", shareID, m.ID).
		Delete(&models.MockupShare{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ownedMockup loads a mockup and requires literal ownership. Non-owners
// and missing rows get the same ErrNotFound.
func (s *Service) ownedMockup(ctx context.Context, id uuid.UUID, r *Requester) (*models.Mockup, error) {
	var m models.Mockup
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !IsLiteralOwner(&m, r) {
		return nil, ErrNotFound
	}
	return &m, nil
}
