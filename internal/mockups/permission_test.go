package mockups_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/mockups"
	"github.com/stretchr/testify/assert"
)

func TestResolvePermission(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	mockup := func(isPublic bool) *models.Mockup {
		return &models.Mockup{
			Base:     models.Base{ID: uuid.New()},
			OwnerID:  ownerID,
			Name:     "Test",
			Type:     models.MockupTypeChat,
			Platform: "whatsapp",
			IsPublic: isPublic,
		}
	}

	share := func(m *models.Mockup, userID *uuid.UUID, email string, perm models.SharePermission, expires *time.Time) models.MockupShare {
		return models.MockupShare{
			Base:             models.Base{ID: uuid.New()},
			MockupID:         m.ID,
			OwnerID:          m.OwnerID,
			SharedWithUserID: userID,
			SharedWithEmail:  email,
			Permission:       perm,
			ExpiresAt:        expires,
		}
	}

	t.Run("owner always gets owner tier", func(t *testing.T) {
		m := mockup(false)
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: ownerID}, nil, now)
		assert.Equal(t, mockups.PermissionOwner, perm)
	})

	t.Run("stranger gets none on private mockup", func(t *testing.T) {
		m := mockup(false)
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, nil, now)
		assert.Equal(t, mockups.PermissionNone, perm)
	})

	t.Run("public grants view to anyone", func(t *testing.T) {
		m := mockup(true)
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, nil, now)
		assert.Equal(t, mockups.PermissionView, perm)
	})

	t.Run("anonymous gets view on public mockup", func(t *testing.T) {
		m := mockup(true)
		perm := mockups.ResolvePermission(m, nil, nil, now)
		assert.Equal(t, mockups.PermissionView, perm)
	})

	t.Run("anonymous gets none on private mockup", func(t *testing.T) {
		m := mockup(false)
		perm := mockups.ResolvePermission(m, nil, nil, now)
		assert.Equal(t, mockups.PermissionNone, perm)
	})

	t.Run("anonymous never matches shares", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, nil, "anyone@example.com", models.SharePermissionEdit, nil),
		}
		perm := mockups.ResolvePermission(m, nil, shares, now)
		assert.Equal(t, mockups.PermissionNone, perm)
	})

	t.Run("user share grants its tier", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, &otherID, "", models.SharePermissionEdit, nil),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, shares, now)
		assert.Equal(t, mockups.PermissionEdit, perm)
	})

	t.Run("email share matches case-insensitively", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, nil, "friend@example.com", models.SharePermissionView, nil),
		}
		r := &mockups.Requester{ID: otherID, Email: "Friend@Example.COM"}
		perm := mockups.ResolvePermission(m, r, shares, now)
		assert.Equal(t, mockups.PermissionView, perm)
	})

	t.Run("expired share is inert", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, &otherID, "", models.SharePermissionEdit, &past),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, shares, now)
		assert.Equal(t, mockups.PermissionNone, perm)
	})

	t.Run("share expiring exactly now is already inert", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, &otherID, "", models.SharePermissionEdit, &now),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, shares, now)
		assert.Equal(t, mockups.PermissionNone, perm)
	})

	t.Run("unexpired share still counts", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, &otherID, "", models.SharePermissionEdit, &future),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, shares, now)
		assert.Equal(t, mockups.PermissionEdit, perm)
	})

	t.Run("most permissive matching share wins", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, &otherID, "", models.SharePermissionView, nil),
			share(m, nil, "friend@example.com", models.SharePermissionEdit, nil),
		}
		r := &mockups.Requester{ID: otherID, Email: "friend@example.com"}
		perm := mockups.ResolvePermission(m, r, shares, now)
		assert.Equal(t, mockups.PermissionEdit, perm)
	})

	t.Run("expired edit share does not beat live view share", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, &otherID, "", models.SharePermissionEdit, &past),
			share(m, &otherID, "", models.SharePermissionView, nil),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, shares, now)
		assert.Equal(t, mockups.PermissionView, perm)
	})

	t.Run("public floor combines with edit share", func(t *testing.T) {
		m := mockup(true)
		shares := []models.MockupShare{
			share(m, &otherID, "", models.SharePermissionEdit, nil),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, shares, now)
		assert.Equal(t, mockups.PermissionEdit, perm)
	})

	t.Run("share for a different mockup is ignored", func(t *testing.T) {
		m := mockup(false)
		other := mockup(false)
		shares := []models.MockupShare{
			share(other, &otherID, "", models.SharePermissionEdit, nil),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: otherID}, shares, now)
		assert.Equal(t, mockups.PermissionNone, perm)
	})

	t.Run("owner tier beats any share", func(t *testing.T) {
		m := mockup(false)
		shares := []models.MockupShare{
			share(m, &ownerID, "", models.SharePermissionView, nil),
		}
		perm := mockups.ResolvePermission(m, &mockups.Requester{ID: ownerID}, shares, now)
		assert.Equal(t, mockups.PermissionOwner, perm)
	})
}

func TestPermissionTiers(t *testing.T) {
	assert.True(t, mockups.PermissionOwner.CanView())
	assert.True(t, mockups.PermissionOwner.CanEdit())
	assert.True(t, mockups.PermissionEdit.CanView())
	assert.True(t, mockups.PermissionEdit.CanEdit())
	assert.True(t, mockups.PermissionView.CanView())
	assert.False(t, mockups.PermissionView.CanEdit())
	assert.False(t, mockups.PermissionNone.CanView())
	assert.False(t, mockups.PermissionNone.CanEdit())
}

func TestIsLiteralOwner(t *testing.T) {
	ownerID := uuid.New()
	editorID := uuid.New()
	m := &models.Mockup{Base: models.Base{ID: uuid.New()}, OwnerID: ownerID}

	assert.True(t, mockups.IsLiteralOwner(m, &mockups.Requester{ID: ownerID}))
	assert.False(t, mockups.IsLiteralOwner(m, &mockups.Requester{ID: editorID}))
	assert.False(t, mockups.IsLiteralOwner(m, nil))
}
