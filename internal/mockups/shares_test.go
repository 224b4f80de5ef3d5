package mockups_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/mockups"
	"github.com/nadia/mockdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateShare(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)
	grantee := testutil.CreateTestUser(t, db)
	editor := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeChat, "discord")
	testutil.CreateTestShare(t, db, m, editor.ID, models.SharePermissionEdit)

	t.Run("owner shares with a user", func(t *testing.T) {
		share, err := svc.CreateShare(ctx, m.ID, requester(owner), mockups.CreateShareInput{
			SharedWithUserID: &grantee.ID,
			Permission:       models.SharePermissionView,
		})
		require.NoError(t, err)
		assert.Equal(t, m.ID, share.MockupID)
		assert.NotEmpty(t, share.ShareToken)
	})

	t.Run("email grantee is stored lowercased", func(t *testing.T) {
		share, err := svc.CreateShare(ctx, m.ID, requester(owner), mockups.CreateShareInput{
			SharedWithEmail: "Pal@Example.COM",
			Permission:      models.SharePermissionEdit,
		})
		require.NoError(t, err)
		assert.Equal(t, "pal@example.com", share.SharedWithEmail)
	})

	t.Run("exactly one grantee required", func(t *testing.T) {
		_, err := svc.CreateShare(ctx, m.ID, requester(owner), mockups.CreateShareInput{
			Permission: models.SharePermissionView,
		})
		ve, ok := mockups.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "shared_with")

		_, err = svc.CreateShare(ctx, m.ID, requester(owner), mockups.CreateShareInput{
			SharedWithUserID: &grantee.ID,
			SharedWithEmail:  "both@example.com",
			Permission:       models.SharePermissionView,
		})
		_, ok = mockups.AsValidation(err)
		assert.True(t, ok)
	})

	t.Run("owner tier is not grantable", func(t *testing.T) {
		_, err := svc.CreateShare(ctx, m.ID, requester(owner), mockups.CreateShareInput{
			SharedWithUserID: &grantee.ID,
			Permission:       "owner",
		})
		ve, ok := mockups.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "permission")
	})

	t.Run("expiry must be in the future", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		_, err := svc.CreateShare(ctx, m.ID, requester(owner), mockups.CreateShareInput{
			SharedWithUserID: &grantee.ID,
			Permission:       models.SharePermissionView,
			ExpiresAt:        &past,
		})
		ve, ok := mockups.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "expires_at")
	})

	t.Run("share-granted editor cannot share further", func(t *testing.T) {
		_, err := svc.CreateShare(ctx, m.ID, requester(editor), mockups.CreateShareInput{
			SharedWithUserID: &grantee.ID,
			Permission:       models.SharePermissionView,
		})
		assert.ErrorIs(t, err, mockups.ErrNotFound)
	})
}

func TestListShares(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)
	grantee := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeAI, "gemini")
	testutil.CreateTestShare(t, db, m, grantee.ID, models.SharePermissionView)
	expired := testutil.CreateTestShare(t, db, m, uuid.New(), models.SharePermissionEdit)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(expired).Update("expires_at", past).Error)

	t.Run("expired shares are still listed", func(t *testing.T) {
		shares, err := svc.ListShares(ctx, m.ID, requester(owner))
		require.NoError(t, err)
		assert.Len(t, shares, 2)
	})

	t.Run("non-owner cannot list", func(t *testing.T) {
		_, err := svc.ListShares(ctx, m.ID, requester(grantee))
		assert.ErrorIs(t, err, mockups.ErrNotFound)
	})
}

func TestUpdateShare(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)
	grantee := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeChat, "wechat")
	share := testutil.CreateTestShare(t, db, m, grantee.ID, models.SharePermissionView)

	t.Run("upgrade view to edit", func(t *testing.T) {
		edit := models.SharePermissionEdit
		updated, err := svc.UpdateShare(ctx, m.ID, share.ID, requester(owner), mockups.UpdateShareInput{
			Permission: &edit,
		})
		require.NoError(t, err)
		assert.Equal(t, models.SharePermissionEdit, updated.Permission)
	})

	t.Run("set and clear expiry", func(t *testing.T) {
		future := time.Now().Add(24 * time.Hour)
		updated, err := svc.UpdateShare(ctx, m.ID, share.ID, requester(owner), mockups.UpdateShareInput{
			ExpiresAt: &future,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.ExpiresAt)

		updated, err = svc.UpdateShare(ctx, m.ID, share.ID, requester(owner), mockups.UpdateShareInput{
			ClearExpiry: true,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.ExpiresAt)
	})

	t.Run("unknown share", func(t *testing.T) {
		_, err := svc.UpdateShare(ctx, m.ID, uuid.New(), requester(owner), mockups.UpdateShareInput{})
		assert.ErrorIs(t, err, mockups.ErrNotFound)
	})
}

func TestDeleteShare(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)
	grantee := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeChat, "messenger")
	share := testutil.CreateTestShare(t, db, m, grantee.ID, models.SharePermissionEdit)

	t.Run("revocation takes effect immediately", func(t *testing.T) {
		_, perm, err := svc.Get(ctx, m.ID, requester(grantee))
		require.NoError(t, err)
		assert.Equal(t, mockups.PermissionEdit, perm)

		require.NoError(t, svc.DeleteShare(ctx, m.ID, share.ID, requester(owner)))

		_, _, err = svc.Get(ctx, m.ID, requester(grantee))
		assert.ErrorIs(t, err, mockups.ErrNotFound)
	})

	t.Run("deleting again reports not found", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteShare(ctx, m.ID, share.ID, requester(owner)), mockups.ErrNotFound)
	})
}

// Walks a full collaboration: A shares with B, B edits, the share expires,
// B is locked out again.
func TestShareLifecycle(t *testing.T) {
	svc, db := newTestService(t)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, alice.ID, models.MockupTypeChat, "whatsapp")

	// Before sharing, Bob sees nothing.
	_, _, err := svc.Get(ctx, m.ID, requester(bob))
	require.ErrorIs(t, err, mockups.ErrNotFound)

	// Alice grants edit with an expiry.
	future := time.Now().Add(time.Hour)
	share, err := svc.CreateShare(ctx, m.ID, requester(alice), mockups.CreateShareInput{
		SharedWithUserID: &bob.ID,
		Permission:       models.SharePermissionEdit,
		ExpiresAt:        &future,
	})
	require.NoError(t, err)

	// Bob can now read and edit.
	_, perm, err := svc.Get(ctx, m.ID, requester(bob))
	require.NoError(t, err)
	require.Equal(t, mockups.PermissionEdit, perm)

	data := `{"messages":["added by bob"]}`
	updated, err := svc.Update(ctx, m.ID, requester(bob), mockups.UpdateInput{Data: &data})
	require.NoError(t, err)
	require.Equal(t, data, updated.Data)

	// But Bob cannot snapshot, delete, or re-share.
	_, err = svc.CreateVersion(ctx, m.ID, requester(bob), mockups.CreateVersionInput{})
	require.ErrorIs(t, err, mockups.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, m.ID, requester(bob)), mockups.ErrNotFound)

	// The share lapses. No sweep runs; the next read simply resolves none.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.MockupShare{}).Where("id = ?", share.ID).Update("expires_at", past).Error)

	_, _, err = svc.Get(ctx, m.ID, requester(bob))
	require.ErrorIs(t, err, mockups.ErrNotFound)

	// The row itself still exists for Alice to see.
	shares, err := svc.ListShares(ctx, m.ID, requester(alice))
	require.NoError(t, err)
	require.Len(t, shares, 1)

	// Bob's edit survives the lockout.
	current, _, err := svc.Get(ctx, m.ID, requester(alice))
	require.NoError(t, err)
	require.Equal(t, data, current.Data)
}
