package mockups_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/mockups"
	"github.com/nadia/mockdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateVersion(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)
	editor := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeChat, "whatsapp")
	testutil.CreateTestShare(t, db, m, editor.ID, models.SharePermissionEdit)

	t.Run("numbers are assigned sequentially", func(t *testing.T) {
		for want := 1; want <= 3; want++ {
			v, err := svc.CreateVersion(ctx, m.ID, requester(owner), mockups.CreateVersionInput{})
			require.NoError(t, err)
			assert.Equal(t, want, v.VersionNumber)
		}
	})

	t.Run("snapshot captures current content", func(t *testing.T) {
		data := `{"messages":["current state"]}`
		_, err := svc.Update(ctx, m.ID, requester(owner), mockups.UpdateInput{Data: &data})
		require.NoError(t, err)

		v, err := svc.CreateVersion(ctx, m.ID, requester(owner), mockups.CreateVersionInput{
			ChangeDescription: "after big edit",
		})
		require.NoError(t, err)
		assert.Equal(t, data, v.Data)
		assert.Equal(t, "after big edit", v.ChangeDescription)
		assert.Equal(t, owner.ID, v.UserID)
	})

	t.Run("deleting a middle version leaves a gap", func(t *testing.T) {
		var v2 models.MockupVersion
		require.NoError(t, db.Where("mockup_id = ? AND version_number = ?", m.ID, 2).First(&v2).Error)
		require.NoError(t, svc.DeleteVersion(ctx, m.ID, v2.ID, requester(owner)))

		// Next snapshot continues from the surviving maximum.
		v, err := svc.CreateVersion(ctx, m.ID, requester(owner), mockups.CreateVersionInput{})
		require.NoError(t, err)
		assert.Equal(t, 5, v.VersionNumber)
	})

	t.Run("change description length capped", func(t *testing.T) {
		_, err := svc.CreateVersion(ctx, m.ID, requester(owner), mockups.CreateVersionInput{
			ChangeDescription: strings.Repeat("x", 501),
		})
		ve, ok := mockups.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "change_description")
	})

	t.Run("share-granted edit cannot snapshot", func(t *testing.T) {
		_, err := svc.CreateVersion(ctx, m.ID, requester(editor), mockups.CreateVersionInput{})
		assert.ErrorIs(t, err, mockups.ErrNotFound)
	})

	t.Run("rival snapshot with the same number conflicts", func(t *testing.T) {
		// Slip an identical version number in between the max query and
		// the insert, the way a concurrent request would.
		raced := false
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register("rival_snapshot", func(tx *gorm.DB) {
			if raced {
				return
			}
			v, ok := tx.Statement.Dest.(*models.MockupVersion)
			if !ok {
				return
			}
			raced = true
			rival := models.MockupVersion{
				MockupID:      v.MockupID,
				UserID:        v.UserID,
				VersionNumber: v.VersionNumber,
				Name:          v.Name,
				Data:          v.Data,
				Appearance:    v.Appearance,
			}
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error)
		}))
		defer db.Callback().Create().Remove("rival_snapshot")

		_, err := svc.CreateVersion(ctx, m.ID, requester(owner), mockups.CreateVersionInput{})
		assert.ErrorIs(t, err, mockups.ErrVersionConflict)
	})
}

func TestListVersions(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeAI, "perplexity")
	for i := 1; i <= 3; i++ {
		testutil.CreateTestVersion(t, db, m, i)
	}

	t.Run("newest first, payloads omitted", func(t *testing.T) {
		versions, err := svc.ListVersions(ctx, m.ID, requester(owner))
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Equal(t, 3, versions[0].VersionNumber)
		assert.Equal(t, 1, versions[2].VersionNumber)
		assert.Empty(t, versions[0].Data)
		assert.Empty(t, versions[0].Appearance)
	})

	t.Run("single read returns the full payload", func(t *testing.T) {
		versions, err := svc.ListVersions(ctx, m.ID, requester(owner))
		require.NoError(t, err)

		full, err := svc.GetVersion(ctx, m.ID, versions[0].ID, requester(owner))
		require.NoError(t, err)
		assert.Equal(t, m.Data, full.Data)
	})

	t.Run("version of another mockup is unreachable", func(t *testing.T) {
		other := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeAI, "grok")
		v := testutil.CreateTestVersion(t, db, other, 1)

		_, err := svc.GetVersion(ctx, m.ID, v.ID, requester(owner))
		assert.ErrorIs(t, err, mockups.ErrNotFound)
	})
}

func TestRestoreVersion(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)
	ctx := testutil.TestContext(t)

	m := testutil.CreateTestMockup(t, db, owner.ID, models.MockupTypeChat, "telegram")
	project := testutil.CreateTestProject(t, db, owner.ID)

	// Snapshot the original content, then diverge.
	v, err := svc.CreateVersion(ctx, m.ID, requester(owner), mockups.CreateVersionInput{})
	require.NoError(t, err)

	yes := true
	name := "Diverged"
	data := `{"messages":["diverged"]}`
	_, err = svc.Update(ctx, m.ID, requester(owner), mockups.UpdateInput{
		Name:      &name,
		Data:      &data,
		ProjectID: &project.ID,
		IsPublic:  &yes,
	})
	require.NoError(t, err)

	t.Run("restore brings content back, leaves the rest alone", func(t *testing.T) {
		restored, err := svc.RestoreVersion(ctx, m.ID, v.ID, requester(owner))
		require.NoError(t, err)

		assert.Equal(t, m.Name, restored.Name)
		assert.Equal(t, m.Data, restored.Data)
		assert.Equal(t, m.Appearance, restored.Appearance)

		// Visibility and project assignment survive the restore.
		assert.True(t, restored.IsPublic)
		require.NotNil(t, restored.ProjectID)
		assert.Equal(t, project.ID, *restored.ProjectID)
	})

	t.Run("restore does not create a safety snapshot", func(t *testing.T) {
		versions, err := svc.ListVersions(ctx, m.ID, requester(owner))
		require.NoError(t, err)
		assert.Len(t, versions, 1)
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := svc.RestoreVersion(ctx, m.ID, uuid.New(), requester(owner))
		assert.ErrorIs(t, err, mockups.ErrNotFound)
	})
}
