package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectHandler(t *testing.T) {
	router, tc := setupRouter(t)
	defer tc.Cleanup()

	var projectID string

	t.Run("create", func(t *testing.T) {
		body := map[string]interface{}{"name": "Campaign shots", "description": "Q3 assets"}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/projects", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code, "Body: %s", rr.Body.String())

		var resp models.Project
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Campaign shots", resp.Name)
		assert.Equal(t, tc.User.ID, resp.OwnerID)
		projectID = resp.ID.String()
	})

	t.Run("name required", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/projects", map[string]interface{}{}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list is owner-scoped", func(t *testing.T) {
		other, otherToken := secondUser(t, tc)
		testutil.CreateTestProject(t, tc.DB, other.ID)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/projects", nil, otherToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp []models.Project
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
		assert.Equal(t, other.ID, resp[0].OwnerID)
	})

	t.Run("update", func(t *testing.T) {
		body := map[string]interface{}{"name": "Renamed project"}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/projects/"+projectID, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp models.Project
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Renamed project", resp.Name)
	})

	t.Run("delete detaches mockups instead of deleting them", func(t *testing.T) {
		m := testutil.CreateTestMockup(t, tc.DB, tc.User.ID, models.MockupTypeChat, "whatsapp")
		require.NoError(t, tc.DB.Model(m).Update("project_id", projectID).Error)

		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/projects/"+projectID, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "Body: %s", rr.Body.String())

		var survivor models.Mockup
		require.NoError(t, tc.DB.First(&survivor, "id = ?", m.ID).Error)
		assert.Nil(t, survivor.ProjectID)
	})

	t.Run("cannot touch another user's project", func(t *testing.T) {
		project := testutil.CreateTestProject(t, tc.DB, tc.User.ID)
		_, otherToken := secondUser(t, tc)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/projects/"+project.ID.String(), nil, otherToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		req = testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/projects/"+project.ID.String(), nil, otherToken)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
