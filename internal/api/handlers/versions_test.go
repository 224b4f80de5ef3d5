package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadia/mockdeck/internal/api/handlers"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHandler(t *testing.T) {
	router, tc := setupRouter(t)
	defer tc.Cleanup()

	m := testutil.CreateTestMockup(t, tc.DB, tc.User.ID, models.MockupTypeAI, "perplexity")
	editor, editorToken := secondUser(t, tc)
	testutil.CreateTestShare(t, tc.DB, m, editor.ID, models.SharePermissionEdit)
	base := "/api/v1/mockups/" + m.ID.String() + "/versions"

	var firstVersionID string

	t.Run("snapshots number sequentially", func(t *testing.T) {
		for want := 1; want <= 2; want++ {
			body := map[string]interface{}{"change_description": "snapshot"}
			req := testutil.AuthenticatedRequest(t, "POST", base, body, tc.Token)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, http.StatusCreated, rr.Code, "Body: %s", rr.Body.String())

			var resp handlers.VersionResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, want, resp.VersionNumber)
			if want == 1 {
				firstVersionID = resp.ID
			}
		}
	})

	t.Run("snapshot without a body", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", base, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var resp handlers.VersionResponse
		require.Equal(t, http.StatusCreated, rr.Code, "Body: %s", rr.Body.String())
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.VersionNumber)
	})

	t.Run("list omits payloads", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", base, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp []handlers.VersionSummary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 3)
		assert.Equal(t, 3, resp[0].VersionNumber)
		assert.NotContains(t, rr.Body.String(), `"data"`)
	})

	t.Run("single version carries the payload", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", base+"/"+firstVersionID, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.VersionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.JSONEq(t, m.Data, string(resp.Data))
	})

	t.Run("editor cannot touch version history", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", base, nil, editorToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		req = testutil.AuthenticatedRequest(t, "GET", base, nil, editorToken)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("restore rewinds content", func(t *testing.T) {
		body := map[string]interface{}{"data": map[string]interface{}{"messages": []string{"diverged"}}}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/mockups/"+m.ID.String(), body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		req = testutil.AuthenticatedRequest(t, "POST", base+"/"+firstVersionID+"/restore", nil, tc.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "Body: %s", rr.Body.String())

		var resp handlers.MockupResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.JSONEq(t, m.Data, string(resp.Data))
	})

	t.Run("delete a version", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", base+"/"+firstVersionID, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		req = testutil.AuthenticatedRequest(t, "GET", base+"/"+firstVersionID, nil, tc.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
