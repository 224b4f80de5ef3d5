package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/auth"
	"github.com/nadia/mockdeck/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Mockup{},
		&models.MockupShare{},
		&models.MockupVersion{},
		&models.ApiKey{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestUser creates a test user with a unique email
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestProject creates a test project for the given owner
func CreateTestProject(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *models.Project {
	t.Helper()

	project := &models.Project{
		Base: models.Base{
			ID: uuid.New(),
		},
		OwnerID: ownerID,
		Name:    "Test Project",
	}

	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateTestMockup creates a mockup owned by ownerID
func CreateTestMockup(t *testing.T, db *gorm.DB, ownerID uuid.UUID, mockupType models.MockupType, platform string) *models.Mockup {
	t.Helper()

	m := &models.Mockup{
		Base: models.Base{
			ID: uuid.New(),
		},
		OwnerID:    ownerID,
		Name:       "Test Mockup",
		Type:       mockupType,
		Platform:   platform,
		Data:       `{"messages":[]}`,
		Appearance: `{"theme":"light"}`,
	}

	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test mockup: %v", err)
	}

	return m
}

// CreateTestShare grants view or edit on a mockup to a user
func CreateTestShare(t *testing.T, db *gorm.DB, m *models.Mockup, userID uuid.UUID, permission models.SharePermission) *models.MockupShare {
	t.Helper()

	share := &models.MockupShare{
		Base: models.Base{
			ID: uuid.New(),
		},
		MockupID:         m.ID,
		OwnerID:          m.OwnerID,
		SharedWithUserID: &userID,
		Permission:       permission,
		ShareToken:       uuid.New().String(),
	}

	if err := db.Create(share).Error; err != nil {
		t.Fatalf("failed to create test share: %v", err)
	}

	return share
}

// CreateTestEmailShare grants view or edit on a mockup to an email address
func CreateTestEmailShare(t *testing.T, db *gorm.DB, m *models.Mockup, email string, permission models.SharePermission) *models.MockupShare {
	t.Helper()

	share := &models.MockupShare{
		Base: models.Base{
			ID: uuid.New(),
		},
		MockupID:        m.ID,
		OwnerID:         m.OwnerID,
		SharedWithEmail: email,
		Permission:      permission,
		ShareToken:      uuid.New().String(),
	}

	if err := db.Create(share).Error; err != nil {
		t.Fatalf("failed to create test share: %v", err)
	}

	return share
}

// CreateTestVersion snapshots the mockup's current content at the given number
func CreateTestVersion(t *testing.T, db *gorm.DB, m *models.Mockup, number int) *models.MockupVersion {
	t.Helper()

	version := &models.MockupVersion{
		Base: models.Base{
			ID: uuid.New(),
		},
		MockupID:      m.ID,
		UserID:        m.OwnerID,
		VersionNumber: number,
		Name:          m.Name,
		Data:          m.Data,
		Appearance:    m.Appearance,
		ThumbnailURL:  m.ThumbnailURL,
	}

	if err := db.Create(version).Error; err != nil {
		t.Fatalf("failed to create test version: %v", err)
	}

	return version
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		User:       user,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
