package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/auth"
	"github.com/hugh/alumni-hub/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing. The pool is
// capped at one connection so concurrent transactions serialize instead of
// hitting SQLite's single-writer lock error.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Faculty{},
		&models.Major{},
		&models.Batch{},
		&models.AlumniProfile{},
		&models.Event{},
		&models.EventRegistration{},
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

// TestLogger discards everything.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestUser creates a verified, active alumni user
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("Testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:         "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:  hash,
		FullName:      "Test User",
		Role:          models.RoleAlumni,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestAdmin creates a verified admin user
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote test admin: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreateTestEvent creates an upcoming event with the given capacity.
// capacity < 0 means unlimited.
func CreateTestEvent(t *testing.T, db *gorm.DB, createdBy uuid.UUID, capacity int) *models.Event {
	t.Helper()

	event := &models.Event{
		Base: models.Base{
			ID: uuid.New(),
		},
		Title:     "Test Event " + uuid.New().String()[:8],
		EventDate: time.Now().Add(48 * time.Hour),
		Location:  "Main Hall",
		CreatedBy: createdBy,
	}
	if capacity >= 0 {
		event.MaxParticipants = &capacity
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}

	return event
}

// CreateTestFaculty creates a faculty with one major
func CreateTestFaculty(t *testing.T, db *gorm.DB) (*models.Faculty, *models.Major) {
	t.Helper()

	faculty := &models.Faculty{
		Base: models.Base{ID: uuid.New()},
		Name: "Faculty of Engineering " + uuid.New().String()[:8],
	}
	if err := db.Create(faculty).Error; err != nil {
		t.Fatalf("failed to create test faculty: %v", err)
	}

	major := &models.Major{
		Base:      models.Base{ID: uuid.New()},
		FacultyID: faculty.ID,
		Name:      "Software Engineering",
		Code:      "SE",
	}
	if err := db.Create(major).Error; err != nil {
		t.Fatalf("failed to create test major: %v", err)
	}

	return faculty, major
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(
		"test-secret-key-that-is-long-enough-for-hs256",
		"alumni-hub-api",
		"alumni-hub-client",
		24*time.Hour,
	)
	if err != nil {
		t.Fatalf("failed to create test JWT service: %v", err)
	}
	return svc
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email, user.Role)
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

// DecodeResponse decodes the recorded response body into v
func DecodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Mailer     *RecordingMailer
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, verified user and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService(t)
	user := CreateTestUser(t, db)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Mailer:     NewRecordingMailer(),
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

// SentMail records one dispatched message.
type SentMail struct {
	Kind  string // "verification" or "reset"
	To    string
	Name  string
	Token string
}

// RecordingMailer captures dispatched mail instead of sending it.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentMail
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

func (m *RecordingMailer) SendEmailVerification(_ context.Context, to, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{Kind: "verification", To: to, Name: name, Token: token})
	return nil
}

func (m *RecordingMailer) SendPasswordReset(_ context.Context, to, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{Kind: "reset", To: to, Name: name, Token: token})
	return nil
}

// Sent returns a copy of the captured messages.
func (m *RecordingMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
