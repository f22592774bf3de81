package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"educprogress/backend/config"
	"educprogress/backend/middleware"
	"educprogress/backend/models"
	"educprogress/backend/services"
	"educprogress/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	kid    models.User
	parent models.User
	module models.Module
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, utils.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	identity := services.NewGormIdentityStore(db)
	reader := services.NewProgressReader(db)
	notifications := services.NewNotificationService(db, services.SystemClock{})
	progress := services.NewProgressService(db, identity, services.NewGormModuleCatalog(db), notifications, reader, log, services.ProgressServiceOptions{})

	app := fiber.New()
	app.Use(middleware.LoggingMiddleware(log))
	SetupRoutes(app, Deps{
		DB:            db,
		Progress:      progress,
		Summary:       services.NewSummaryService(identity, reader, nil, log),
		Notifications: notifications,
		Log:           log,
	}, cfg)

	s := &testServer{app: app, db: db}
	s.parent = models.User{Username: "mum", Email: "mum@example.com", PasswordHash: "x", Role: models.RoleParent}
	require.NoError(t, db.Create(&s.parent).Error)
	s.kid = models.User{Username: "kid", Email: "kid@example.com", PasswordHash: "x", FirstName: "Sam", LastName: "Lee", Role: models.RoleChild, ParentID: &s.parent.ID}
	require.NoError(t, db.Create(&s.kid).Error)
	s.module = models.Module{Title: "Counting", Subject: models.SubjectMathematics, MaxScore: 100, IsActive: true}
	require.NoError(t, db.Create(&s.module).Error)
	for _, b := range []models.Badge{
		{Name: "First Steps", Type: models.BadgeFirstTime, IsActive: true},
		{Name: "Perfectionist", Type: models.BadgePerfectScore, IsActive: true},
	} {
		require.NoError(t, db.Create(&b).Error)
	}
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestProgressLifecycle(t *testing.T) {
	s := newTestServer(t, &config.Config{})

	status, env := s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"userId": s.kid.ID, "moduleId": s.module.ID, "status": 2, "score": 100, "timeSpentMinutes": 30,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var created models.ProgressView
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Sam Lee", created.UserName)
	assert.Equal(t, "Counting", created.ModuleTitle)
	assert.Equal(t, models.StatusCompleted, created.Status)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/progress/%d", created.ID), map[string]interface{}{
		"status": 2, "score": 90, "timeSpentMinutes": 35, "attempts": 2,
	})
	require.Equal(t, http.StatusOK, status)
	var updated models.ProgressView
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 90, updated.Score)
	assert.Equal(t, 2, updated.Attempts)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/user/%d", s.kid.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.ProgressView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/parent/%d", s.parent.ID), nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/badges/%d", s.kid.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var badges []models.EarnedBadgeView
	require.NoError(t, json.Unmarshal(env.Data, &badges))
	assert.Len(t, badges, 2)

	status, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/progress/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/progress/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateProgress_Errors(t *testing.T) {
	s := newTestServer(t, &config.Config{})

	status, env := s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"userId": s.kid.ID, "moduleId": 999, "status": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, _ = s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"userId": 999, "moduleId": s.module.ID, "status": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"moduleId": s.module.ID, "status": 9, "score": -1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Details, "userId")
	assert.Contains(t, env.Details, "status")
	assert.Contains(t, env.Details, "score")

	status, _ = s.do(t, http.MethodGet, "/api/progress/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t, &config.Config{})

	status, _ := s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"userId": s.kid.ID, "moduleId": s.module.ID, "status": 2, "score": 100, "timeSpentMinutes": 30,
	})
	require.Equal(t, http.StatusCreated, status)

	unread := func() int64 {
		status, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/notifications/%d/unread-count", s.kid.ID), nil)
		require.Equal(t, http.StatusOK, status)
		var body struct {
			Count int64 `json:"count"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		return body.Count
	}
	// completion plus two badges
	assert.Equal(t, int64(3), unread())

	status, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/notifications/%d", s.kid.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var notes []models.NotificationView
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 3)

	status, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/progress/notifications/%d/read", notes[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, int64(2), unread())

	status, _ = s.do(t, http.MethodPut, "/api/progress/notifications/9999/read", nil)
	assert.Equal(t, http.StatusNotFound, status)

	for i := 0; i < 2; i++ {
		status, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/progress/notifications/%d/read-all", s.kid.ID), nil)
		assert.Equal(t, http.StatusNoContent, status)
		assert.Zero(t, unread())
	}
}

func TestSummaryEndpoints(t *testing.T) {
	s := newTestServer(t, &config.Config{})

	status, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/child-summary/%d", s.kid.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var summary models.ChildProgressSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "Sam Lee", summary.ChildName)
	assert.Zero(t, summary.TotalModules)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/children-summary/%d", s.parent.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.ChildProgressSummary
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, s.kid.ID, list[0].ChildID)

	status, _ = s.do(t, http.MethodGet, "/api/progress/child-summary/9999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &config.Config{JWTSecret: "secret"})

	status, env := s.do(t, http.MethodGet, "/api/progress/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestAuthRequiredWhenSecretSet(t *testing.T) {
	s := newTestServer(t, &config.Config{JWTSecret: "secret"})
	path := fmt.Sprintf("/api/progress/user/%d", s.kid.ID)

	status, _ := s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": s.parent.ID}).SignedString([]byte("secret"))
	require.NoError(t, err)

	status, _ = s.do(t, http.MethodGet, path, nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
}

func TestCreateProgress_StorageFailureIs500(t *testing.T) {
	s := newTestServer(t, &config.Config{})
	require.NoError(t, s.db.Migrator().DropTable(&models.ProgressRecord{}))

	status, env := s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"userId": s.kid.ID, "moduleId": s.module.ID, "status": 1,
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
}
