package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"educprogress/backend/config"
	"educprogress/backend/models"
	"educprogress/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidateStruct(t *testing.T) {
	type req struct {
		UserID uint `json:"userId" validate:"required"`
		Status int  `json:"status" validate:"gte=0,lte=4"`
		Score  int  `json:"score" validate:"gte=0"`
	}

	assert.Nil(t, ValidateStruct(req{UserID: 1, Status: 4}))

	errs := ValidateStruct(req{Status: 5, Score: -1})
	require.Len(t, errs, 3)
	assert.Equal(t, "is required", errs["userId"])
	assert.Equal(t, "must be less than or equal to 4", errs["status"])
	assert.Equal(t, "must be greater than or equal to 0", errs["score"])
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LoggerConfig{Format: "json", Level: "debug", Output: &buf})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("learner_id", 3).Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, float64(3), line["learner_id"])

	assert.Equal(t, logrus.InfoLevel, InitLogger(LoggerConfig{Level: "nonsense", Output: &buf}).GetLevel())
}

func TestInitTracer_Disabled(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	shutdown := InitTracer(false, "test", log)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSeedIsIdempotent(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "seed.db")}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	log, hook := logtest.NewNullLogger()
	identity := services.NewGormIdentityStore(db)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db, identity, "pa55word", log))
	require.NoError(t, Seed(ctx, db, identity, "pa55word", log))

	var modules, badges, users int64
	require.NoError(t, db.Model(&models.Module{}).Count(&modules).Error)
	require.NoError(t, db.Model(&models.Badge{}).Count(&badges).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(len(DemoModules)), modules)
	assert.Equal(t, int64(len(DemoBadges)), badges)
	assert.Equal(t, int64(2), users)

	var child models.User
	require.NoError(t, db.Where("username = ?", "demo_child").First(&child).Error)
	require.NotNil(t, child.ParentID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(child.PasswordHash), []byte("pa55word")))

	children, err := identity.FindChildrenOf(ctx, *child.ParentID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	var inert int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			inert++
		}
	}
	// completion, streak and special on each of the two runs
	assert.Equal(t, 6, inert)
}

func TestResponseEnvelopes(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return Success(c, fiber.StatusOK, fiber.Map{"n": 1}) })
	app.Get("/bad", func(c *fiber.Ctx) error { return BadRequest(c, "Invalid id") })
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return ValidationError(c, map[string]string{"score": "must be greater than or equal to 0"})
	})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/ok", http.StatusOK, `{"success":true,"data":{"n":1}}`},
		{"/bad", http.StatusBadRequest, `{"success":false,"error":"Bad Request","message":"Invalid id"}`},
		{"/invalid", http.StatusUnprocessableEntity, `{"success":false,"error":"Validation Error","details":{"score":"must be greater than or equal to 0"}}`},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, tt.body, string(body), tt.path)
	}
}
