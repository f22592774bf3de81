package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"educprogress/backend/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// stepClock advances one second on every read so ordering is deterministic.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	DB            *gorm.DB
	Clock         *stepClock
	Log           *logrus.Logger
	LogHook       *logtest.Hook
	Identity      *GormIdentityStore
	Reader        *ProgressReader
	Notifications *NotificationService
	Progress      *ProgressService
	Summary       *SummaryService
	Badges        map[models.BadgeType]models.Badge
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Module{},
		&models.ProgressRecord{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
	))
	return db
}

func newTestEnv(t *testing.T, opts ...func(*ProgressServiceOptions)) *testEnv {
	t.Helper()

	db := newTestDB(t)
	clock := newStepClock()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	o := ProgressServiceOptions{Clock: clock}
	for _, opt := range opts {
		opt(&o)
	}

	identity := NewGormIdentityStore(db)
	reader := NewProgressReader(db)
	notifications := NewNotificationService(db, clock)

	env := &testEnv{
		DB:            db,
		Clock:         clock,
		Log:           log,
		LogHook:       hook,
		Identity:      identity,
		Reader:        reader,
		Notifications: notifications,
		Progress:      NewProgressService(db, identity, NewGormModuleCatalog(db), notifications, reader, log, o),
		Summary:       NewSummaryService(identity, reader, o.Cache, log),
		Badges:        map[models.BadgeType]models.Badge{},
	}
	env.seedBadges(t)
	return env
}

func (e *testEnv) seedBadges(t *testing.T) {
	t.Helper()
	kinds := []models.BadgeType{
		models.BadgeFirstTime,
		models.BadgePerfectScore,
		models.BadgeSpeed,
		models.BadgePersistence,
		models.BadgeSubjectMaster,
		models.BadgeCompletion,
		models.BadgeStreak,
		models.BadgeSpecial,
	}
	for _, kind := range kinds {
		b := models.Badge{Name: string(kind), Type: kind, Color: "#FFD700", IsActive: true}
		require.NoError(t, e.DB.Create(&b).Error)
		e.Badges[kind] = b
	}
}

func (e *testEnv) user(t *testing.T, username, role string, parentID *uint) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FirstName:    username,
		LastName:     "Test",
		Role:         role,
		ParentID:     parentID,
	}
	require.NoError(t, e.DB.Create(&u).Error)
	return u
}

func (e *testEnv) module(t *testing.T, title, subject string, maxScore int) models.Module {
	t.Helper()
	m := models.Module{Title: title, Subject: subject, MaxScore: maxScore, IsActive: true}
	require.NoError(t, e.DB.Create(&m).Error)
	return m
}

func (e *testEnv) complete(t *testing.T, learner models.User, module models.Module, score, minutes int) *models.ProgressView {
	t.Helper()
	view, err := e.Progress.Create(context.Background(), CreateProgressInput{
		LearnerID:        learner.ID,
		ModuleID:         module.ID,
		Status:           models.StatusCompleted,
		Score:            score,
		TimeSpentMinutes: minutes,
	})
	require.NoError(t, err)
	return view
}

func (e *testEnv) earnedTypes(t *testing.T, learnerID uint) []models.BadgeType {
	t.Helper()
	views, err := e.Reader.EarnedBadges(context.Background(), learnerID)
	require.NoError(t, err)
	types := make([]models.BadgeType, 0, len(views))
	for _, v := range views {
		types = append(types, v.Type)
	}
	return types
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.DB.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
