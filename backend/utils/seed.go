package utils

import (
	"context"
	"fmt"
	"time"

	"educprogress/backend/models"
	"educprogress/backend/services"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoModules is the starter module catalog.
var DemoModules = []models.Module{
	{Title: "Counting to 20", Subject: models.SubjectMathematics, AgeGroup: 5, Level: "beginner", EstimatedDurationMinutes: 15, MaxScore: 100},
	{Title: "Addition and Subtraction", Subject: models.SubjectMathematics, AgeGroup: 6, Level: "beginner", EstimatedDurationMinutes: 25, MaxScore: 100},
	{Title: "Multiplication Tables", Subject: models.SubjectMathematics, AgeGroup: 8, Level: "intermediate", EstimatedDurationMinutes: 30, MaxScore: 100},
	{Title: "Fractions", Subject: models.SubjectMathematics, AgeGroup: 9, Level: "intermediate", EstimatedDurationMinutes: 35, MaxScore: 50},
	{Title: "Plants and Animals", Subject: models.SubjectScience, AgeGroup: 6, Level: "beginner", EstimatedDurationMinutes: 20, MaxScore: 100},
	{Title: "Reading Short Stories", Subject: models.SubjectLanguage, AgeGroup: 7, Level: "beginner", EstimatedDurationMinutes: 30, MaxScore: 100},
	{Title: "Continents and Oceans", Subject: models.SubjectGeography, AgeGroup: 8, Level: "beginner", EstimatedDurationMinutes: 25, MaxScore: 100},
}

// DemoBadges covers every badge kind, including the ones without an
// award rule.
var DemoBadges = []models.Badge{
	{Name: "First Steps", Description: "Complete your first module", Type: models.BadgeFirstTime, IconPath: "/icons/badges/first-steps.svg", Color: "#4CAF50"},
	{Name: "Perfectionist", Description: "Get a perfect score", Type: models.BadgePerfectScore, IconPath: "/icons/badges/perfect.svg", Color: "#FFD700"},
	{Name: "Quick Learner", Description: "Complete a module in 20 minutes or less", Type: models.BadgeSpeed, IconPath: "/icons/badges/speed.svg", Color: "#03A9F4"},
	{Name: "Never Give Up", Description: "Complete five modules", Type: models.BadgePersistence, IconPath: "/icons/badges/persistence.svg", Color: "#9C27B0"},
	{Name: "Math Master", Description: "Complete three Mathematics modules averaging 80% or more", Type: models.BadgeSubjectMaster, IconPath: "/icons/badges/math-master.svg", Color: "#FF5722"},
	{Name: "Finisher", Description: "Complete a module", Type: models.BadgeCompletion, IconPath: "/icons/badges/finisher.svg", Color: "#8BC34A"},
	{Name: "On Fire", Description: "Learn several days in a row", Type: models.BadgeStreak, IconPath: "/icons/badges/streak.svg", Color: "#F44336"},
	{Name: "Star Pupil", Description: "Awarded by a teacher", Type: models.BadgeSpecial, IconPath: "/icons/badges/star.svg", Color: "#3F51B5"},
}

// Seed loads the module and badge catalogs plus a demo parent and child.
// Running it twice changes nothing.
func Seed(ctx context.Context, db *gorm.DB, identity services.IdentityStore, password string, log logrus.FieldLogger) error {
	db = db.WithContext(ctx)

	for _, m := range DemoModules {
		m.IsActive = true
		if err := db.Where("title = ?", m.Title).FirstOrCreate(&m).Error; err != nil {
			return fmt.Errorf("seed module %q: %w", m.Title, err)
		}
	}

	for _, b := range DemoBadges {
		b.IsActive = true
		if err := db.Where("name = ?", b.Name).FirstOrCreate(&b).Error; err != nil {
			return fmt.Errorf("seed badge %q: %w", b.Name, err)
		}
		if !services.HasRule(b.Type) {
			log.WithField("badge", b.Name).Warnf("badge type %s has no award rule; it will never be awarded automatically", b.Type)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	parent := models.User{
		Username:     "demo_parent",
		Email:        "parent@example.com",
		PasswordHash: string(hash),
		FirstName:    "Dana",
		LastName:     "Miller",
		DateOfBirth:  time.Date(1985, 4, 12, 0, 0, 0, 0, time.UTC),
		Role:         models.RoleParent,
	}
	if err := createUserOnce(ctx, db, identity, &parent); err != nil {
		return err
	}

	child := models.User{
		Username:     "demo_child",
		Email:        "child@example.com",
		PasswordHash: string(hash),
		FirstName:    "Sam",
		LastName:     "Miller",
		DateOfBirth:  time.Date(2016, 9, 3, 0, 0, 0, 0, time.UTC),
		Role:         models.RoleChild,
		ParentID:     &parent.ID,
	}
	if err := createUserOnce(ctx, db, identity, &child); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"modules":   len(DemoModules),
		"badges":    len(DemoBadges),
		"parent_id": parent.ID,
		"child_id":  child.ID,
	}).Info("seed complete")
	return nil
}

// createUserOnce fills u.ID from the existing row when the username is taken.
func createUserOnce(ctx context.Context, db *gorm.DB, identity services.IdentityStore, u *models.User) error {
	exists, err := identity.UserExists(ctx, u.Username)
	if err != nil {
		return err
	}
	if exists {
		return db.Where("username = ?", u.Username).First(u).Error
	}
	if err := db.Create(u).Error; err != nil {
		return fmt.Errorf("seed user %q: %w", u.Username, err)
	}
	return nil
}
