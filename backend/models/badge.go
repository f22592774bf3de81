package models

import "time"

type BadgeType string

const (
	BadgeCompletion    BadgeType = "completion"
	BadgePerfectScore  BadgeType = "perfect_score"
	BadgeSpeed         BadgeType = "speed"
	BadgePersistence   BadgeType = "persistence"
	BadgeSubjectMaster BadgeType = "subject_master"
	BadgeStreak        BadgeType = "streak"
	BadgeFirstTime     BadgeType = "first_time"
	BadgeSpecial       BadgeType = "special"
)

// Badge is an immutable catalog entry.
type Badge struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;size:50" json:"name"`
	Description   string    `gorm:"size:200" json:"description"`
	Type          BadgeType `gorm:"not null;index" json:"type"`
	IconPath      string    `json:"iconPath"`
	Color         string    `gorm:"default:#FFD700" json:"color"`
	RequiredScore int       `gorm:"default:0" json:"requiredScore"`
	ModuleID      *uint     `json:"moduleId,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserBadge records that a learner earned a badge. At most one row per
// (learner, badge) ever exists.
type UserBadge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LearnerID  uint      `gorm:"not null;uniqueIndex:idx_user_badges_learner_badge" json:"userId"`
	BadgeID    uint      `gorm:"not null;uniqueIndex:idx_user_badges_learner_badge" json:"badgeId"`
	EarnedAt   time.Time `gorm:"not null;index" json:"earnedAt"`
	ProgressID *uint     `gorm:"index" json:"progressId,omitempty"`
	IsNotified bool      `gorm:"default:false" json:"isNotified"`

	Badge   Badge `gorm:"foreignKey:BadgeID" json:"-"`
	Learner *User `gorm:"constraint:OnDelete:CASCADE;foreignKey:LearnerID;references:ID" json:"-"`
}
