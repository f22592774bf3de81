package models

import "time"

type ProgressStatus int

const (
	StatusNotStarted ProgressStatus = iota
	StatusInProgress
	StatusCompleted
	StatusFailed
	StatusPaused
)

func (s ProgressStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "NotStarted"
	case StatusInProgress:
		return "InProgress"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

func (s ProgressStatus) IsValid() bool {
	return s >= StatusNotStarted && s <= StatusPaused
}

// ProgressRecord is one attempt of a learner against a module.
// Timestamps come from the engine clock, so gorm must not touch them.
type ProgressRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	LearnerID        uint           `gorm:"not null;index" json:"userId"`
	Learner          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:LearnerID;references:ID" json:"-"`
	ModuleID         uint           `gorm:"not null;index" json:"moduleId"`
	Status           ProgressStatus `gorm:"not null;default:0" json:"status"`
	Score            int            `gorm:"default:0" json:"score"`
	MaxScore         int            `json:"maxScore"` // copied from the module at creation
	StartedAt        *time.Time     `json:"startedAt,omitempty"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	TimeSpentMinutes int            `gorm:"default:0" json:"timeSpentMinutes"`
	Attempts         int            `gorm:"default:0" json:"attempts"`
	CreatedAt        time.Time      `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime:false;index" json:"updatedAt"`
}

// Percentage returns score as a share of maxScore, 0 when maxScore is not positive.
func (p ProgressRecord) Percentage() float64 {
	if p.MaxScore <= 0 {
		return 0
	}
	return float64(p.Score) / float64(p.MaxScore) * 100
}

func (p ProgressRecord) IsCompleted() bool {
	return p.Status == StatusCompleted
}
