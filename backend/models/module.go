package models

import "time"

const (
	SubjectMathematics       = "Mathematics"
	SubjectScience           = "Science"
	SubjectLanguage          = "Language"
	SubjectHistory           = "History"
	SubjectGeography         = "Geography"
	SubjectArts              = "Arts"
	SubjectPhysicalEducation = "PhysicalEducation"
)

// Module is a catalog unit of learning content. Read-only for the engine.
type Module struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	Title                    string    `gorm:"not null;size:100" json:"title"`
	Description              string    `gorm:"size:500" json:"description"`
	Subject                  string    `gorm:"not null;index" json:"subject"`
	AgeGroup                 int       `json:"ageGroup"`
	Level                    string    `json:"level"` // beginner, intermediate, advanced
	EstimatedDurationMinutes int       `gorm:"default:30" json:"estimatedDurationMinutes"`
	MaxScore                 int       `json:"maxScore"`
	IsActive                 bool      `json:"isActive"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}
