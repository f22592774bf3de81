package models

import "time"

// ProgressView is the read shape of a progress record returned to callers.
type ProgressView struct {
	ID               uint           `json:"id"`
	UserID           uint           `json:"userId"`
	UserName         string         `json:"userName"`
	ModuleID         uint           `json:"moduleId"`
	ModuleTitle      string         `json:"moduleTitle"`
	Subject          string         `json:"subject"`
	Status           ProgressStatus `json:"status"`
	Score            int            `json:"score"`
	MaxScore         int            `json:"maxScore"`
	Percentage       float64        `json:"percentage"`
	StartedAt        *time.Time     `json:"startedAt,omitempty"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	TimeSpentMinutes int            `json:"timeSpentMinutes"`
	Attempts         int            `json:"attempts"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func NewProgressView(p ProgressRecord, learner User, module Module) ProgressView {
	return ProgressView{
		ID:               p.ID,
		UserID:           p.LearnerID,
		UserName:         learner.DisplayName(),
		ModuleID:         p.ModuleID,
		ModuleTitle:      module.Title,
		Subject:          module.Subject,
		Status:           p.Status,
		Score:            p.Score,
		MaxScore:         p.MaxScore,
		Percentage:       p.Percentage(),
		StartedAt:        p.StartedAt,
		CompletedAt:      p.CompletedAt,
		TimeSpentMinutes: p.TimeSpentMinutes,
		Attempts:         p.Attempts,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// EarnedBadgeView is a badge as earned by one learner.
type EarnedBadgeView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        BadgeType `json:"type"`
	IconPath    string    `json:"iconPath"`
	Color       string    `json:"color"`
	EarnedAt    time.Time `json:"earnedAt"`
	IsNotified  bool      `json:"isNotified"`
}

func NewEarnedBadgeView(ub UserBadge) EarnedBadgeView {
	return EarnedBadgeView{
		ID:          ub.Badge.ID,
		Name:        ub.Badge.Name,
		Description: ub.Badge.Description,
		Type:        ub.Badge.Type,
		IconPath:    ub.Badge.IconPath,
		Color:       ub.Badge.Color,
		EarnedAt:    ub.EarnedAt,
		IsNotified:  ub.IsNotified,
	}
}

type NotificationView struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	Type            string     `json:"type"`
	Priority        string     `json:"priority"`
	IsRead          bool       `json:"isRead"`
	CreatedAt       time.Time  `json:"createdAt"`
	ReadAt          *time.Time `json:"readAt,omitempty"`
	RelatedUserName *string    `json:"relatedUserName,omitempty"`
}

// ChildProgressSummary is derived on demand and never persisted.
type ChildProgressSummary struct {
	ChildID               uint              `json:"childId"`
	ChildName             string            `json:"childName"`
	TotalModules          int               `json:"totalModules"`
	CompletedModules      int               `json:"completedModules"`
	InProgressModules     int               `json:"inProgressModules"`
	AverageScore          float64           `json:"averageScore"`
	TotalTimeSpentMinutes int               `json:"totalTimeSpentMinutes"`
	TotalBadges           int               `json:"totalBadges"`
	RecentProgress        []ProgressView    `json:"recentProgress"`
	RecentBadges          []EarnedBadgeView `json:"recentBadges"`
}
