package models

import "time"

type NotificationType string

const (
	NotificationProgressUpdate  NotificationType = "ProgressUpdate"
	NotificationBadgeEarned     NotificationType = "BadgeEarned"
	NotificationModuleCompleted NotificationType = "ModuleCompleted"
	NotificationAchievement     NotificationType = "Achievement"
	NotificationReminder        NotificationType = "Reminder"
	NotificationSystem          NotificationType = "System"
)

type NotificationPriority int

const (
	PriorityLow NotificationPriority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p NotificationPriority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	default:
		return "Unknown"
	}
}

// Notification is never deleted by the engine; only IsRead/ReadAt change.
type Notification struct {
	ID                uint                 `gorm:"primaryKey" json:"id"`
	UserID            uint                 `gorm:"not null;index:idx_notifications_user_read" json:"userId"`
	Title             string               `gorm:"not null;size:100" json:"title"`
	Message           string               `gorm:"size:500" json:"message"`
	Type              NotificationType     `gorm:"not null" json:"type"`
	Priority          NotificationPriority `gorm:"not null" json:"priority"`
	IsRead            bool                 `gorm:"not null;index:idx_notifications_user_read" json:"isRead"`
	CreatedAt         time.Time            `gorm:"autoCreateTime:false;index" json:"createdAt"`
	ReadAt            *time.Time           `json:"readAt,omitempty"`
	RelatedUserID     *uint                `json:"relatedUserId,omitempty"` // the child, for guardian copies
	RelatedProgressID *uint                `gorm:"index" json:"relatedProgressId,omitempty"`
	RelatedBadgeID    *uint                `json:"relatedBadgeId,omitempty"`
}
