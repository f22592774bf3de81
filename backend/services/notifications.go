package services

import (
	"context"
	"errors"
	"fmt"

	"educprogress/backend/models"

	"gorm.io/gorm"
)

// NotificationEvent is one discrete event to persist for a recipient.
type NotificationEvent struct {
	RecipientID       uint
	Title             string
	Message           string
	Type              models.NotificationType
	Priority          models.NotificationPriority
	RelatedUserID     *uint
	RelatedProgressID *uint
	RelatedBadgeID    *uint
}

// NotificationService writes and reads notification records. Emission is
// not deduplicated.
type NotificationService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewNotificationService(db *gorm.DB, clock Clock) *NotificationService {
	return &NotificationService{DB: db, Clock: clock}
}

// Emit persists an unread notification using tx, so it joins the caller's
// unit of work.
func (s *NotificationService) Emit(tx *gorm.DB, ev NotificationEvent) (*models.Notification, error) {
	n := models.Notification{
		UserID:            ev.RecipientID,
		Title:             ev.Title,
		Message:           ev.Message,
		Type:              ev.Type,
		Priority:          ev.Priority,
		IsRead:            false,
		CreatedAt:         s.Clock.Now(),
		RelatedUserID:     ev.RelatedUserID,
		RelatedProgressID: ev.RelatedProgressID,
		RelatedBadgeID:    ev.RelatedBadgeID,
	}
	if err := tx.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("emit %s notification: %w", ev.Type, err)
	}
	return &n, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	var rows []models.Notification
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	related := map[uint]string{}
	var ids []uint
	for _, n := range rows {
		if n.RelatedUserID != nil {
			ids = append(ids, *n.RelatedUserID)
		}
	}
	if len(ids) > 0 {
		var users []models.User
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			related[u.ID] = u.DisplayName()
		}
	}

	views := make([]models.NotificationView, 0, len(rows))
	for _, n := range rows {
		v := models.NotificationView{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			Priority:  n.Priority.String(),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			ReadAt:    n.ReadAt,
		}
		if n.RelatedUserID != nil {
			if name, ok := related[*n.RelatedUserID]; ok {
				v.RelatedUserName = &name
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// MarkRead flips one notification to read and stamps readAt.
func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	var n models.Notification
	if err := s.DB.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	now := s.Clock.Now()
	return s.DB.WithContext(ctx).Model(&n).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
}

// MarkAllRead is idempotent: with nothing unread it is a no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	now := s.Clock.Now()
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
