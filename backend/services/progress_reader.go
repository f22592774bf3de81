package services

import (
	"context"
	"errors"

	"educprogress/backend/models"

	"gorm.io/gorm"
)

// ProgressReader turns stored rows into the read shapes callers see.
type ProgressReader struct {
	DB *gorm.DB
}

func NewProgressReader(db *gorm.DB) *ProgressReader {
	return &ProgressReader{DB: db}
}

func (r *ProgressReader) ByID(ctx context.Context, id uint) (*models.ProgressView, error) {
	var rec models.ProgressRecord
	if err := r.DB.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	views, err := r.toViews(ctx, []models.ProgressRecord{rec})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ByLearner lists a learner's records, most recently updated first.
func (r *ProgressReader) ByLearner(ctx context.Context, learnerID uint) ([]models.ProgressView, error) {
	var recs []models.ProgressRecord
	if err := r.DB.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("updated_at DESC, id DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return r.toViews(ctx, recs)
}

// ByParent lists the records of every account linked to the parent.
func (r *ProgressReader) ByParent(ctx context.Context, parentID uint) ([]models.ProgressView, error) {
	var recs []models.ProgressRecord
	if err := r.DB.WithContext(ctx).
		Where("learner_id IN (?)", r.DB.Model(&models.User{}).Select("id").Where("parent_id = ?", parentID)).
		Order("updated_at DESC, id DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return r.toViews(ctx, recs)
}

// EarnedBadges lists a learner's badges, most recently earned first.
func (r *ProgressReader) EarnedBadges(ctx context.Context, learnerID uint) ([]models.EarnedBadgeView, error) {
	var rows []models.UserBadge
	if err := r.DB.WithContext(ctx).
		Preload("Badge").
		Where("learner_id = ?", learnerID).
		Order("earned_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]models.EarnedBadgeView, 0, len(rows))
	for _, ub := range rows {
		views = append(views, models.NewEarnedBadgeView(ub))
	}
	return views, nil
}

func (r *ProgressReader) toViews(ctx context.Context, recs []models.ProgressRecord) ([]models.ProgressView, error) {
	views := make([]models.ProgressView, 0, len(recs))
	if len(recs) == 0 {
		return views, nil
	}

	userIDs := make([]uint, 0, len(recs))
	moduleIDs := make([]uint, 0, len(recs))
	for _, rec := range recs {
		userIDs = append(userIDs, rec.LearnerID)
		moduleIDs = append(moduleIDs, rec.ModuleID)
	}

	var users []models.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	var modules []models.Module
	if err := r.DB.WithContext(ctx).Where("id IN ?", moduleIDs).Find(&modules).Error; err != nil {
		return nil, err
	}

	usersByID := make(map[uint]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	modulesByID := make(map[uint]models.Module, len(modules))
	for _, m := range modules {
		modulesByID[m.ID] = m
	}

	for _, rec := range recs {
		views = append(views, models.NewProgressView(rec, usersByID[rec.LearnerID], modulesByID[rec.ModuleID]))
	}
	return views, nil
}
