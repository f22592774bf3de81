package services

import (
	"context"

	"educprogress/backend/models"

	"github.com/sirupsen/logrus"
)

const (
	recentProgressLimit = 5
	recentBadgesLimit   = 3
)

// SummaryCache stores derived child summaries. Slightly stale reads are
// acceptable, so a cache failure is never fatal.
//
// A summary computed while a mutation is still in flight can be written
// after that mutation's InvalidateChild; it then stays stale until the TTL
// expires.
type SummaryCache interface {
	GetChildSummary(ctx context.Context, childID uint) (*models.ChildProgressSummary, bool, error)
	SetChildSummary(ctx context.Context, summary *models.ChildProgressSummary) error
	InvalidateChild(ctx context.Context, childID uint) error
}

// SummaryService computes dashboard rollups on demand.
type SummaryService struct {
	Identity IdentityStore
	Reader   *ProgressReader
	Cache    SummaryCache // optional
	Log      logrus.FieldLogger
}

func NewSummaryService(identity IdentityStore, reader *ProgressReader, cache SummaryCache, log logrus.FieldLogger) *SummaryService {
	return &SummaryService{Identity: identity, Reader: reader, Cache: cache, Log: log}
}

// ChildSummary returns ErrLearnerNotFound for an unknown child.
func (s *SummaryService) ChildSummary(ctx context.Context, childID uint) (*models.ChildProgressSummary, error) {
	if s.Cache != nil {
		cached, ok, err := s.Cache.GetChildSummary(ctx, childID)
		if err != nil {
			s.Log.WithError(err).WithField("child_id", childID).Warn("summary cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	child, err := s.Identity.FindUser(ctx, childID)
	if err != nil {
		return nil, err
	}

	progress, err := s.Reader.ByLearner(ctx, childID)
	if err != nil {
		return nil, err
	}
	badges, err := s.Reader.EarnedBadges(ctx, childID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(*child, progress, badges)

	if s.Cache != nil {
		if err := s.Cache.SetChildSummary(ctx, summary); err != nil {
			s.Log.WithError(err).WithField("child_id", childID).Warn("summary cache write failed")
		}
	}
	return summary, nil
}

// GuardianSummary returns one summary per child-role account linked to the
// guardian. No children is an empty list, not an error.
func (s *SummaryService) GuardianSummary(ctx context.Context, guardianID uint) ([]models.ChildProgressSummary, error) {
	children, err := s.Identity.FindChildrenOf(ctx, guardianID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChildProgressSummary, 0, len(children))
	for _, child := range children {
		summary, err := s.ChildSummary(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// Summarize folds already-sorted progress (newest update first) and badges
// (newest first) into a summary.
func Summarize(child models.User, progress []models.ProgressView, badges []models.EarnedBadgeView) *models.ChildProgressSummary {
	summary := &models.ChildProgressSummary{
		ChildID:        child.ID,
		ChildName:      child.DisplayName(),
		TotalModules:   len(progress),
		TotalBadges:    len(badges),
		RecentProgress: []models.ProgressView{},
		RecentBadges:   []models.EarnedBadgeView{},
	}

	var pctTotal float64
	for _, p := range progress {
		switch p.Status {
		case models.StatusCompleted:
			summary.CompletedModules++
		case models.StatusInProgress:
			summary.InProgressModules++
		}
		pctTotal += p.Percentage
		summary.TotalTimeSpentMinutes += p.TimeSpentMinutes
	}
	if len(progress) > 0 {
		summary.AverageScore = pctTotal / float64(len(progress))
	}

	summary.RecentProgress = append(summary.RecentProgress, progress[:min(recentProgressLimit, len(progress))]...)
	summary.RecentBadges = append(summary.RecentBadges, badges[:min(recentBadgesLimit, len(badges))]...)
	return summary
}
