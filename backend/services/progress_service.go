package services

import (
	"context"
	"errors"
	"fmt"

	"educprogress/backend/models"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService coordinates every progress mutation: record transition,
// persistence, badge evaluation and notifications, as one unit of work
// serialized per learner.
type ProgressService struct {
	DB            *gorm.DB
	Identity      IdentityStore
	Catalog       ModuleCatalog
	Notifications *NotificationService
	Reader        *ProgressReader
	Cache         SummaryCache // optional
	Clock         Clock
	Log           logrus.FieldLogger

	// NotifyGuardians mirrors completion and badge events to the learner's parent.
	NotifyGuardians bool

	tracer trace.Tracer
}

type ProgressServiceOptions struct {
	Cache           SummaryCache
	Clock           Clock
	NotifyGuardians bool
}

func NewProgressService(
	db *gorm.DB,
	identity IdentityStore,
	catalog ModuleCatalog,
	notifications *NotificationService,
	reader *ProgressReader,
	log logrus.FieldLogger,
	opts ProgressServiceOptions,
) *ProgressService {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &ProgressService{
		DB:              db,
		Identity:        identity,
		Catalog:         catalog,
		Notifications:   notifications,
		Reader:          reader,
		Cache:           opts.Cache,
		Clock:           clock,
		Log:             log,
		NotifyGuardians: opts.NotifyGuardians,
		tracer:          otel.Tracer("educprogress/services"),
	}
}

// Create starts a new attempt for (learner, module). Each call creates a
// new record; attempts are never merged.
func (s *ProgressService) Create(ctx context.Context, in CreateProgressInput) (*models.ProgressView, error) {
	ctx, span := s.tracer.Start(ctx, "progress.Create", trace.WithAttributes(
		attribute.Int64("learner_id", int64(in.LearnerID)),
		attribute.Int64("module_id", int64(in.ModuleID)),
	))
	defer span.End()

	if _, err := s.Identity.FindUser(ctx, in.LearnerID); err != nil {
		return nil, fail(span, err)
	}
	module, err := s.Catalog.FindModule(ctx, in.ModuleID)
	if err != nil {
		return nil, fail(span, err)
	}

	var rec models.ProgressRecord
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		learner, err := lockLearner(tx, in.LearnerID)
		if err != nil {
			return err
		}

		var t Transition
		rec, t = NewProgressRecord(in, *module, s.Clock.Now())
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		s.applySideEffects(tx, *learner, *module, rec, t)
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	s.invalidate(ctx, in.LearnerID)
	return s.Reader.ByID(ctx, rec.ID)
}

// Update overwrites status, score, time and attempts without validating
// them against the previous state or maxScore.
func (s *ProgressService) Update(ctx context.Context, id uint, in UpdateProgressInput) (*models.ProgressView, error) {
	ctx, span := s.tracer.Start(ctx, "progress.Update", trace.WithAttributes(
		attribute.Int64("progress_id", int64(id)),
	))
	defer span.End()

	var learnerID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findProgress(tx, id)
		if err != nil {
			return err
		}
		learner, err := lockLearner(tx, rec.LearnerID)
		if err != nil {
			return err
		}
		// re-read under the learner lock
		if rec, err = findProgress(tx, id); err != nil {
			return err
		}
		learnerID = rec.LearnerID

		t := ApplyUpdate(rec, in, s.Clock.Now())
		if !t.Canonical() {
			s.Log.WithFields(logrus.Fields{
				"progress_id": rec.ID,
				"from":        t.From.String(),
				"to":          t.To.String(),
			}).Warn("non-standard progress transition")
		}
		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		module := loadModule(tx, rec.ModuleID)
		s.applySideEffects(tx, *learner, module, *rec, t)
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	s.invalidate(ctx, learnerID)
	return s.Reader.ByID(ctx, id)
}

// Delete removes a record. Badges it produced stay earned; their
// back-references are cleared.
func (s *ProgressService) Delete(ctx context.Context, id uint) error {
	ctx, span := s.tracer.Start(ctx, "progress.Delete", trace.WithAttributes(
		attribute.Int64("progress_id", int64(id)),
	))
	defer span.End()

	var learnerID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findProgress(tx, id)
		if err != nil {
			return err
		}
		if _, err := lockLearner(tx, rec.LearnerID); err != nil {
			return err
		}
		learnerID = rec.LearnerID

		if err := tx.Model(&models.UserBadge{}).
			Where("progress_id = ?", id).
			Update("progress_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Notification{}).
			Where("related_progress_id = ?", id).
			Update("related_progress_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProgressRecord{}, id).Error
	})
	if err != nil {
		return fail(span, err)
	}

	s.invalidate(ctx, learnerID)
	return nil
}

func (s *ProgressService) Get(ctx context.Context, id uint) (*models.ProgressView, error) {
	return s.Reader.ByID(ctx, id)
}

func (s *ProgressService) ListByLearner(ctx context.Context, learnerID uint) ([]models.ProgressView, error) {
	return s.Reader.ByLearner(ctx, learnerID)
}

func (s *ProgressService) ListByParent(ctx context.Context, parentID uint) ([]models.ProgressView, error) {
	return s.Reader.ByParent(ctx, parentID)
}

func (s *ProgressService) Badges(ctx context.Context, learnerID uint) ([]models.EarnedBadgeView, error) {
	return s.Reader.EarnedBadges(ctx, learnerID)
}

// applySideEffects runs inside a savepoint. A failure rolls back only the
// side effects; the progress change itself still commits.
func (s *ProgressService) applySideEffects(tx *gorm.DB, learner models.User, module models.Module, rec models.ProgressRecord, t Transition) {
	log := s.Log.WithFields(logrus.Fields{
		"learner_id":  learner.ID,
		"progress_id": rec.ID,
	})

	err := tx.Transaction(func(stx *gorm.DB) error {
		if t.Completed {
			if err := s.notifyCompletion(stx, learner, module, rec); err != nil {
				return err
			}
		}
		return s.awardBadges(stx, learner, module, rec, log)
	})
	if err != nil {
		log.WithError(err).Error("badge evaluation failed; progress change kept")
	}
}

func (s *ProgressService) awardBadges(tx *gorm.DB, learner models.User, module models.Module, rec models.ProgressRecord, log logrus.FieldLogger) error {
	snap, err := loadSnapshot(tx, learner.ID)
	if err != nil {
		return err
	}

	var catalog []models.Badge
	if err := tx.Where("is_active = ?", true).Order("id").Find(&catalog).Error; err != nil {
		return fmt.Errorf("load badge catalog: %w", err)
	}

	trigger := HistoryEntry{Record: rec, Subject: module.Subject}
	for _, badge := range EvaluateBadges(snap, trigger, catalog) {
		ub := models.UserBadge{
			LearnerID:  learner.ID,
			BadgeID:    badge.ID,
			EarnedAt:   s.Clock.Now(),
			ProgressID: &rec.ID,
			IsNotified: false,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&ub)
		if res.Error != nil {
			return fmt.Errorf("award badge %d: %w", badge.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			// a concurrent mutation got there first
			log.WithField("badge_id", badge.ID).Debug("badge already earned")
			continue
		}

		if err := s.notifyBadge(tx, learner, rec, badge); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"badge_id":   badge.ID,
			"badge_type": badge.Type,
		}).Info("badge awarded")
	}
	return nil
}

func (s *ProgressService) notifyCompletion(tx *gorm.DB, learner models.User, module models.Module, rec models.ProgressRecord) error {
	title := module.Title
	if title == "" {
		title = fmt.Sprintf("module #%d", rec.ModuleID)
	}
	ev := NotificationEvent{
		RecipientID:       learner.ID,
		Title:             "Module completed!",
		Message:           fmt.Sprintf("Congratulations! You completed %s with a score of %.0f%%.", title, rec.Percentage()),
		Type:              models.NotificationModuleCompleted,
		Priority:          models.PriorityHigh,
		RelatedProgressID: &rec.ID,
	}
	if _, err := s.Notifications.Emit(tx, ev); err != nil {
		return err
	}
	if guardian := s.guardianOf(learner); guardian != nil {
		ev.RecipientID = *guardian
		ev.RelatedUserID = &learner.ID
		ev.Message = fmt.Sprintf("%s completed %s with a score of %.0f%%.", learner.DisplayName(), title, rec.Percentage())
		if _, err := s.Notifications.Emit(tx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProgressService) notifyBadge(tx *gorm.DB, learner models.User, rec models.ProgressRecord, badge models.Badge) error {
	ev := NotificationEvent{
		RecipientID:       learner.ID,
		Title:             "New badge!",
		Message:           fmt.Sprintf("Congratulations! You earned the '%s' badge.", badge.Name),
		Type:              models.NotificationBadgeEarned,
		Priority:          models.PriorityHigh,
		RelatedProgressID: &rec.ID,
		RelatedBadgeID:    &badge.ID,
	}
	if _, err := s.Notifications.Emit(tx, ev); err != nil {
		return err
	}
	if guardian := s.guardianOf(learner); guardian != nil {
		ev.RecipientID = *guardian
		ev.RelatedUserID = &learner.ID
		ev.Message = fmt.Sprintf("%s earned the '%s' badge.", learner.DisplayName(), badge.Name)
		if _, err := s.Notifications.Emit(tx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProgressService) guardianOf(learner models.User) *uint {
	if !s.NotifyGuardians || learner.ParentID == nil {
		return nil
	}
	return learner.ParentID
}

func (s *ProgressService) invalidate(ctx context.Context, learnerID uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.InvalidateChild(ctx, learnerID); err != nil {
		s.Log.WithError(err).WithField("learner_id", learnerID).Warn("summary cache invalidation failed")
	}
}

// lockLearner takes a row lock on the learner for the rest of tx. Every
// mutation for the same learner queues here. SQLite has no row locks and
// serializes writers instead.
func lockLearner(tx *gorm.DB, learnerID uint) (*models.User, error) {
	var learner models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&learner, learnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLearnerNotFound
		}
		return nil, err
	}
	return &learner, nil
}

func findProgress(tx *gorm.DB, id uint) (*models.ProgressRecord, error) {
	var rec models.ProgressRecord
	if err := tx.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// loadModule tolerates a module that has since left the catalog.
func loadModule(tx *gorm.DB, id uint) models.Module {
	var module models.Module
	if err := tx.First(&module, id).Error; err != nil {
		return models.Module{ID: id}
	}
	return module
}

func loadSnapshot(tx *gorm.DB, learnerID uint) (LearnerSnapshot, error) {
	snap := LearnerSnapshot{LearnerID: learnerID, Earned: map[uint]bool{}}

	var recs []models.ProgressRecord
	if err := tx.Where("learner_id = ?", learnerID).Order("id").Find(&recs).Error; err != nil {
		return snap, fmt.Errorf("load history: %w", err)
	}

	moduleIDs := make([]uint, 0, len(recs))
	for _, r := range recs {
		moduleIDs = append(moduleIDs, r.ModuleID)
	}
	subjects := map[uint]string{}
	if len(moduleIDs) > 0 {
		var modules []models.Module
		if err := tx.Where("id IN ?", moduleIDs).Find(&modules).Error; err != nil {
			return snap, fmt.Errorf("load modules: %w", err)
		}
		for _, m := range modules {
			subjects[m.ID] = m.Subject
		}
	}
	for _, r := range recs {
		snap.History = append(snap.History, HistoryEntry{Record: r, Subject: subjects[r.ModuleID]})
	}

	var earned []uint
	if err := tx.Model(&models.UserBadge{}).Where("learner_id = ?", learnerID).Pluck("badge_id", &earned).Error; err != nil {
		return snap, fmt.Errorf("load earned badges: %w", err)
	}
	for _, id := range earned {
		snap.Earned[id] = true
	}
	return snap, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
