package services

import (
	"time"

	"educprogress/backend/models"
)

type CreateProgressInput struct {
	LearnerID        uint
	ModuleID         uint
	Status           models.ProgressStatus
	Score            int
	TimeSpentMinutes int
}

type UpdateProgressInput struct {
	Status           models.ProgressStatus
	Score            int
	TimeSpentMinutes int
	Attempts         int
}

// Transition reports what a single mutation did to a record.
type Transition struct {
	From      models.ProgressStatus
	To        models.ProgressStatus
	Started   bool // startedAt was set by this mutation
	Completed bool // completedAt was set by this mutation
}

var canonicalTransitions = map[models.ProgressStatus][]models.ProgressStatus{
	models.StatusNotStarted: {models.StatusInProgress},
	models.StatusInProgress: {models.StatusCompleted, models.StatusFailed, models.StatusPaused},
	models.StatusPaused:     {models.StatusInProgress},
	models.StatusFailed:     {models.StatusInProgress},
}

// Canonical reports whether the move follows the documented lifecycle.
// Staying in the same status always counts as canonical.
func (t Transition) Canonical() bool {
	if t.From == t.To {
		return true
	}
	for _, next := range canonicalTransitions[t.From] {
		if next == t.To {
			return true
		}
	}
	return false
}

// NewProgressRecord builds a fresh attempt. Score is clamped into
// [0, module.MaxScore]; later updates are not clamped.
func NewProgressRecord(in CreateProgressInput, module models.Module, now time.Time) (models.ProgressRecord, Transition) {
	rec := models.ProgressRecord{
		LearnerID:        in.LearnerID,
		ModuleID:         module.ID,
		Status:           in.Status,
		Score:            clamp(in.Score, 0, module.MaxScore),
		MaxScore:         module.MaxScore,
		TimeSpentMinutes: in.TimeSpentMinutes,
		Attempts:         1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	t := Transition{From: models.StatusNotStarted, To: in.Status}
	if in.Status == models.StatusInProgress {
		rec.StartedAt = timePtr(now)
		t.Started = true
	}
	if in.Status == models.StatusCompleted {
		rec.CompletedAt = timePtr(now)
		t.Completed = true
	}
	return rec, t
}

// ApplyUpdate overwrites the mutable fields of rec unconditionally and
// stamps startedAt/completedAt the first time their status is reached.
func ApplyUpdate(rec *models.ProgressRecord, in UpdateProgressInput, now time.Time) Transition {
	t := Transition{From: rec.Status, To: in.Status}

	rec.Status = in.Status
	rec.Score = in.Score
	rec.TimeSpentMinutes = in.TimeSpentMinutes
	rec.Attempts = in.Attempts
	rec.UpdatedAt = now

	if in.Status == models.StatusInProgress && rec.StartedAt == nil {
		rec.StartedAt = timePtr(now)
		t.Started = true
	}
	if in.Status == models.StatusCompleted && rec.CompletedAt == nil {
		rec.CompletedAt = timePtr(now)
		t.Completed = true
	}
	return t
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
