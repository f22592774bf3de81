package services

import (
	"sort"

	"educprogress/backend/models"
)

const (
	speedLimitMinutes        = 20
	persistenceCompletions   = 5
	subjectMasterSubject     = models.SubjectMathematics
	subjectMasterCompletions = 3
	subjectMasterAverage     = 80.0
)

// HistoryEntry is one persisted progress record with its module subject.
type HistoryEntry struct {
	Record  models.ProgressRecord
	Subject string
}

// LearnerSnapshot is everything the rules may look at for one learner.
type LearnerSnapshot struct {
	LearnerID uint
	History   []HistoryEntry
	Earned    map[uint]bool // badge id -> already earned
}

func (s LearnerSnapshot) completed() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(s.History))
	for _, h := range s.History {
		if h.Record.IsCompleted() {
			out = append(out, h)
		}
	}
	return out
}

// BadgeRule decides whether a badge kind qualifies given the learner's full
// history and the record that just changed.
type BadgeRule func(snap LearnerSnapshot, trigger HistoryEntry) bool

// badgeRules is the only place badge kinds gain behavior. Kinds missing
// here never auto-award.
var badgeRules = map[models.BadgeType]BadgeRule{
	models.BadgeFirstTime: func(snap LearnerSnapshot, _ HistoryEntry) bool {
		return len(snap.completed()) == 1
	},
	models.BadgePerfectScore: func(_ LearnerSnapshot, trigger HistoryEntry) bool {
		return trigger.Record.MaxScore > 0 && trigger.Record.Score == trigger.Record.MaxScore
	},
	models.BadgeSpeed: func(_ LearnerSnapshot, trigger HistoryEntry) bool {
		return trigger.Record.IsCompleted() && trigger.Record.TimeSpentMinutes <= speedLimitMinutes
	},
	models.BadgePersistence: func(snap LearnerSnapshot, _ HistoryEntry) bool {
		return len(snap.completed()) >= persistenceCompletions
	},
	models.BadgeSubjectMaster: func(snap LearnerSnapshot, _ HistoryEntry) bool {
		var count int
		var total float64
		for _, h := range snap.completed() {
			if h.Subject != subjectMasterSubject {
				continue
			}
			count++
			total += h.Record.Percentage()
		}
		return count >= subjectMasterCompletions && total/float64(count) >= subjectMasterAverage
	},
}

// HasRule reports whether the badge kind can ever be auto-awarded.
func HasRule(t models.BadgeType) bool {
	_, ok := badgeRules[t]
	return ok
}

// EvaluateBadges returns the badges that newly qualify, in catalog (id)
// order. It does not mutate anything.
func EvaluateBadges(snap LearnerSnapshot, trigger HistoryEntry, catalog []models.Badge) []models.Badge {
	ordered := make([]models.Badge, len(catalog))
	copy(ordered, catalog)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var award []models.Badge
	for _, badge := range ordered {
		if !badge.IsActive || snap.Earned[badge.ID] {
			continue
		}
		rule, ok := badgeRules[badge.Type]
		if !ok {
			continue
		}
		if rule(snap, trigger) {
			award = append(award, badge)
		}
	}
	return award
}
