package analytics

import (
	"math"

	"studyflow-backend/internal/models"
)

// Estimator holds the per-event study-time heuristic. The numbers are an
// engagement proxy, not a measured duration, so they live here as tunable
// fields instead of literals inside the fold.
type Estimator struct {
	// BaseMinutes is credited to every event that has no dedicated rule.
	BaseMinutes int
	// CharsPerMinute divides the event's text length into reading minutes.
	CharsPerMinute int
	// QuizSetupMinutes is the extra credit for generating a quiz.
	QuizSetupMinutes int
	// ExamMinutesPerMark scales an exam's total marks into minutes.
	ExamMinutesPerMark float64
}

// DefaultEstimator returns the production heuristic: one minute per quiz
// question answered, 1.5 minutes per exam mark, and for everything else one
// base minute plus one minute per 500 characters of text (plus two for quiz
// generation).
func DefaultEstimator() Estimator {
	return Estimator{
		BaseMinutes:        1,
		CharsPerMinute:     500,
		QuizSetupMinutes:   2,
		ExamMinutesPerMark: 1.5,
	}
}

// EventMinutes estimates how many minutes of study a single event represents.
// Missing or zero-valued optional fields fall through to the generic rule.
func (e Estimator) EventMinutes(ev models.StudyEvent) int {
	if ev.ActionType == models.ActionQuizComplete &&
		ev.QuizTotalQuestions != nil && *ev.QuizTotalQuestions > 0 {
		return *ev.QuizTotalQuestions
	}

	if ev.ActionType == models.ActionExamComplete &&
		ev.ExamTotalMarks != nil && *ev.ExamTotalMarks > 0 {
		return int(math.Ceil(*ev.ExamTotalMarks * e.ExamMinutesPerMark))
	}

	minutes := e.BaseMinutes
	if ev.TextLength > 0 && e.CharsPerMinute > 0 {
		minutes += (ev.TextLength + e.CharsPerMinute - 1) / e.CharsPerMinute
	}
	if ev.ActionType == models.ActionQuiz {
		minutes += e.QuizSetupMinutes
	}
	return minutes
}
