package models

import (
	"time"

	"github.com/google/uuid"
)

// Action types recorded in the study event log.
const (
	ActionCreateSession = "create_session"
	ActionExplain       = "explain"
	ActionSummarize     = "summarize"
	ActionQuiz          = "quiz"
	ActionFlashcards    = "flashcards"
	ActionChat          = "chat"
	ActionQuizComplete  = "quiz_complete"
	ActionExamComplete  = "exam_complete"
)

// ValidActionType reports whether s is one of the known action types.
func ValidActionType(s string) bool {
	switch s {
	case ActionCreateSession, ActionExplain, ActionSummarize, ActionQuiz,
		ActionFlashcards, ActionChat, ActionQuizComplete, ActionExamComplete:
		return true
	}
	return false
}

// StudyEvent is one immutable entry in a user's activity log. Events are
// append-only: once written they are never edited or removed, and readers
// must not assume they arrive sorted by occurrence time.
type StudyEvent struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ActionType    string    `json:"action_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	TextLength    int       `json:"text_length"`
	TopicKeywords []string  `json:"topic_keywords"`

	// Present only on quiz_complete events.
	QuizTotalQuestions *int `json:"quiz_total_questions,omitempty"`
	QuizCorrectAnswers *int `json:"quiz_correct_answers,omitempty"`

	// Present only on exam_complete events.
	ExamScore      *float64 `json:"exam_score,omitempty"`
	ExamTotalMarks *float64 `json:"exam_total_marks,omitempty"`
	ExamSubject    *string  `json:"exam_subject,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type StartSessionRequest struct {
	Title     string     `json:"title"`
	ContentID *uuid.UUID `json:"content_id"`
}

type QuizResultRequest struct {
	TotalQuestions int      `json:"total_questions"`
	CorrectAnswers int      `json:"correct_answers"`
	TopicKeywords  []string `json:"topic_keywords"`
}

type ExamResultRequest struct {
	Score         float64  `json:"score"`
	TotalMarks    float64  `json:"total_marks"`
	Subject       string   `json:"subject"`
	TopicKeywords []string `json:"topic_keywords"`
}
