package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Generation kinds a job can carry. Each maps to the study event action
// recorded when the job finishes.
const (
	GenExplain    = "explain"
	GenSummary    = "summary"
	GenQuiz       = "quiz"
	GenFlashcards = "flashcards"
	GenExam       = "exam"
	GenGuide      = "guide"
)

// ValidGenerationKind reports whether s names a generation the worker knows.
func ValidGenerationKind(s string) bool {
	switch s {
	case GenExplain, GenSummary, GenQuiz, GenFlashcards, GenExam, GenGuide:
		return true
	}
	return false
}

type Job struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         string          `json:"type"` // "content-processing" | "generation"
	Kind         string          `json:"kind"` // generation kind, empty for content jobs
	ContentID    uuid.UUID       `json:"content_id"`
	ConfigJSON   json.RawMessage `json:"config"`
	ResultJSON   json.RawMessage `json:"result,omitempty"`
	Status       string          `json:"status"` // "queued" | "processing" | "completed" | "failed"
	RetryCount   int             `json:"retry_count"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

type GenerateRequest struct {
	ContentID    uuid.UUID `json:"content_id"`
	NumQuestions int       `json:"num_questions"`
	NumCards     int       `json:"num_cards"`
	TotalMarks   int       `json:"total_marks"`
	Difficulty   string    `json:"difficulty"`
	FocusAreas   []string  `json:"focus_areas"`
	Language     string    `json:"language"`
}

// Structured generation results stored on completed jobs.

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`
	Topic        string   `json:"topic,omitempty"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type ExamQuestion struct {
	Question    string `json:"question"`
	Marks       int    `json:"marks"`
	ModelAnswer string `json:"model_answer"`
}

type ExamPaper struct {
	TotalMarks int            `json:"total_marks"`
	Questions  []ExamQuestion `json:"questions"`
}

type ChatTurn struct {
	Role string `json:"role"` // "user" | "model"
	Text string `json:"text"`
}

type ChatRequest struct {
	ContentID uuid.UUID  `json:"content_id"`
	Message   string     `json:"message"`
	History   []ChatTurn `json:"history"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// WebSocket message types

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID                     uuid.UUID `json:"job_id"`
	Step                      int       `json:"step"`
	StepName                  string    `json:"step_name"`
	EstimatedSecondsRemaining int       `json:"estimated_seconds_remaining"`
}

type CompletedEvent struct {
	JobID      uuid.UUID `json:"job_id"`
	ResultType string    `json:"result_type"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// API error envelope

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
