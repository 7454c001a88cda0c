package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studyflow-backend/internal/keywords"
	"studyflow-backend/internal/middleware"
	"studyflow-backend/internal/models"
	"studyflow-backend/internal/repository"
)

// EventHandler records the study events the client reports directly: session
// starts and quiz/exam results. Generation events are recorded by the worker
// when a job completes.
type EventHandler struct {
	eventRepo   *repository.EventRepo
	contentRepo *repository.ContentRepo
	redis       *redis.Client
}

func NewEventHandler(eventRepo *repository.EventRepo, contentRepo *repository.ContentRepo, redisClient *redis.Client) *EventHandler {
	return &EventHandler{
		eventRepo:   eventRepo,
		contentRepo: contentRepo,
		redis:       redisClient,
	}
}

// StartSession logs a create_session event. When the session is opened
// against existing material, its extracted text seeds the topic keywords.
func (h *EventHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	var topics []string
	textLength := 0
	if req.ContentID != nil {
		content, err := h.contentRepo.GetByID(r.Context(), *req.ContentID)
		if err != nil || content.UserID != userID {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
			return
		}
		if content.ExtractedText != nil {
			textLength = len(*content.ExtractedText)
			topics = keywords.Extract(*content.ExtractedText)
		}
	}
	if len(topics) == 0 && req.Title != "" {
		topics = keywords.Extract(req.Title)
	}

	ev := &models.StudyEvent{
		UserID:        userID,
		ActionType:    models.ActionCreateSession,
		OccurredAt:    time.Now(),
		TextLength:    textLength,
		TopicKeywords: topics,
	}

	if err := h.eventRepo.Append(r.Context(), ev); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record session", r))
		return
	}

	h.invalidateStats(r, userID)
	writeJSON(w, http.StatusCreated, ev)
}

// SubmitQuizResult logs a quiz_complete event with the per-quiz counts the
// accuracy aggregation reads.
func (h *EventHandler) SubmitQuizResult(w http.ResponseWriter, r *http.Request) {
	var req models.QuizResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.TotalQuestions <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "total_questions must be positive", r))
		return
	}
	if req.CorrectAnswers < 0 || req.CorrectAnswers > req.TotalQuestions {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "correct_answers out of range", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	total, correct := req.TotalQuestions, req.CorrectAnswers

	ev := &models.StudyEvent{
		UserID:             userID,
		ActionType:         models.ActionQuizComplete,
		OccurredAt:         time.Now(),
		TopicKeywords:      keywords.Normalize(req.TopicKeywords),
		QuizTotalQuestions: &total,
		QuizCorrectAnswers: &correct,
	}

	if err := h.eventRepo.Append(r.Context(), ev); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record quiz result", r))
		return
	}

	h.invalidateStats(r, userID)
	writeJSON(w, http.StatusCreated, ev)
}

// SubmitExamResult logs an exam_complete event.
func (h *EventHandler) SubmitExamResult(w http.ResponseWriter, r *http.Request) {
	var req models.ExamResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.TotalMarks <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "total_marks must be positive", r))
		return
	}
	if req.Score < 0 || req.Score > req.TotalMarks {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "score out of range", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	score, marks := req.Score, req.TotalMarks

	ev := &models.StudyEvent{
		UserID:         userID,
		ActionType:     models.ActionExamComplete,
		OccurredAt:     time.Now(),
		TopicKeywords:  keywords.Normalize(req.TopicKeywords),
		ExamScore:      &score,
		ExamTotalMarks: &marks,
	}
	if req.Subject != "" {
		subject := req.Subject
		ev.ExamSubject = &subject
	}

	if err := h.eventRepo.Append(r.Context(), ev); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record exam result", r))
		return
	}

	h.invalidateStats(r, userID)
	writeJSON(w, http.StatusCreated, ev)
}

func (h *EventHandler) invalidateStats(r *http.Request, userID uuid.UUID) {
	h.redis.Del(r.Context(), fmt.Sprintf("stats:%s", userID.String()))
}
