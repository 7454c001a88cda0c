package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studyflow-backend/internal/keywords"
	"studyflow-backend/internal/middleware"
	"studyflow-backend/internal/models"
	"studyflow-backend/internal/repository"
	"studyflow-backend/internal/services"
)

type GenerateHandler struct {
	contentRepo *repository.ContentRepo
	jobRepo     *repository.JobRepo
	eventRepo   *repository.EventRepo
	gemini      *services.GeminiService
	redis       *redis.Client
}

func NewGenerateHandler(contentRepo *repository.ContentRepo, jobRepo *repository.JobRepo, eventRepo *repository.EventRepo, gemini *services.GeminiService, redisClient *redis.Client) *GenerateHandler {
	return &GenerateHandler{
		contentRepo: contentRepo,
		jobRepo:     jobRepo,
		eventRepo:   eventRepo,
		gemini:      gemini,
		redis:       redisClient,
	}
}

// Generate queues a generation job for ready material. The kind comes from
// the URL so each generation type keeps its own route.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !models.ValidGenerationKind(kind) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unknown generation type", r))
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	content, err := h.contentRepo.GetByID(r.Context(), req.ContentID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
		return
	}
	if content.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}
	if content.Status != "ready" || content.ExtractedText == nil {
		writeJSON(w, http.StatusConflict, errorResp("CONTENT_NOT_READY", "Content is still being processed", r))
		return
	}

	configBytes, _ := json.Marshal(req)
	job := &models.Job{
		UserID:     userID,
		Type:       "generation",
		Kind:       kind,
		ContentID:  content.ID,
		ConfigJSON: configBytes,
		Status:     "queued",
		CreatedAt:  time.Now(),
	}

	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create job", r))
		return
	}

	jobBytes, _ := json.Marshal(job)
	h.redis.LPush(r.Context(), "queue:generation", string(jobBytes))

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// Chat is synchronous: the reply comes back in the response, and a chat
// event is logged against the material's topics.
func (h *GenerateHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	content, err := h.contentRepo.GetByID(r.Context(), req.ContentID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
		return
	}
	if content.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}
	if content.Status != "ready" || content.ExtractedText == nil {
		writeJSON(w, http.StatusConflict, errorResp("CONTENT_NOT_READY", "Content is still being processed", r))
		return
	}

	reply, err := h.gemini.Chat(r.Context(), *content.ExtractedText, req.Message, req.History)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("GENERATION_FAILED", "Chat reply failed", r))
		return
	}

	ev := &models.StudyEvent{
		UserID:        userID,
		ActionType:    models.ActionChat,
		OccurredAt:    time.Now(),
		TextLength:    len(req.Message),
		TopicKeywords: keywords.Extract(*content.ExtractedText),
	}
	h.eventRepo.Append(r.Context(), ev)
	h.redis.Del(r.Context(), fmt.Sprintf("stats:%s", userID.String()))

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// Job endpoints

type JobHandler struct {
	jobRepo *repository.JobRepo
}

func NewJobHandler(jobRepo *repository.JobRepo) *JobHandler {
	return &JobHandler{jobRepo: jobRepo}
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}

	if job.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}

	if job.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if job.Status == "completed" || job.Status == "failed" {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Job already finished", r))
		return
	}

	h.jobRepo.UpdateStatus(r.Context(), id, "failed")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job cancelled"})
}
