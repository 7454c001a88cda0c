package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studyflow-backend/internal/middleware"
	"studyflow-backend/internal/models"
	"studyflow-backend/internal/repository"
	"studyflow-backend/internal/services"
)

const maxUploadBytes = 25 * 1024 * 1024

type ContentHandler struct {
	contentRepo *repository.ContentRepo
	jobRepo     *repository.JobRepo
	redis       *redis.Client
	storagePath string
}

func NewContentHandler(contentRepo *repository.ContentRepo, jobRepo *repository.JobRepo, redisClient *redis.Client, storagePath string) *ContentHandler {
	return &ContentHandler{
		contentRepo: contentRepo,
		jobRepo:     jobRepo,
		redis:       redisClient,
		storagePath: storagePath,
	}
}

// AddNotes stores pasted text as ready-to-use material. No processing job is
// needed, the text is already extracted.
func (h *ContentHandler) AddNotes(w http.ResponseWriter, r *http.Request) {
	var req models.AddNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Notes text is required", r))
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled notes"
	}

	content := &models.Content{
		UserID:        middleware.GetUserID(r.Context()),
		Type:          "notes",
		Status:        "ready",
		Title:         title,
		ExtractedText: &text,
	}

	if err := h.contentRepo.Create(r.Context(), content); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create content record", r))
		return
	}

	writeJSON(w, http.StatusCreated, content)
}

// AddYouTube validates the link, snapshots quick oEmbed metadata, and queues
// transcript extraction in the background.
func (h *ContentHandler) AddYouTube(w http.ResponseWriter, r *http.Request) {
	var req models.AddYouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	videoID, err := services.ExtractVideoID(req.URL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid YouTube URL", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	meta := fetchOEmbedMetadata(videoID)
	metaBytes, _ := json.Marshal(meta)

	content := &models.Content{
		UserID:       userID,
		Type:         "youtube",
		Status:       "pending",
		Title:        meta.Title,
		SourceURL:    &req.URL,
		MetadataJSON: metaBytes,
	}

	if err := h.contentRepo.Create(r.Context(), content); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create content record", r))
		return
	}

	h.enqueueProcessing(r, userID, content.ID)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"content_id": content.ID,
		"video_id":   videoID,
		"metadata":   meta,
	})
}

// Upload saves the file under the user's storage directory and queues text
// extraction.
func (h *ContentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 25MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !services.SupportedExtension(ext) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "File type not supported", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	relPath := filepath.Join("users", userID.String(), "uploads", uuid.New().String()+ext)
	absPath := filepath.Join(h.storagePath, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	dst, err := os.Create(absPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(absPath)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	content := &models.Content{
		UserID:   userID,
		Type:     "file",
		Status:   "pending",
		Title:    header.Filename,
		FilePath: &relPath,
	}

	if err := h.contentRepo.Create(r.Context(), content); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create content record", r))
		return
	}

	h.enqueueProcessing(r, userID, content.ID)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"content_id": content.ID,
		"filename":   header.Filename,
	})
}

func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	content, err := h.contentRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
		return
	}

	if content.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, content)
}

func (h *ContentHandler) enqueueProcessing(r *http.Request, userID, contentID uuid.UUID) {
	job := &models.Job{
		UserID:    userID,
		Type:      "content-processing",
		ContentID: contentID,
		Status:    "queued",
		CreatedAt: time.Now(),
	}

	if err := h.jobRepo.Create(r.Context(), job); err == nil {
		jobBytes, _ := json.Marshal(job)
		h.redis.LPush(r.Context(), "queue:content-processing", string(jobBytes))
	}
}

func fetchOEmbedMetadata(videoID string) models.YouTubeMetadata {
	meta := models.YouTubeMetadata{
		VideoID:      videoID,
		Title:        "YouTube Video",
		ChannelName:  "YouTube Channel",
		ThumbnailURL: "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg",
	}

	oembedURL := "https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=" + videoID + "&format=json"
	resp, err := http.Get(oembedURL)
	if err != nil || resp.StatusCode != http.StatusOK {
		return meta
	}
	defer resp.Body.Close()

	var oembed struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	json.NewDecoder(resp.Body).Decode(&oembed)

	if oembed.Title != "" {
		meta.Title = oembed.Title
	}
	if oembed.AuthorName != "" {
		meta.ChannelName = oembed.AuthorName
	}
	if oembed.ThumbnailURL != "" {
		meta.ThumbnailURL = oembed.ThumbnailURL
	}

	return meta
}
