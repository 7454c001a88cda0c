package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"studyflow-backend/internal/keywords"
	"studyflow-backend/internal/models"
	"studyflow-backend/internal/repository"
	"studyflow-backend/internal/services"
)

const maxRetries = 3

type Pool struct {
	redis       *redis.Client
	gemini      *services.GeminiService
	youtube     *services.YouTubeService
	fileExtract *services.FileExtractService
	jobRepo     *repository.JobRepo
	contentRepo *repository.ContentRepo
	eventRepo   *repository.EventRepo
	storagePath string
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	gemini *services.GeminiService,
	youtube *services.YouTubeService,
	fileExtract *services.FileExtractService,
	jobRepo *repository.JobRepo,
	contentRepo *repository.ContentRepo,
	eventRepo *repository.EventRepo,
	storagePath string,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		gemini:      gemini,
		youtube:     youtube,
		fileExtract: fileExtract,
		jobRepo:     jobRepo,
		contentRepo: contentRepo,
		eventRepo:   eventRepo,
		storagePath: storagePath,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{
		"queue:content-processing",
		"queue:generation",
	}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s, kind: %s)", id, job.ID, job.Type, job.Kind)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")
		p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
			Type: "status_update",
			Payload: models.StatusUpdate{
				JobID:    job.ID,
				Step:     1,
				StepName: "Preparing material",
			},
		})

		var processErr error
		switch job.Type {
		case "content-processing":
			processErr = p.processContent(ctx, &job)
		case "generation":
			processErr = p.processGeneration(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

// processContent turns raw material (YouTube link or uploaded file) into
// extracted text on the content row.
func (p *Pool) processContent(ctx context.Context, job *models.Job) error {
	content, err := p.contentRepo.GetByID(ctx, job.ContentID)
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	p.contentRepo.UpdateStatus(ctx, content.ID, "processing")

	switch content.Type {
	case "youtube":
		if content.SourceURL == nil {
			return fmt.Errorf("youtube content has no source URL")
		}

		videoID, err := services.ExtractVideoID(*content.SourceURL)
		if err != nil {
			return fmt.Errorf("invalid YouTube URL %q: %w", *content.SourceURL, err)
		}

		p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
			Type: "status_update",
			Payload: models.StatusUpdate{
				JobID:    job.ID,
				Step:     2,
				StepName: "Extracting transcript from video",
			},
		})

		transcript, err := p.youtube.GetTranscript(videoID)
		if err != nil {
			return fmt.Errorf("transcript extraction failed for video %s: %w", videoID, err)
		}

		if meta, metaErr := p.youtube.GetVideoMetadata(videoID); metaErr == nil {
			if metaBytes, marshalErr := json.Marshal(meta); marshalErr == nil {
				p.contentRepo.UpdateMetadata(ctx, content.ID, metaBytes)
			}
		}

		if err := p.contentRepo.UpdateExtractedText(ctx, content.ID, transcript); err != nil {
			return fmt.Errorf("failed to save transcript: %w", err)
		}

		log.Printf("Fetched transcript for video %s (%d chars)", videoID, len(transcript))

	case "file":
		if content.FilePath == nil || *content.FilePath == "" {
			return fmt.Errorf("file content has no file path")
		}

		fullPath := filepath.Join(p.storagePath, *content.FilePath)
		extracted, err := p.fileExtract.ExtractTextFromPath(fullPath)
		if err != nil {
			return fmt.Errorf("failed to extract file text from %s: %w", fullPath, err)
		}

		if err := p.contentRepo.UpdateExtractedText(ctx, content.ID, extracted); err != nil {
			return fmt.Errorf("failed to save extracted file text: %w", err)
		}

		log.Printf("Extracted file text for content %s (%d chars)", content.ID, len(extracted))

	default:
		return fmt.Errorf("content type %q needs no processing", content.Type)
	}

	return nil
}

// processGeneration runs the model against ready material and stores the
// result on the job. A study event is logged so the activity aggregation
// sees the generation.
func (p *Pool) processGeneration(ctx context.Context, job *models.Job) error {
	content, err := p.contentRepo.GetByID(ctx, job.ContentID)
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}
	if content.ExtractedText == nil || *content.ExtractedText == "" {
		return fmt.Errorf("content %s has no extracted text", content.ID)
	}

	result, err := p.gemini.Generate(ctx, job, *content.ExtractedText)
	if err != nil {
		return err
	}

	if err := p.jobRepo.SaveResult(ctx, job.ID, result); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	p.recordGenerationEvent(ctx, job, *content.ExtractedText)
	return nil
}

// recordGenerationEvent appends the activity-log entry for a finished
// generation. Exam papers get no event here: the exam only counts once the
// user submits a result.
func (p *Pool) recordGenerationEvent(ctx context.Context, job *models.Job, source string) {
	var action string
	switch job.Kind {
	case models.GenExplain:
		action = models.ActionExplain
	case models.GenSummary, models.GenGuide:
		action = models.ActionSummarize
	case models.GenQuiz:
		action = models.ActionQuiz
	case models.GenFlashcards:
		action = models.ActionFlashcards
	default:
		return
	}

	ev := &models.StudyEvent{
		UserID:        job.UserID,
		ActionType:    action,
		OccurredAt:    time.Now(),
		TextLength:    len(source),
		TopicKeywords: keywords.Extract(source),
	}

	if err := p.eventRepo.Append(ctx, ev); err != nil {
		log.Printf("Failed to record %s event for job %s: %v", action, job.ID, err)
		return
	}

	p.redis.Del(ctx, fmt.Sprintf("stats:%s", job.UserID.String()))
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")

	resultType := job.Kind
	if job.Type == "content-processing" {
		resultType = "content"
	}

	p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:      job.ID,
			ResultType: resultType,
		},
	})

	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < maxRetries {
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "queued")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), "queue:"+job.Type, string(jobBytes))
		})
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
	if job.Type == "content-processing" {
		p.contentRepo.UpdateStatus(ctx, job.ContentID, "failed")
	}

	p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: errMsg,
		},
	})
}
