package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"google.golang.org/api/option"

	"studyflow-backend/internal/models"
)

const sourceCharLimit = 60000

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	redis    *redis.Client
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int, redisClient *redis.Client) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		redis:    redisClient,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// PublishUpdate pushes a websocket message onto the user's pub/sub channel.
func (s *GeminiService) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	s.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data))
}

// Generate runs one generation job against the model and returns the result
// payload to store on the job. Structured kinds (quiz, flashcards, exam) come
// back as validated JSON; prose kinds are wrapped as {"content": ...}.
func (s *GeminiService) Generate(ctx context.Context, job *models.Job, source string) (json.RawMessage, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	var config models.GenerateRequest
	json.Unmarshal(job.ConfigJSON, &config)

	if len(source) > sourceCharLimit {
		source = source[:sourceCharLimit]
	}

	prompt, err := buildPrompt(job.Kind, config, source)
	if err != nil {
		return nil, err
	}

	s.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID: job.ID, Step: 2, StepName: "Generating " + job.Kind,
			EstimatedSecondsRemaining: 30,
		},
	})

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("Gemini candidate %d stopped early: %s", i, cand.FinishReason)
		}
	}

	rawText := extractText(resp)
	if rawText == "" {
		return nil, fmt.Errorf("Gemini returned empty response for %s job", job.Kind)
	}

	switch job.Kind {
	case models.GenQuiz:
		return parseQuizJSON(rawText)
	case models.GenFlashcards:
		return parseFlashcardsJSON(rawText)
	case models.GenExam:
		return parseExamJSON(rawText)
	default:
		out, _ := json.Marshal(map[string]string{"content": rawText})
		return out, nil
	}
}

// Chat answers a follow-up question against previously extracted material.
func (s *GeminiService) Chat(ctx context.Context, source, message string, history []models.ChatTurn) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	if len(source) > sourceCharLimit {
		source = source[:sourceCharLimit]
	}

	chat := s.model.StartChat()
	chat.History = []*genai.Content{
		{
			Role:  "user",
			Parts: []genai.Part{genai.Text("You are a study tutor. Answer questions using only this material:\n\n" + source)},
		},
		{
			Role:  "model",
			Parts: []genai.Part{genai.Text("Understood. I will answer questions about this material.")},
		},
	}
	for _, turn := range history {
		role := "user"
		if turn.Role == "model" {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	reply := extractText(resp)
	if reply == "" {
		return "", fmt.Errorf("Gemini returned empty chat reply")
	}
	return reply, nil
}

func buildPrompt(kind string, config models.GenerateRequest, source string) (string, error) {
	var b strings.Builder

	switch kind {
	case models.GenExplain:
		b.WriteString("Explain the following study material step by step, as if teaching a student who has never seen it. Use plain language and short paragraphs.")
	case models.GenSummary:
		b.WriteString("Summarize the following study material into concise revision notes with headed sections and bullet points.")
	case models.GenGuide:
		b.WriteString("Create a structured revision guide for the following study material: key concepts, definitions, common pitfalls, and a suggested revision order.")
	case models.GenQuiz:
		n := config.NumQuestions
		if n <= 0 {
			n = 10
		}
		fmt.Fprintf(&b, `Create a multiple-choice quiz with %d questions from the material below. Return ONLY a valid JSON array, no markdown fences, where each element is:
{"question": "...", "options": ["...","...","...","..."], "correct_index": 0, "explanation": "...", "topic": "..."}`, n)
	case models.GenFlashcards:
		n := config.NumCards
		if n <= 0 {
			n = 15
		}
		fmt.Fprintf(&b, `Create %d flashcards from the material below. Return ONLY a valid JSON array, no markdown fences, where each element is:
{"front": "...", "back": "..."}`, n)
	case models.GenExam:
		marks := config.TotalMarks
		if marks <= 0 {
			marks = 50
		}
		fmt.Fprintf(&b, `Create a written exam paper worth %d marks in total from the material below. Return ONLY a valid JSON object, no markdown fences:
{"total_marks": %d, "questions": [{"question": "...", "marks": 5, "model_answer": "..."}]}`, marks, marks)
	default:
		return "", fmt.Errorf("unknown generation kind: %s", kind)
	}

	if config.Difficulty != "" {
		fmt.Fprintf(&b, "\nDifficulty: %s.", config.Difficulty)
	}
	if len(config.FocusAreas) > 0 {
		fmt.Fprintf(&b, "\nFocus on: %s.", strings.Join(config.FocusAreas, ", "))
	}
	if config.Language != "" {
		fmt.Fprintf(&b, "\nRespond in %s.", config.Language)
	}

	b.WriteString("\n\nMaterial:\n")
	b.WriteString(source)

	return b.String(), nil
}

func parseQuizJSON(raw string) (json.RawMessage, error) {
	cleaned := stripCodeFence(raw)

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("quiz response is not valid JSON: %w", err)
	}

	valid := questions[:0]
	for _, q := range questions {
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("quiz response contained no usable questions")
	}

	return json.Marshal(valid)
}

func parseFlashcardsJSON(raw string) (json.RawMessage, error) {
	cleaned := stripCodeFence(raw)

	var cards []models.Flashcard
	if err := json.Unmarshal([]byte(cleaned), &cards); err != nil {
		return nil, fmt.Errorf("flashcard response is not valid JSON: %w", err)
	}

	valid := cards[:0]
	for _, c := range cards {
		if c.Front != "" && c.Back != "" {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("flashcard response contained no usable cards")
	}

	return json.Marshal(valid)
}

func parseExamJSON(raw string) (json.RawMessage, error) {
	cleaned := stripCodeFence(raw)

	var paper models.ExamPaper
	if err := json.Unmarshal([]byte(cleaned), &paper); err != nil {
		return nil, fmt.Errorf("exam response is not valid JSON: %w", err)
	}
	if len(paper.Questions) == 0 {
		return nil, fmt.Errorf("exam response contained no questions")
	}

	// Keep the advertised total honest
	sum := 0
	for _, q := range paper.Questions {
		sum += q.Marks
	}
	if sum > 0 {
		paper.TotalMarks = sum
	}

	return json.Marshal(paper)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
