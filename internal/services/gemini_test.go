package services

import (
	"encoding/json"
	"strings"
	"testing"

	"studyflow-backend/internal/models"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain json", `[{"front":"a"}]`, `[{"front":"a"}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"bare fence", "```\n[1,2]\n```", "[1,2]"},
		{"surrounding whitespace", "  \n[1,2]\n  ", "[1,2]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFence(tc.input); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestParseQuizJSON(t *testing.T) {
	raw := "```json\n" + `[
		{"question": "What is Go?", "options": ["Language", "Animal", "Game", "Tool"], "correct_index": 0},
		{"question": "", "options": ["a", "b"], "correct_index": 0},
		{"question": "Bad index", "options": ["a", "b"], "correct_index": 5}
	]` + "\n```"

	result, err := parseQuizJSON(raw)
	if err != nil {
		t.Fatalf("parseQuizJSON failed: %v", err)
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal(result, &questions); err != nil {
		t.Fatalf("Result is not valid JSON: %v", err)
	}

	if len(questions) != 1 {
		t.Fatalf("Expected 1 valid question after filtering, got %d", len(questions))
	}
	if questions[0].Question != "What is Go?" {
		t.Errorf("Unexpected question: %q", questions[0].Question)
	}
}

func TestParseQuizJSONRejectsGarbage(t *testing.T) {
	if _, err := parseQuizJSON("not json at all"); err == nil {
		t.Error("Expected error for non-JSON input")
	}
	if _, err := parseQuizJSON(`[{"question": "", "options": []}]`); err == nil {
		t.Error("Expected error when no usable questions remain")
	}
}

func TestParseFlashcardsJSON(t *testing.T) {
	raw := `[
		{"front": "TCP", "back": "Transmission Control Protocol"},
		{"front": "", "back": "orphan"},
		{"front": "orphan", "back": ""}
	]`

	result, err := parseFlashcardsJSON(raw)
	if err != nil {
		t.Fatalf("parseFlashcardsJSON failed: %v", err)
	}

	var cards []models.Flashcard
	json.Unmarshal(result, &cards)
	if len(cards) != 1 {
		t.Fatalf("Expected 1 valid card, got %d", len(cards))
	}
}

func TestParseExamJSONRecomputesTotal(t *testing.T) {
	raw := `{"total_marks": 100, "questions": [
		{"question": "Define osmosis.", "marks": 5, "model_answer": "..."},
		{"question": "Explain diffusion.", "marks": 10, "model_answer": "..."}
	]}`

	result, err := parseExamJSON(raw)
	if err != nil {
		t.Fatalf("parseExamJSON failed: %v", err)
	}

	var paper models.ExamPaper
	json.Unmarshal(result, &paper)
	if paper.TotalMarks != 15 {
		t.Errorf("Expected recomputed total 15, got %d", paper.TotalMarks)
	}
}

func TestBuildPromptKinds(t *testing.T) {
	cfg := models.GenerateRequest{NumQuestions: 5, NumCards: 8, TotalMarks: 40, Difficulty: "hard", Language: "Spanish"}

	tests := []struct {
		kind     string
		contains string
	}{
		{models.GenExplain, "Explain"},
		{models.GenSummary, "Summarize"},
		{models.GenGuide, "revision guide"},
		{models.GenQuiz, "5 questions"},
		{models.GenFlashcards, "8 flashcards"},
		{models.GenExam, "40 marks"},
	}

	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			prompt, err := buildPrompt(tc.kind, cfg, "source material")
			if err != nil {
				t.Fatalf("buildPrompt(%s) failed: %v", tc.kind, err)
			}
			if !strings.Contains(prompt, tc.contains) {
				t.Errorf("Expected prompt to contain %q", tc.contains)
			}
			if !strings.Contains(prompt, "source material") {
				t.Error("Expected prompt to include the source")
			}
			if !strings.Contains(prompt, "hard") {
				t.Error("Expected prompt to mention difficulty")
			}
			if !strings.Contains(prompt, "Spanish") {
				t.Error("Expected prompt to mention language")
			}
		})
	}
}

func TestBuildPromptUnknownKind(t *testing.T) {
	if _, err := buildPrompt("poems", models.GenerateRequest{}, "text"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
