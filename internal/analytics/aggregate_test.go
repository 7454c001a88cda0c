package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"studyflow-backend/internal/models"
)

var testNow = time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

func event(action string, at time.Time) models.StudyEvent {
	return models.StudyEvent{
		ID:         uuid.New(),
		ActionType: action,
		OccurredAt: at,
	}
}

func quizResult(at time.Time, total, correct int) models.StudyEvent {
	ev := event(models.ActionQuizComplete, at)
	ev.QuizTotalQuestions = &total
	ev.QuizCorrectAnswers = &correct
	return ev
}

func examResult(at time.Time, score, totalMarks float64) models.StudyEvent {
	ev := event(models.ActionExamComplete, at)
	ev.ExamScore = &score
	ev.ExamTotalMarks = &totalMarks
	return ev
}

func TestComputeStats_EmptyLog(t *testing.T) {
	stats := ComputeStats(nil, testNow)

	if stats.TotalSessions != 0 || stats.TotalTimeMinutes != 0 ||
		stats.QuizAccuracy != 0 || stats.ExamAverageAccuracy != 0 ||
		stats.CurrentStreak != 0 || stats.LongestStreak != 0 {
		t.Errorf("expected all-zero snapshot, got %+v", stats)
	}

	if len(stats.LastSevenDays) != 7 {
		t.Fatalf("expected 7 calendar entries, got %d", len(stats.LastSevenDays))
	}
	for _, d := range stats.LastSevenDays {
		if d.Studied {
			t.Errorf("day %s marked studied on empty log", d.Date)
		}
	}

	if len(stats.TopTopics) != 0 {
		t.Errorf("expected empty topic ranking, got %v", stats.TopTopics)
	}
}

func TestComputeStats_SessionCounts(t *testing.T) {
	events := []models.StudyEvent{
		event(models.ActionCreateSession, testNow.Add(-1*time.Hour)),          // today
		event(models.ActionCreateSession, testNow.Add(-3*24*time.Hour)),       // this week
		event(models.ActionCreateSession, testNow.Add(-10*24*time.Hour)),      // this month only
		event(models.ActionCreateSession, testNow.AddDate(0, -2, 0)),          // older
		event(models.ActionExplain, testNow.Add(-2*time.Hour)),                // not a session
	}

	stats := ComputeStats(events, testNow)

	if stats.TotalSessions != 4 {
		t.Errorf("TotalSessions = %d, want 4", stats.TotalSessions)
	}
	if stats.SessionsToday != 1 {
		t.Errorf("SessionsToday = %d, want 1", stats.SessionsToday)
	}
	if stats.SessionsThisWeek != 2 {
		t.Errorf("SessionsThisWeek = %d, want 2", stats.SessionsThisWeek)
	}
	if stats.SessionsThisMonth != 3 {
		t.Errorf("SessionsThisMonth = %d, want 3", stats.SessionsThisMonth)
	}
}

func TestComputeStats_SessionMonotonicity(t *testing.T) {
	base := []models.StudyEvent{
		event(models.ActionCreateSession, testNow.Add(-30*time.Hour)),
	}
	before := ComputeStats(base, testNow)

	with := append(append([]models.StudyEvent{}, base...),
		event(models.ActionCreateSession, testNow.Add(-10*time.Minute)))
	after := ComputeStats(with, testNow)

	if after.TotalSessions != before.TotalSessions+1 {
		t.Errorf("TotalSessions %d -> %d, want +1", before.TotalSessions, after.TotalSessions)
	}
	if after.SessionsToday != before.SessionsToday+1 {
		t.Errorf("SessionsToday %d -> %d, want +1", before.SessionsToday, after.SessionsToday)
	}

	// Every other day in the calendar is untouched.
	for i := 0; i < 6; i++ {
		if before.LastSevenDays[i].Studied != after.LastSevenDays[i].Studied {
			t.Errorf("day %s changed: %v -> %v",
				before.LastSevenDays[i].Date,
				before.LastSevenDays[i].Studied,
				after.LastSevenDays[i].Studied)
		}
	}
}

func TestComputeStats_TimeEstimates(t *testing.T) {
	tests := []struct {
		name    string
		ev      models.StudyEvent
		minutes int
	}{
		{"plain event, no text", event(models.ActionExplain, testNow), 1},
		{"summarize with 1200 chars", func() models.StudyEvent {
			ev := event(models.ActionSummarize, testNow)
			ev.TextLength = 1200
			return ev
		}(), 1 + 3},
		{"quiz generation with 400 chars", func() models.StudyEvent {
			ev := event(models.ActionQuiz, testNow)
			ev.TextLength = 400
			return ev
		}(), 1 + 1 + 2},
		{"quiz completion, one minute per question", quizResult(testNow, 12, 9), 12},
		{"exam completion, ceil(marks*1.5)", examResult(testNow, 15, 21), 32},
		{"quiz completion with missing totals", event(models.ActionQuizComplete, testNow), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stats := ComputeStats([]models.StudyEvent{tc.ev}, testNow)
			if stats.TotalTimeMinutes != tc.minutes {
				t.Errorf("TotalTimeMinutes = %d, want %d", stats.TotalTimeMinutes, tc.minutes)
			}
			if stats.StudyTimeToday != tc.minutes {
				t.Errorf("StudyTimeToday = %d, want %d", stats.StudyTimeToday, tc.minutes)
			}
		})
	}
}

func TestComputeStats_WeekWindowIsTrailingNotCalendar(t *testing.T) {
	ev := event(models.ActionExplain, testNow.Add(-6*24*time.Hour-23*time.Hour))
	stats := ComputeStats([]models.StudyEvent{ev}, testNow)
	if stats.StudyTimeThisWeek != 1 {
		t.Errorf("event inside trailing 7x24h window excluded: week minutes = %d", stats.StudyTimeThisWeek)
	}

	ev = event(models.ActionExplain, testNow.Add(-7*24*time.Hour-time.Minute))
	stats = ComputeStats([]models.StudyEvent{ev}, testNow)
	if stats.StudyTimeThisWeek != 0 {
		t.Errorf("event outside trailing window included: week minutes = %d", stats.StudyTimeThisWeek)
	}
}

func TestComputeStats_QuizAccuracy(t *testing.T) {
	events := []models.StudyEvent{
		quizResult(testNow.Add(-time.Hour), 5, 4),
		quizResult(testNow.Add(-2*time.Hour), 10, 6),
		event(models.ActionQuiz, testNow.Add(-3*time.Hour)),
	}

	stats := ComputeStats(events, testNow)

	if stats.QuizzesGenerated != 1 {
		t.Errorf("QuizzesGenerated = %d, want 1", stats.QuizzesGenerated)
	}
	if stats.TotalQuizzesTaken != 2 {
		t.Errorf("TotalQuizzesTaken = %d, want 2", stats.TotalQuizzesTaken)
	}
	if stats.TotalQuizQuestions != 15 || stats.TotalQuizCorrect != 10 {
		t.Errorf("question totals = %d/%d, want 15/10", stats.TotalQuizQuestions, stats.TotalQuizCorrect)
	}
	// round(100*10/15) == 67
	if stats.QuizAccuracy != 67 {
		t.Errorf("QuizAccuracy = %d, want 67", stats.QuizAccuracy)
	}
}

func TestComputeStats_QuizAccuracyZeroGuard(t *testing.T) {
	events := []models.StudyEvent{
		quizResult(testNow, 0, 0),
		event(models.ActionQuizComplete, testNow), // totals absent entirely
	}

	stats := ComputeStats(events, testNow)

	if stats.QuizAccuracy != 0 {
		t.Errorf("QuizAccuracy = %d, want 0 for zero denominators", stats.QuizAccuracy)
	}
	if stats.TotalQuizzesTaken != 2 {
		t.Errorf("TotalQuizzesTaken = %d, want 2", stats.TotalQuizzesTaken)
	}
}

func TestComputeStats_ExamPerformance(t *testing.T) {
	stats := ComputeStats([]models.StudyEvent{examResult(testNow, 18, 20)}, testNow)

	if stats.TotalExamsTaken != 1 {
		t.Errorf("TotalExamsTaken = %d, want 1", stats.TotalExamsTaken)
	}
	if stats.ExamAverageAccuracy != 90 {
		t.Errorf("ExamAverageAccuracy = %d, want 90", stats.ExamAverageAccuracy)
	}
	if stats.ExamAverageScore != 18.0 {
		t.Errorf("ExamAverageScore = %v, want 18.0", stats.ExamAverageScore)
	}
	if stats.ExamBestScore != 18 {
		t.Errorf("ExamBestScore = %v, want 18", stats.ExamBestScore)
	}
}

func TestComputeStats_ExamAverages(t *testing.T) {
	events := []models.StudyEvent{
		examResult(testNow.Add(-time.Hour), 18, 20),  // 90%
		examResult(testNow.Add(-2*time.Hour), 7, 10), // 70%
	}

	stats := ComputeStats(events, testNow)

	if stats.ExamAverageAccuracy != 80 {
		t.Errorf("ExamAverageAccuracy = %d, want 80", stats.ExamAverageAccuracy)
	}
	if stats.ExamAverageScore != 12.5 {
		t.Errorf("ExamAverageScore = %v, want 12.5", stats.ExamAverageScore)
	}
	if stats.ExamBestScore != 18 {
		t.Errorf("ExamBestScore = %v, want 18", stats.ExamBestScore)
	}
}

func TestComputeStats_ExamZeroMarksGuard(t *testing.T) {
	stats := ComputeStats([]models.StudyEvent{
		examResult(testNow, 3, 0),                  // denominator clamped to 1
		event(models.ActionExamComplete, testNow), // fields absent
	}, testNow)

	if stats.ExamAverageAccuracy < 0 || stats.ExamAverageAccuracy > 100 {
		t.Errorf("ExamAverageAccuracy = %d, want within [0,100]", stats.ExamAverageAccuracy)
	}
	if stats.TotalExamsTaken != 2 {
		t.Errorf("TotalExamsTaken = %d, want 2", stats.TotalExamsTaken)
	}
}

func TestComputeStats_Streaks(t *testing.T) {
	day := func(offset int) time.Time {
		return testNow.AddDate(0, 0, offset)
	}

	tests := []struct {
		name    string
		offsets []int // active days relative to today
		current int
		longest int
	}{
		{"run of three then gap, active today", []int{-4, -3, -2, 0}, 1, 3},
		{"yesterday and today", []int{-1, 0}, 2, 2},
		{"ended yesterday", []int{-2, -1}, 2, 2},
		{"ended two days ago", []int{-3, -2}, 0, 2},
		{"single day today", []int{0}, 1, 1},
		{"no activity", nil, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var events []models.StudyEvent
			for _, off := range tc.offsets {
				events = append(events, event(models.ActionExplain, day(off)))
			}

			stats := ComputeStats(events, testNow)

			if stats.CurrentStreak != tc.current {
				t.Errorf("CurrentStreak = %d, want %d", stats.CurrentStreak, tc.current)
			}
			if stats.LongestStreak != tc.longest {
				t.Errorf("LongestStreak = %d, want %d", stats.LongestStreak, tc.longest)
			}
		})
	}
}

func TestComputeStats_StreakIgnoresIntraDayDuplicates(t *testing.T) {
	events := []models.StudyEvent{
		event(models.ActionExplain, testNow.Add(-30*time.Minute)),
		event(models.ActionChat, testNow.Add(-2*time.Hour)),
		event(models.ActionQuiz, testNow.Add(-25*time.Hour)), // yesterday
	}

	stats := ComputeStats(events, testNow)

	if stats.CurrentStreak != 2 || stats.LongestStreak != 2 {
		t.Errorf("streaks = %d/%d, want 2/2", stats.CurrentStreak, stats.LongestStreak)
	}
}

func TestComputeStats_LastSevenDays(t *testing.T) {
	events := []models.StudyEvent{
		event(models.ActionExplain, testNow.Add(-time.Hour)),
		event(models.ActionChat, testNow.AddDate(0, 0, -3)),
		event(models.ActionChat, testNow.AddDate(0, 0, -30)), // outside the window
	}

	stats := ComputeStats(events, testNow)

	if len(stats.LastSevenDays) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(stats.LastSevenDays))
	}

	last := stats.LastSevenDays[6]
	if last.Date != testNow.Format("2006-01-02") {
		t.Errorf("last entry date = %s, want today %s", last.Date, testNow.Format("2006-01-02"))
	}
	if !last.Studied {
		t.Error("today should be marked studied")
	}

	for i := 1; i < 7; i++ {
		if stats.LastSevenDays[i].Date <= stats.LastSevenDays[i-1].Date {
			t.Errorf("calendar not oldest-first at index %d: %s <= %s",
				i, stats.LastSevenDays[i].Date, stats.LastSevenDays[i-1].Date)
		}
	}

	if !stats.LastSevenDays[3].Studied {
		t.Error("day three entries back should be marked studied")
	}
	if stats.LastSevenDays[0].Studied {
		t.Error("oldest calendar day should not be marked studied")
	}
}

func TestComputeStats_TopTopics(t *testing.T) {
	mk := func(action string, keywords ...string) models.StudyEvent {
		ev := event(action, testNow)
		ev.TopicKeywords = keywords
		return ev
	}

	events := []models.StudyEvent{
		mk(models.ActionExplain, "react", "go"),
		mk(models.ActionSummarize, "react"),
	}

	stats := ComputeStats(events, testNow)

	want := []models.TopicCount{
		{Topic: "react", Count: 2},
		{Topic: "go", Count: 1},
	}
	if !reflect.DeepEqual(stats.TopTopics, want) {
		t.Errorf("TopTopics = %v, want %v", stats.TopTopics, want)
	}
}

func TestComputeStats_TopTopicsTieBreakAndLimit(t *testing.T) {
	mk := func(keywords ...string) models.StudyEvent {
		ev := event(models.ActionExplain, testNow)
		ev.TopicKeywords = keywords
		return ev
	}

	events := []models.StudyEvent{
		mk("alpha", "beta", "gamma"),
		mk("delta", "epsilon", "zeta"),
		mk("zeta"),
	}

	stats := ComputeStats(events, testNow)

	if len(stats.TopTopics) != 5 {
		t.Fatalf("expected 5 topics, got %d", len(stats.TopTopics))
	}
	if stats.TopTopics[0].Topic != "zeta" || stats.TopTopics[0].Count != 2 {
		t.Errorf("top topic = %+v, want zeta/2", stats.TopTopics[0])
	}
	// All remaining topics count 1; ties keep first-seen order.
	rest := []string{"alpha", "beta", "gamma", "delta"}
	for i, topic := range rest {
		if stats.TopTopics[i+1].Topic != topic {
			t.Errorf("topic[%d] = %s, want %s (first-seen tie order)", i+1, stats.TopTopics[i+1].Topic, topic)
		}
	}
}

func TestComputeStats_OrderIndependent(t *testing.T) {
	events := []models.StudyEvent{
		event(models.ActionCreateSession, testNow.AddDate(0, 0, -2)),
		quizResult(testNow.Add(-time.Hour), 10, 7),
		event(models.ActionQuiz, testNow.AddDate(0, 0, -1)),
		examResult(testNow.AddDate(0, 0, -5), 40, 50),
	}

	reversed := make([]models.StudyEvent, len(events))
	for i, ev := range events {
		reversed[len(events)-1-i] = ev
	}

	a := ComputeStats(events, testNow)
	b := ComputeStats(reversed, testNow)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("stats depend on event order:\n%+v\n%+v", a, b)
	}
}

func TestComputeStats_Idempotent(t *testing.T) {
	events := []models.StudyEvent{
		event(models.ActionCreateSession, testNow.Add(-time.Hour)),
		quizResult(testNow.Add(-2*time.Hour), 8, 5),
	}

	a := ComputeStats(events, testNow)
	b := ComputeStats(events, testNow)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated computation differs:\n%+v\n%+v", a, b)
	}
}
