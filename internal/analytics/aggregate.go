package analytics

import (
	"math"
	"sort"
	"time"

	"studyflow-backend/internal/models"
)

// streakGapMax is the largest gap between two consecutive active day-starts
// that still counts as an unbroken streak. 36 hours lets a one-day step
// survive DST-shifted days (23h or 25h) while a fully missed day (48h)
// breaks the run.
const streakGapMax = 36 * time.Hour

// trailingWeek is the "this week" window: the 7×24h span ending at now,
// not aligned to calendar weeks.
const trailingWeek = 7 * 24 * time.Hour

// topTopicLimit caps the ranked topic list.
const topTopicLimit = 5

// ComputeStats folds an unordered study event log into a UserStats snapshot
// using the default time estimator. It is deterministic, allocates only its
// result, and never fails: an empty log yields the all-zero snapshot.
//
// now is explicit so callers control the clock; all calendar-day decisions
// use now's location.
func ComputeStats(events []models.StudyEvent, now time.Time) models.UserStats {
	return ComputeStatsWith(DefaultEstimator(), events, now)
}

// ComputeStatsWith is ComputeStats with a caller-supplied estimator.
func ComputeStatsWith(est Estimator, events []models.StudyEvent, now time.Time) models.UserStats {
	loc := now.Location()
	today := dayStart(now, loc)

	var stats models.UserStats

	activeDays := make(map[time.Time]struct{})
	topicCounts := make(map[string]int)
	var topicOrder []string

	var examAccuracySum, examScoreSum float64

	for _, ev := range events {
		t := ev.OccurredAt.In(loc)
		day := dayStart(t, loc)
		activeDays[day] = struct{}{}

		minutes := est.EventMinutes(ev)
		stats.TotalTimeMinutes += minutes
		if day.Equal(today) {
			stats.StudyTimeToday += minutes
		}
		if withinTrailingWeek(ev.OccurredAt, now) {
			stats.StudyTimeThisWeek += minutes
		}

		switch ev.ActionType {
		case models.ActionCreateSession:
			stats.TotalSessions++
			if day.Equal(today) {
				stats.SessionsToday++
			}
			if withinTrailingWeek(ev.OccurredAt, now) {
				stats.SessionsThisWeek++
			}
			if t.Year() == now.Year() && t.Month() == now.Month() {
				stats.SessionsThisMonth++
			}

		case models.ActionQuiz:
			stats.QuizzesGenerated++

		case models.ActionQuizComplete:
			stats.TotalQuizzesTaken++
			if ev.QuizTotalQuestions != nil {
				stats.TotalQuizQuestions += *ev.QuizTotalQuestions
			}
			if ev.QuizCorrectAnswers != nil {
				stats.TotalQuizCorrect += *ev.QuizCorrectAnswers
			}

		case models.ActionExamComplete:
			stats.TotalExamsTaken++
			var score, total float64
			if ev.ExamScore != nil {
				score = *ev.ExamScore
			}
			if ev.ExamTotalMarks != nil {
				total = *ev.ExamTotalMarks
			}
			if total < 1 {
				total = 1
			}
			acc := 100 * score / total
			if acc > 100 {
				acc = 100
			}
			examAccuracySum += acc
			examScoreSum += score
			if score > stats.ExamBestScore {
				stats.ExamBestScore = score
			}
		}

		for _, kw := range ev.TopicKeywords {
			if topicCounts[kw] == 0 {
				topicOrder = append(topicOrder, kw)
			}
			topicCounts[kw]++
		}
	}

	if stats.TotalQuizQuestions > 0 {
		stats.QuizAccuracy = int(math.Round(
			100 * float64(stats.TotalQuizCorrect) / float64(stats.TotalQuizQuestions)))
	}
	if stats.TotalExamsTaken > 0 {
		n := float64(stats.TotalExamsTaken)
		stats.ExamAverageAccuracy = int(math.Round(examAccuracySum / n))
		stats.ExamAverageScore = math.Round(examScoreSum/n*10) / 10
	}

	stats.CurrentStreak, stats.LongestStreak = streaks(activeDays, today)
	stats.LastSevenDays = lastSevenDays(activeDays, today)
	stats.TopTopics = topTopics(topicCounts, topicOrder)

	return stats
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func withinTrailingWeek(t, now time.Time) bool {
	d := now.Sub(t)
	return d >= 0 && d <= trailingWeek
}

// streaks derives the current and longest consecutive-day runs from the set
// of distinct active day-starts. The current streak is alive only while the
// most recent active day is today or yesterday.
func streaks(activeDays map[time.Time]struct{}, today time.Time) (current, longest int) {
	if len(activeDays) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(activeDays))
	for d := range activeDays {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) <= streakGapMax {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := days[len(days)-1]
	if today.Sub(last) > streakGapMax {
		return 0, longest
	}
	current = 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) > streakGapMax {
			break
		}
		current++
	}
	return current, longest
}

// lastSevenDays builds the rolling calendar for today-6 .. today, oldest
// first. The weekday label is narrow ("M", "T", "W", ...).
func lastSevenDays(activeDays map[time.Time]struct{}, today time.Time) []models.DayActivity {
	out := make([]models.DayActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		_, studied := activeDays[d]
		out = append(out, models.DayActivity{
			Day:     d.Format("Mon")[:1],
			Date:    d.Format("2006-01-02"),
			Studied: studied,
		})
	}
	return out
}

// topTopics ranks keywords by descending count. Ties keep first-seen input
// order, so the ranking is stable across identical inputs.
func topTopics(counts map[string]int, order []string) []models.TopicCount {
	ranked := make([]models.TopicCount, 0, len(order))
	for _, topic := range order {
		ranked = append(ranked, models.TopicCount{Topic: topic, Count: counts[topic]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > topTopicLimit {
		ranked = ranked[:topTopicLimit]
	}
	return ranked
}
