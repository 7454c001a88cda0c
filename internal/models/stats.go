package models

// UserStats is the derived analytics snapshot for one user. It is recomputed
// on demand from the study event log and never persisted.
type UserStats struct {
	TotalSessions     int `json:"total_sessions"`
	SessionsToday     int `json:"sessions_today"`
	SessionsThisWeek  int `json:"sessions_this_week"`
	SessionsThisMonth int `json:"sessions_this_month"`

	TotalTimeMinutes  int `json:"total_time_minutes"`
	StudyTimeToday    int `json:"study_time_today"`
	StudyTimeThisWeek int `json:"study_time_this_week"`

	QuizzesGenerated   int `json:"quizzes_generated"`
	TotalQuizzesTaken  int `json:"total_quizzes_taken"`
	QuizAccuracy       int `json:"quiz_accuracy"`
	TotalQuizQuestions int `json:"total_quiz_questions"`
	TotalQuizCorrect   int `json:"total_quiz_correct"`

	TotalExamsTaken     int     `json:"total_exams_taken"`
	ExamAverageAccuracy int     `json:"exam_average_accuracy"`
	ExamAverageScore    float64 `json:"exam_average_score"`
	ExamBestScore       float64 `json:"exam_best_score"`

	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	LastSevenDays []DayActivity `json:"last_seven_days"`
	TopTopics     []TopicCount  `json:"top_topics"`
}

// DayActivity is one entry of the rolling 7-day calendar. Day is a narrow
// weekday label ("M", "T", ...), Date the full calendar date (YYYY-MM-DD).
type DayActivity struct {
	Day     string `json:"day"`
	Date    string `json:"date"`
	Studied bool   `json:"studied"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}
