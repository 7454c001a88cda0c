package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyflow-backend/internal/models"
)

// EventRepo is the append-only study event log. There is deliberately no
// update or delete: rows are immutable once written, and readers get an
// unordered snapshot per user.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Append(ctx context.Context, ev *models.StudyEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	query := `INSERT INTO study_events
		(id, user_id, action_type, occurred_at, text_length, topic_keywords,
		 quiz_total_questions, quiz_correct_answers, exam_score, exam_total_marks, exam_subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		ev.ID, ev.UserID, ev.ActionType, ev.OccurredAt, ev.TextLength, ev.TopicKeywords,
		ev.QuizTotalQuestions, ev.QuizCorrectAnswers, ev.ExamScore, ev.ExamTotalMarks, ev.ExamSubject,
	).Scan(&ev.CreatedAt)
}

// ListByUser returns the full event snapshot for one user. No ORDER BY: the
// aggregator tolerates any ordering.
func (r *EventRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.StudyEvent, error) {
	query := `SELECT id, user_id, action_type, occurred_at, text_length, topic_keywords,
		quiz_total_questions, quiz_correct_answers, exam_score, exam_total_marks, exam_subject, created_at
		FROM study_events WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.StudyEvent
	for rows.Next() {
		var ev models.StudyEvent
		err := rows.Scan(
			&ev.ID, &ev.UserID, &ev.ActionType, &ev.OccurredAt, &ev.TextLength, &ev.TopicKeywords,
			&ev.QuizTotalQuestions, &ev.QuizCorrectAnswers, &ev.ExamScore, &ev.ExamTotalMarks,
			&ev.ExamSubject, &ev.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
