package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyflow-backend/internal/models"
)

type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

func (r *ContentRepo) Create(ctx context.Context, c *models.Content) error {
	c.ID = uuid.New()
	if len(c.MetadataJSON) == 0 {
		c.MetadataJSON = []byte("{}")
	}

	query := `INSERT INTO contents (id, user_id, type, status, title, source_url, file_path, extracted_text, metadata_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.Type, c.Status, c.Title, c.SourceURL, c.FilePath, c.ExtractedText, c.MetadataJSON,
	).Scan(&c.CreatedAt)
}

func (r *ContentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	c := &models.Content{}
	query := `SELECT id, user_id, type, status, title, source_url, file_path, extracted_text, metadata_json, created_at
		FROM contents WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Type, &c.Status, &c.Title, &c.SourceURL,
		&c.FilePath, &c.ExtractedText, &c.MetadataJSON, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContentRepo) UpdateExtractedText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE contents SET extracted_text = $1, status = 'ready' WHERE id = $2", text, id)
	return err
}

func (r *ContentRepo) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata []byte) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE contents SET metadata_json = $1 WHERE id = $2", metadata, id)
	return err
}

func (r *ContentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE contents SET status = $1 WHERE id = $2", status, id)
	return err
}
