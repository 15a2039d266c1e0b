package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/textguard/textguard/pkg/models"
)

// Analysis represents a persisted analysis run
type Analysis struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	WordCount    int
	OverallScore float64
	MaxMatch     float64
	Result       *models.AnalysisResult
	CreatedAt    time.Time
}

// AnalysisRepository defines the interface for analysis storage operations
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Analysis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresAnalysisRepository implements AnalysisRepository using PostgreSQL
type PostgresAnalysisRepository struct {
	db *sql.DB
}

// NewPostgresAnalysisRepository creates a new PostgresAnalysisRepository
func NewPostgresAnalysisRepository(db *sql.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// Create inserts a new analysis into the database
func (r *PostgresAnalysisRepository) Create(ctx context.Context, analysis *Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}

	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}

	result, err := json.Marshal(analysis.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analyses (id, user_id, title, word_count, overall_score, max_match, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.Title,
		analysis.WordCount,
		analysis.OverallScore,
		analysis.MaxMatch,
		result,
		analysis.CreatedAt,
	)

	return err
}

// GetByID retrieves an analysis by its ID
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	query := `
		SELECT id, user_id, title, word_count, overall_score, max_match, result, created_at
		FROM analyses
		WHERE id = $1
	`

	analysis := &Analysis{}
	var result []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&analysis.ID,
		&analysis.UserID,
		&analysis.Title,
		&analysis.WordCount,
		&analysis.OverallScore,
		&analysis.MaxMatch,
		&result,
		&analysis.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(result) > 0 {
		analysis.Result = &models.AnalysisResult{}
		if err := json.Unmarshal(result, analysis.Result); err != nil {
			return nil, err
		}
	}

	return analysis, nil
}

// ListByUser retrieves the most recent analyses for a user. The full result
// document is omitted; list views only need the headline numbers.
func (r *PostgresAnalysisRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, title, word_count, overall_score, max_match, created_at
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		analysis := &Analysis{}
		err := rows.Scan(
			&analysis.ID,
			&analysis.UserID,
			&analysis.Title,
			&analysis.WordCount,
			&analysis.OverallScore,
			&analysis.MaxMatch,
			&analysis.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

// Delete removes an analysis from the database
func (r *PostgresAnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM analyses WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
