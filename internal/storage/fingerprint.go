package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/textguard/textguard/pkg/models"
)

// Fingerprint represents a stored document-level style fingerprint
type Fingerprint struct {
	ID         uuid.UUID
	AnalysisID uuid.UUID
	UserID     uuid.UUID
	Features   pgvector.Vector
	CreatedAt  time.Time
}

// FingerprintRepository defines the interface for style fingerprint storage
type FingerprintRepository interface {
	Create(ctx context.Context, fingerprint *Fingerprint) error
	GetByAnalysisID(ctx context.Context, analysisID uuid.UUID) (*Fingerprint, error)
	FindSimilarStyle(ctx context.Context, features pgvector.Vector, limit int) ([]*FingerprintWithDistance, error)
	DeleteByAnalysisID(ctx context.Context, analysisID uuid.UUID) error
}

// FingerprintWithDistance represents a fingerprint with its style distance
type FingerprintWithDistance struct {
	Fingerprint *Fingerprint
	Distance    float64
}

// FeatureVector converts a style fingerprint to its pgvector representation
func FeatureVector(fp models.StyleFingerprint) pgvector.Vector {
	raw := fp.Vector()
	features := make([]float32, len(raw))
	for i, v := range raw {
		features[i] = float32(v)
	}
	return pgvector.NewVector(features)
}

// PostgresFingerprintRepository implements FingerprintRepository using
// PostgreSQL with pgvector
type PostgresFingerprintRepository struct {
	db *sql.DB
}

// NewPostgresFingerprintRepository creates a new PostgresFingerprintRepository
func NewPostgresFingerprintRepository(db *sql.DB) *PostgresFingerprintRepository {
	return &PostgresFingerprintRepository{db: db}
}

// Create inserts a new fingerprint into the database
func (r *PostgresFingerprintRepository) Create(ctx context.Context, fingerprint *Fingerprint) error {
	if fingerprint.ID == uuid.Nil {
		fingerprint.ID = uuid.New()
	}

	if fingerprint.CreatedAt.IsZero() {
		fingerprint.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO fingerprints (id, analysis_id, user_id, features, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		fingerprint.ID,
		fingerprint.AnalysisID,
		fingerprint.UserID,
		fingerprint.Features,
		fingerprint.CreatedAt,
	)

	return err
}

// GetByAnalysisID retrieves the fingerprint for an analysis
func (r *PostgresFingerprintRepository) GetByAnalysisID(ctx context.Context, analysisID uuid.UUID) (*Fingerprint, error) {
	query := `
		SELECT id, analysis_id, user_id, features, created_at
		FROM fingerprints
		WHERE analysis_id = $1
	`

	fingerprint := &Fingerprint{}
	err := r.db.QueryRowContext(ctx, query, analysisID).Scan(
		&fingerprint.ID,
		&fingerprint.AnalysisID,
		&fingerprint.UserID,
		&fingerprint.Features,
		&fingerprint.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return fingerprint, nil
}

// FindSimilarStyle finds stored fingerprints closest in style to the given
// feature vector using pgvector cosine distance. Ghostwriting checks compare
// a submission's style against an author's earlier work.
func (r *PostgresFingerprintRepository) FindSimilarStyle(ctx context.Context, features pgvector.Vector, limit int) ([]*FingerprintWithDistance, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, analysis_id, user_id, features, created_at,
			   features <=> $1 as distance
		FROM fingerprints
		ORDER BY features <=> $1
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, features, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*FingerprintWithDistance
	for rows.Next() {
		fingerprint := &Fingerprint{}
		var distance float64
		err := rows.Scan(
			&fingerprint.ID,
			&fingerprint.AnalysisID,
			&fingerprint.UserID,
			&fingerprint.Features,
			&fingerprint.CreatedAt,
			&distance,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &FingerprintWithDistance{
			Fingerprint: fingerprint,
			Distance:    distance,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// DeleteByAnalysisID removes the fingerprint for an analysis
func (r *PostgresFingerprintRepository) DeleteByAnalysisID(ctx context.Context, analysisID uuid.UUID) error {
	query := `DELETE FROM fingerprints WHERE analysis_id = $1`
	_, err := r.db.ExecContext(ctx, query, analysisID)
	return err
}
