package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/textguard/textguard/pkg/models"
)

func TestFeatureVector(t *testing.T) {
	fp := models.StyleFingerprint{
		VocabularyRichness: 0.5,
		AvgSentenceLength:  0.4,
		SyllableComplexity: 0.8,
	}

	vec := FeatureVector(fp)
	if len(vec.Slice()) != 7 {
		t.Fatalf("expected 7 features, got %d", len(vec.Slice()))
	}
	if vec.Slice()[0] != 0.5 {
		t.Errorf("first feature = %v, want 0.5", vec.Slice()[0])
	}
}

func TestPostgresFingerprintRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresFingerprintRepository(db)

	fingerprint := &Fingerprint{
		AnalysisID: uuid.New(),
		UserID:     uuid.New(),
		Features:   pgvector.NewVector([]float32{0.5, 0.4, 0.8, 0.1, 0.3, 0.2, 0.6}),
	}

	mock.ExpectExec("INSERT INTO fingerprints").
		WithArgs(sqlmock.AnyArg(), fingerprint.AnalysisID, fingerprint.UserID,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), fingerprint)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if fingerprint.ID == uuid.Nil {
		t.Error("expected fingerprint ID to be generated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresFingerprintRepository_FindSimilarStyle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresFingerprintRepository(db)

	probe := pgvector.NewVector([]float32{0.5, 0.4, 0.8, 0.1, 0.3, 0.2, 0.6})
	stored := pgvector.NewVector([]float32{0.5, 0.4, 0.8, 0.1, 0.3, 0.2, 0.5})

	rows := sqlmock.NewRows([]string{"id", "analysis_id", "user_id", "features", "created_at", "distance"}).
		AddRow(uuid.NewString(), uuid.NewString(), uuid.NewString(), stored.String(), time.Now(), 0.02)

	mock.ExpectQuery("SELECT (.+) FROM fingerprints ORDER BY features").
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(rows)

	results, err := repo.FindSimilarStyle(context.Background(), probe, 0)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Distance != 0.02 {
		t.Errorf("distance = %v, want 0.02", results[0].Distance)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
