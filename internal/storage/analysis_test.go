package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/textguard/textguard/pkg/models"
)

func TestPostgresAnalysisRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	analysis := &Analysis{
		UserID:       uuid.New(),
		Title:        "term paper",
		WordCount:    480,
		OverallScore: 72.5,
		MaxMatch:     85.1,
		Result:       &models.AnalysisResult{OverallScore: 72.5, WordCount: 480},
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(sqlmock.AnyArg(), analysis.UserID, analysis.Title, analysis.WordCount,
			analysis.OverallScore, analysis.MaxMatch, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), analysis)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if analysis.ID == uuid.Nil {
		t.Error("expected analysis ID to be generated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresAnalysisRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	analysisID := uuid.New()
	userID := uuid.New()
	result, _ := json.Marshal(&models.AnalysisResult{OverallScore: 72.5, WordCount: 480})

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "word_count", "overall_score", "max_match", "result", "created_at"}).
		AddRow(analysisID.String(), userID.String(), "term paper", 480, 72.5, 85.1, result, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id").
		WithArgs(analysisID).
		WillReturnRows(rows)

	analysis, err := repo.GetByID(context.Background(), analysisID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if analysis == nil {
		t.Fatal("expected analysis to be returned")
	}

	if analysis.ID != analysisID {
		t.Errorf("expected ID %s, got %s", analysisID, analysis.ID)
	}

	if analysis.Result == nil || analysis.Result.OverallScore != 72.5 {
		t.Errorf("expected result document to round-trip, got %+v", analysis.Result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresAnalysisRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	analysisID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id").
		WithArgs(analysisID).
		WillReturnError(sql.ErrNoRows)

	analysis, err := repo.GetByID(context.Background(), analysisID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if analysis != nil {
		t.Error("expected nil analysis")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresAnalysisRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "word_count", "overall_score", "max_match", "created_at"}).
		AddRow(uuid.NewString(), userID.String(), "second paper", 900, 12.0, 18.5, time.Now()).
		AddRow(uuid.NewString(), userID.String(), "first paper", 480, 72.5, 85.1, time.Now().Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE user_id").
		WithArgs(userID, 20).
		WillReturnRows(rows)

	analyses, err := repo.ListByUser(context.Background(), userID, 0)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(analyses))
	}

	if analyses[0].Result != nil {
		t.Error("list view must not carry the full result document")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresAnalysisRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	analysisID := uuid.New()

	mock.ExpectExec("DELETE FROM analyses").
		WithArgs(analysisID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), analysisID); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
