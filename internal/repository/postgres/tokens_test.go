package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

func TestTokenRepository_GetByKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "key", "user_id", "created_at"}).
		AddRow("token-1", "opaque-key", "user-1", createdAt)

	mock.ExpectQuery(`SELECT .*FROM agro\.auth_tokens`).
		WithArgs("opaque-key").
		WillReturnRows(rows)

	token, err := repo.GetByKey(context.Background(), "opaque-key")
	if err != nil {
		t.Fatalf("GetByKey returned error: %v", err)
	}
	if token.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", token.UserID)
	}
	if !token.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at to round-trip")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_GetByKeyNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM agro\.auth_tokens`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "key", "user_id", "created_at"}))

	if _, err := repo.GetByKey(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_CreateAndTouch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	createdAt := time.Now().UTC()
	token := domain.AuthToken{
		ID:        "token-1",
		Key:       "opaque-key",
		UserID:    "user-1",
		CreatedAt: createdAt,
	}

	mock.ExpectExec(`INSERT INTO agro\.auth_tokens`).
		WithArgs(token.ID, token.Key, token.UserID, token.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), token); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	touchedAt := createdAt.Add(time.Hour)
	mock.ExpectExec(`UPDATE agro\.auth_tokens SET created_at`).
		WithArgs(touchedAt, token.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Touch(context.Background(), token.ID, touchedAt); err != nil {
		t.Fatalf("Touch returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_DeleteByUserIDIgnoresMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	mock.ExpectExec(`DELETE FROM agro\.auth_tokens`).
		WithArgs("user-without-token").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.DeleteByUserID(context.Background(), "user-without-token"); err != nil {
		t.Fatalf("DeleteByUserID returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
