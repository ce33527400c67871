package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	lead := NewLead("Ann Lee", "ann@example.com", "hello there")

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(lead.ID, lead.Name, lead.Email, lead.Message, lead.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), lead); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_CreateError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	lead := NewLead("Ann", "ann@example.com", "hello there")

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(lead.ID, lead.Name, lead.Email, lead.Message, lead.CreatedAt).
		WillReturnError(errors.New("connection refused"))

	err = repo.Create(context.Background(), lead)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsValidationError(err) {
		t.Error("storage failure must not be a validation error")
	}
}

func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "email", "message", "created_at"}).
		AddRow("lead-1", "Ann Lee", "ann@example.com", "hello there", int64(1700000000000))
	mock.ExpectQuery("SELECT id, name, email, message, created_at").
		WithArgs("lead-1").
		WillReturnRows(rows)

	lead, err := repo.GetByID(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if lead.Name != "Ann Lee" || lead.CreatedAt != 1700000000000 {
		t.Errorf("unexpected lead: %+v", lead)
	}
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectQuery("SELECT id, name, email, message, created_at").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPostgresRepository_ListIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	rows := pgxmock.NewRows([]string{"id"}).AddRow("lead-1").AddRow("lead-2")
	mock.ExpectQuery("SELECT id").WillReturnRows(rows)

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "lead-1" || ids[1] != "lead-2" {
		t.Errorf("unexpected ids: %v", ids)
	}
}
