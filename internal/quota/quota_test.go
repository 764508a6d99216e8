package quota

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

func TestCheckAndConsume_Allowed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO api_quotas`).
		WithArgs("user-1", 30).
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"}).AddRow(5))

	ok, err := CheckAndConsume(context.Background(), mock, "user-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected quota to be available")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet mock expectations: %v", err)
	}
}

func TestCheckAndConsume_Exhausted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO api_quotas`).
		WithArgs("user-1", 30).
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"}))

	ok, err := CheckAndConsume(context.Background(), mock, "user-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected quota to be exhausted")
	}
}

func TestRemaining(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT requests_used FROM api_quotas`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"}).AddRow(12))

	got, err := Remaining(context.Background(), mock, "user-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 18 {
		t.Errorf("remaining = %d, want 18", got)
	}
}

func TestRemaining_NoRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT requests_used FROM api_quotas`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"}))

	got, err := Remaining(context.Background(), mock, "user-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 30 {
		t.Errorf("remaining = %d, want full allowance 30", got)
	}
}

func TestRemaining_Overconsumed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT requests_used FROM api_quotas`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"}).AddRow(35))

	got, err := Remaining(context.Background(), mock, "user-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}
