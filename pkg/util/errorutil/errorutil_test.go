package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain passthrough", NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"wrapped domain", fmt.Errorf("ctx: %w", NewNotFound("ticket", nil)), CodeNotFound, http.StatusNotFound},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, CodeConflict, http.StatusConflict},
		{"other", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range cases {
		got := ToDomainError(tt.err)
		if got.Code != tt.code || got.HTTPStatus != tt.status {
			t.Fatalf("%s: got %s/%d, want %s/%d", tt.name, got.Code, got.HTTPStatus, tt.code, tt.status)
		}
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	got := ToDomainError(errors.New("connection refused to 10.0.0.4"))
	if got.Message != "internal server error" {
		t.Fatalf("unexpected message %q", got.Message)
	}
	if len(got.Details) != 0 {
		t.Fatalf("expected no details, got %v", got.Details)
	}
}

func TestNewMissingFieldsSortsNames(t *testing.T) {
	err := NewMissingFields("type", "creator_id")
	if !IsCode(err, CodeValidation) {
		t.Fatalf("expected validation code, got %v", err)
	}
	fields := ToDomainError(err).Details["fields"].([]string)
	if len(fields) != 2 || fields[0] != "creator_id" || fields[1] != "type" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestMapErrorNil(t *testing.T) {
	if MapError(nil) != nil {
		t.Fatalf("expected nil")
	}
}
