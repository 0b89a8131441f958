package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	s := domain.NewSession("abc")
	s.Authenticate("tok", domain.Claims{RoleID: 1, UserID: 4, Email: "a@ppf.test"})
	s.Screens = map[string]json.RawMessage{"clients": json.RawMessage(`{"currentPage":2}`)}
	if err := repo.Save(ctx, s, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx, "abc")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "tok" || got.RoleID != 1 || got.UserID != 4 {
		t.Errorf("unexpected session %+v", got)
	}
	if string(got.Screens["clients"]) != `{"currentPage":2}` {
		t.Errorf("screen state lost: %s", got.Screens["clients"])
	}

	got.Token = "changed"
	again, _ := repo.Load(ctx, "abc")
	if again.Token != "tok" {
		t.Error("loaded sessions must not alias stored ones")
	}
}

func TestSessionRepository_Expiry(t *testing.T) {
	repo := NewSessionRepository()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	if err := repo.Save(ctx, domain.NewSession("x"), time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(2 * time.Minute)

	if _, err := repo.Load(ctx, "x"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	_ = repo.Save(ctx, domain.NewSession("x"), 0)

	if err := repo.Delete(ctx, "x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Load(ctx, "unknown"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := repo.Load(ctx, "x"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected deleted session to be gone, got %v", err)
	}
}
