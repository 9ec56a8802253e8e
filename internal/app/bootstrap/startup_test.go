// internal/app/bootstrap/startup_test.go
package bootstrap

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/store/memory"
	"github.com/synkteam/municipath/internal/domain/models"
)

func TestEnsureManager_CreatesAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUsers()

	if err := ensureManager(ctx, store, "admin", zap.NewNop()); err != nil {
		t.Fatalf("ensureManager: %v", err)
	}

	u, err := store.Get(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if !u.Manager {
		t.Error("created account should be a manager")
	}
	if !u.Validated {
		t.Error("created account should be validated")
	}
	if u.PasswordHash != "" {
		t.Error("created account should have no local password")
	}
}

func TestEnsureManager_PromotesExisting(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUsers()
	if err := store.Save(ctx, &models.User{Username: "mayor", Email: "mayor@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if err := ensureManager(ctx, store, "mayor", zap.NewNop()); err != nil {
		t.Fatalf("ensureManager: %v", err)
	}

	u, err := store.Get(ctx, "mayor")
	if err != nil {
		t.Fatalf("get mayor: %v", err)
	}
	if !u.Manager {
		t.Error("existing account should be promoted to manager")
	}
	if u.Email != "mayor@example.com" {
		t.Errorf("promotion should keep profile fields, email = %q", u.Email)
	}
}

func TestEnsureManager_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUsers()

	for i := 0; i < 3; i++ {
		if err := ensureManager(ctx, store, "admin", zap.NewNop()); err != nil {
			t.Fatalf("ensureManager run %d: %v", i, err)
		}
	}

	u, err := store.Get(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if !u.Manager {
		t.Error("account should remain a manager")
	}
}
