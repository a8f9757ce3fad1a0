package utils

import (
	"context"
	"testing"

	"github.com/tripwell/trippy-server/models"
)

func TestGetPrincipalFromContext(t *testing.T) {
	user := models.User{UserID: 42, Email: "jo@example.com", Role: models.RoleGuide}
	ctx := context.WithValue(context.Background(), PrincipalCtxKey, user)

	got, ok := GetPrincipalFromContext(ctx)
	if !ok {
		t.Fatal("expected principal to be found")
	}
	if got.UserID != 42 || got.Role != models.RoleGuide {
		t.Errorf("unexpected principal: %+v", got)
	}
}

func TestGetPrincipalFromContext_Missing(t *testing.T) {
	_, ok := GetPrincipalFromContext(context.Background())
	if ok {
		t.Error("expected ok=false for empty context")
	}
}

func TestGetPrincipalFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), PrincipalCtxKey, "not-a-user")
	_, ok := GetPrincipalFromContext(ctx)
	if ok {
		t.Error("expected ok=false for wrong value type")
	}
}

func TestGetIsLoggedInFromContext(t *testing.T) {
	if GetIsLoggedInFromContext(context.Background()) {
		t.Error("empty context must read as not logged in")
	}

	ctx := context.WithValue(context.Background(), IsLoggedInCtxKey, true)
	if !GetIsLoggedInFromContext(ctx) {
		t.Error("expected logged-in flag to be read back")
	}

	ctx = context.WithValue(context.Background(), IsLoggedInCtxKey, false)
	if GetIsLoggedInFromContext(ctx) {
		t.Error("expected false flag to read as not logged in")
	}
}
