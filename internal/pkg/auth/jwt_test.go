package auth

import (
	"context"
	"errors"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret")
	if tm.Insecure {
		t.Fatal("Insecure set with explicit key")
	}

	token, err := tm.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestValidateTokenRejectsOtherKey(t *testing.T) {
	token, err := NewTokenManager("one").GenerateToken(1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewTokenManager("two").ValidateToken(token); err == nil {
		t.Fatal("token signed with another key validated")
	}
	if _, err := NewTokenManager("one").ValidateToken("not-a-token"); err == nil {
		t.Fatal("garbage token validated")
	}
}

func TestInsecureFallback(t *testing.T) {
	tm := NewTokenManager("")
	if !tm.Insecure {
		t.Fatal("Insecure not set for empty key")
	}
	token, err := tm.GenerateToken(3)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := tm.ValidateToken(token); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); !errors.Is(err, ErrNoUser) {
		t.Errorf("empty context error = %v, want ErrNoUser", err)
	}
	id, err := UserIDFromContext(WithUserID(context.Background(), 7))
	if err != nil || id != 7 {
		t.Errorf("UserIDFromContext = %d, %v; want 7, nil", id, err)
	}
}
