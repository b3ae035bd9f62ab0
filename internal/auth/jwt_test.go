package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"collabedit/internal/models"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Sign(models.Identity{UserID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := j.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != "u1" || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	if _, err := j.Verify("not-a-token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := NewJWT("other-secret", time.Hour)
	token, err := other.Sign(models.Identity{UserID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	j := NewJWT("test-secret", time.Hour)
	if _, err := j.Verify(token); err == nil {
		t.Fatalf("expected error for token signed with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	claims := jwt.MapClaims{
		"sub":      "u1",
		"username": "alice",
		"exp":      time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := j.Verify(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestVerifyRejectsMissingClaims(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := j.Verify(token); err == nil {
		t.Fatalf("expected error for token without identity claims")
	}
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	handler := j.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	token, _ := j.Sign(models.Identity{UserID: "u1", Username: "alice"})

	var got *models.Identity
	handler := j.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Username != "alice" {
		t.Fatalf("expected identity in context, got %#v", got)
	}
}

func TestOptionalMiddlewareLetsAnonymousThrough(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	var got *models.Identity
	called := false
	handler := j.OptionalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got = IdentityFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("expected handler to run")
	}
	if got != nil {
		t.Fatalf("expected no identity, got %#v", got)
	}
}
