package store

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryRefreshTokenRotation(t *testing.T) {
	s := NewMemoryRefreshTokenStore()
	token, err := s.NewToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	userID, next, err := s.RotateToken(token, time.Hour)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
	if next == token {
		t.Fatalf("rotation must produce a fresh token")
	}
}

func TestMemoryRefreshTokenReplayRevokesFamily(t *testing.T) {
	s := NewMemoryRefreshTokenStore()
	token, err := s.NewToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	_, next, err := s.RotateToken(token, time.Hour)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	// Replaying the superseded token must be detected...
	if _, _, err := s.RotateToken(token, time.Hour); !errors.Is(err, ErrRefreshTokenReplay) {
		t.Fatalf("expected replay error, got %v", err)
	}
	// ...and must invalidate the whole family, including the fresh token.
	if _, _, err := s.RotateToken(next, time.Hour); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected family revocation, got %v", err)
	}
}

func TestRedisRefreshTokenRotationAndReplay(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisRefreshTokenStore(redis.Addr(), "")

	token, err := s.NewToken("user-9", time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	userID, next, err := s.RotateToken(token, time.Hour)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if userID != "user-9" {
		t.Fatalf("expected user-9, got %q", userID)
	}
	if _, _, err := s.RotateToken(token, time.Hour); !errors.Is(err, ErrRefreshTokenReplay) {
		t.Fatalf("expected replay error, got %v", err)
	}
	if _, _, err := s.RotateToken(next, time.Hour); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected family revocation after replay, got %v", err)
	}
}

func TestRedisRefreshTokenDelete(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisRefreshTokenStore(redis.Addr(), "")

	token, err := s.NewToken("user-2", time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if err := s.DeleteToken(token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := s.RotateToken(token, time.Hour); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid token after delete, got %v", err)
	}
	// Deleting an unknown token is a no-op.
	if err := s.DeleteToken("does-not-exist"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
}
