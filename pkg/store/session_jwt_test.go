package store

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aspirelink/pkg/domain"
)

func writeTestKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "jwt.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write pem: %v", err)
	}
	return path
}

func newTestSessionStore(t *testing.T, revoker TokenRevoker) *JWTSessionStore {
	t.Helper()
	s, err := NewJWTSessionStoreFromPEM(writeTestKeyPEM(t), "", "kid-test", nil, 15*time.Minute, revoker, JWTOptions{})
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	return s
}

func TestJWTSessionRoundTripCarriesIdentity(t *testing.T) {
	s := newTestSessionStore(t, nil)
	user := domain.IdentityUser{ID: "user-1", Email: "ada@x.com", DisplayName: "Ada"}
	token, err := s.NewSession(user)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ident, ok, err := s.IdentityFromToken(token)
	if err != nil || !ok {
		t.Fatalf("identity from token: ok=%v err=%v", ok, err)
	}
	if ident.Subject != "user-1" || ident.Email != "ada@x.com" || ident.DisplayName != "Ada" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestJWTSessionRevocation(t *testing.T) {
	s := newTestSessionStore(t, NewMemoryTokenRevoker())
	token, err := s.NewSession(domain.IdentityUser{ID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := s.IdentityFromToken(token); ok || err == nil {
		t.Fatalf("expected revoked token to be rejected")
	}
}

func TestJWTSessionRejectsGarbage(t *testing.T) {
	s := newTestSessionStore(t, nil)
	if _, ok, err := s.IdentityFromToken("not-a-jwt"); ok || err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestJWKSListsActiveKey(t *testing.T) {
	s := newTestSessionStore(t, nil)
	keys := s.JWKS()
	if len(keys) != 1 {
		t.Fatalf("expected one key, got %d", len(keys))
	}
	k := keys[0]
	if k.Kid != "kid-test" || k.Kty != "RSA" || k.Alg != "RS256" || k.N == "" || k.E == "" {
		t.Fatalf("unexpected jwk: %+v", k)
	}
}
