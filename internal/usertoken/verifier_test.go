package usertoken

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func newJWKSServer(t *testing.T, pub *rsa.PublicKey, kid string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		payload := map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"use": "sig",
				"alg": "RS256",
				"kid": kid,
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid, subject, email, name string) string {
	t.Helper()
	now := time.Now().UTC()
	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    defaultIssuer,
			Audience:  jwt.ClaimStrings{defaultAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        "jti-1",
		},
		Email: email,
		Name:  name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifyReturnsIdentityClaims(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := newJWKSServer(t, &key.PublicKey, "kid-1")
	defer srv.Close()

	verifier, err := NewVerifier(Config{JWKSURL: srv.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	token := signToken(t, key, "kid-1", "subject-1", "Ada@X.Com", " Ada Lovelace ")
	ident, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ident.Subject != "subject-1" {
		t.Fatalf("expected subject-1, got %q", ident.Subject)
	}
	if ident.Email != "ada@x.com" {
		t.Fatalf("expected lower-cased email, got %q", ident.Email)
	}
	if ident.DisplayName != "Ada Lovelace" {
		t.Fatalf("expected trimmed display name, got %q", ident.DisplayName)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := newJWKSServer(t, &key.PublicKey, "kid-1")
	defer srv.Close()

	verifier, err := NewVerifier(Config{JWKSURL: srv.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate other key: %v", err)
	}
	token := signToken(t, other, "kid-1", "subject-1", "a@x.com", "Ada")
	if _, err := verifier.Verify(token); err == nil {
		t.Fatalf("expected verification failure for foreign signing key")
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := newJWKSServer(t, &key.PublicKey, "kid-1")
	defer srv.Close()

	verifier, err := NewVerifier(Config{JWKSURL: srv.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	token := signToken(t, key, "kid-1", "", "a@x.com", "Ada")
	if _, err := verifier.Verify(token); err == nil {
		t.Fatalf("expected verification failure for empty subject")
	}
}
