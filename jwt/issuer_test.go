package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"reflect"
	"testing"
	"time"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func TestIssuerRoundTripThroughDecoder(t *testing.T) {
	_, priv := newEdKeys(t)
	iss, err := NewIssuer(IssuerConfig{TTL: time.Hour, SigningMethod: MethodEd25519, PrivateKey: priv, Issuer: "hr"})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	tok, err := iss.Issue("EMP001", "manager", []string{"leave:approve"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := NewDecoder().Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.SubjectID != "EMP001" || claims.RoleID != "manager" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !reflect.DeepEqual(claims.Permissions, []string{"leave:approve"}) {
		t.Fatalf("unexpected permissions %v", claims.Permissions)
	}

	verified, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.ExpiresAt != claims.ExpiresAt {
		t.Fatalf("verify/decode exp mismatch: %d vs %d", verified.ExpiresAt, claims.ExpiresAt)
	}
}

func TestIssuerNilPermissionsEncodeAsEmpty(t *testing.T) {
	iss, err := NewIssuer(IssuerConfig{TTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("issuer-test-secret")})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	tok, err := iss.Issue("E", "employee", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := NewDecoder().Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(claims.Permissions) != 0 {
		t.Fatalf("expected no permissions, got %v", claims.Permissions)
	}
}

func TestIssuerVerifyRejectsExpiredAndForeignKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	iss, err := NewIssuer(IssuerConfig{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("issuer-test-secret"),
		Now:           func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	expired, err := iss.IssueClaims(Claims{SubjectID: "E", RoleID: "employee", ExpiresAt: now.Unix() - 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.Verify(expired); err == nil {
		t.Fatal("expected expired token to fail verification")
	}

	other, err := NewIssuer(IssuerConfig{TTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("another-secret-value")})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	foreign, err := other.Issue("E", "employee", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.Verify(foreign); err == nil {
		t.Fatal("expected foreign signature to fail verification")
	}
}

func TestNewIssuerValidation(t *testing.T) {
	_, priv := newEdKeys(t)
	tests := []struct {
		name string
		cfg  IssuerConfig
	}{
		{"zero ttl", IssuerConfig{SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"hs256 without key", IssuerConfig{TTL: time.Minute, SigningMethod: MethodHS256}},
		{"ed25519 bad key", IssuerConfig{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: []byte("short")}},
		{"unknown method", IssuerConfig{TTL: time.Minute, SigningMethod: "rs256", PrivateKey: priv}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewIssuer(tc.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}
