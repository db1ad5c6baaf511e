package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	table := int32(7)
	token, err := IssueAccessToken("secret", 42, "table7", RoleTable, &table, time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := VerifyAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.AccountID != 42 || claims.Role != RoleTable {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TableNumber == nil || *claims.TableNumber != 7 {
		t.Fatalf("expected table number 7, got %v", claims.TableNumber)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := IssueAccessToken("secret", 1, "kitchen", RoleKitchen, nil, time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := VerifyAccessToken(token, "other-secret"); err == nil {
		t.Fatal("expected verification to fail with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	token, err := IssueAccessToken("secret", 1, "admin", RoleAdmin, nil, -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := VerifyAccessToken(token, "secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseBearerToken(t *testing.T) {
	cases := []struct {
		header   string
		expected string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		if got := ParseBearerToken(tc.header); got != tc.expected {
			t.Fatalf("header %q: expected %q, got %q", tc.header, tc.expected, got)
		}
	}
}
