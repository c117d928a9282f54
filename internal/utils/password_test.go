package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("password stored in plaintext")
	}
	if !VerifyPassword(hash, "secret123") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "secret124") {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("not-a-hash", "secret123") {
		t.Error("malformed hash accepted")
	}
}
