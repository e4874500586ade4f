package utils

import (
	"strings"
	"testing"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if strings.Contains(hash, "s3cret") {
		t.Error("hash leaks plaintext")
	}
	if !CheckPassword("s3cret-passphrase", hash) {
		t.Error("correct password rejected")
	}
}

func TestCheckPassword_Rejections(t *testing.T) {
	hash, err := HashPassword("right-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	for _, attempt := range []string{
		"wrong-password",
		"right-Password", // case matters
		"right-password ",
		"",
	} {
		if CheckPassword(attempt, hash) {
			t.Errorf("accepted %q", attempt)
		}
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h1, _ := HashPassword("same-input")
	h2, _ := HashPassword("same-input")
	if h1 == h2 {
		t.Error("two hashes of the same input are identical")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("malformed hash accepted")
	}
	if CheckPassword("anything", "") {
		t.Error("empty hash accepted")
	}
}
