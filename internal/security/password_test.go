package security

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, errHash := HashPassword("Str0ngPass!")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if hash == "Str0ngPass!" {
		t.Fatalf("expected hash to differ from plaintext")
	}
	if !CheckPassword(hash, "Str0ngPass!") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatalf("expected wrong password to fail")
	}
}
