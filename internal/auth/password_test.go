package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "rahasia123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !CheckPassword("rahasia123", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword("rahasia124", hash) {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must verify as false, not panic or error")
	}
	if CheckPassword("anything", "") {
		t.Fatalf("empty hash must verify as false")
	}
}

func TestCheckDummyAlwaysFalse(t *testing.T) {
	if CheckDummy("password") {
		t.Fatalf("dummy comparison must never succeed")
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must differ")
	}
}
