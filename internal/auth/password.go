package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is a bcrypt hash of a throwaway string. Login compares against it
// when the username is unknown so both failure paths cost a bcrypt check and
// are indistinguishable from outside.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword derives a salted bcrypt hash from a plaintext password.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored hash. It returns
// false on mismatch, malformed hash, or any internal error; callers never
// see a reason.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CheckDummy burns a bcrypt comparison without revealing anything. Always false.
func CheckDummy(plain string) bool {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
	return false
}
