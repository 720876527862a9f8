package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quiztrack/internal/domain"
)

var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is kept distinct for diagnostics; transport maps both
	// token errors to the same unauthenticated response.
	ErrExpiredToken = errors.New("token expired")
)

// DefaultTokenTTL matches the original session window of seven days.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the signed claim set carried by a session token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies stateless HS256 session tokens. The secret is
// process-wide configuration; rotating it invalidates every outstanding token.
type Codec struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewCodec(secret string, maxAge time.Duration) *Codec {
	if maxAge <= 0 {
		maxAge = DefaultTokenTTL
	}
	return &Codec{secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

// NewCodecWithClock is test-only for deterministic expiry.
func NewCodecWithClock(secret string, maxAge time.Duration, now func() time.Time) *Codec {
	c := NewCodec(secret, maxAge)
	c.now = now
	return c
}

// Issue signs a token for the given subject. The subject ID equals the
// normalized username.
func (c *Codec) Issue(username string, role domain.Role) (string, error) {
	issuedAt := c.now()
	claims := &Claims{
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.maxAge)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the signature and expiry window and returns the claims.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
