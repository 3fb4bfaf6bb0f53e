package auth

import (
	"fmt"
	"time"

	"classroom-live-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks HMAC-signed bearer tokens issued by the identity service
// and extracts the principal. Token issuance lives elsewhere; Issue exists
// for tests and local tooling.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verify parses and validates a token, returning the principal it names.
func (v *Verifier) Verify(token string) (domain.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return domain.Principal{UserID: c.Subject, Role: c.Role}, nil
}

// Issue signs a token for the given principal, valid for ttl.
func (v *Verifier) Issue(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.secret)
}
