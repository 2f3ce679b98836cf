package share

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer issues and verifies the signed access tokens that prove the
// security gate was satisfied for a share. Tokens are bound to both the share
// id and its creation instant, so a token issued for a deleted share cannot
// be replayed against a new share that reuses the same id.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a token issuer with the server-held signing secret
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue signs an access token for the share. The token expires together with
// the share; a never-expiring share yields a token without an exp claim.
func (t *TokenIssuer) Issue(s *Share, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"shareId":        s.ID,
		"shareCreatedAt": s.CreatedAt.Unix(),
		"iat":            now.Unix(),
	}
	if s.ExpiresAt != nil {
		claims["exp"] = s.ExpiresAt.Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign share token: %w", err)
	}
	return token, nil
}

// Verify checks a presented token against the current share record. It never
// returns an error: any signature, expiry or claim mismatch fails closed.
func (t *TokenIssuer) Verify(s *Share, tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	shareID, ok := claims["shareId"].(string)
	if !ok || shareID != s.ID {
		return false
	}

	// Numeric claims decode as float64
	createdAt, ok := claims["shareCreatedAt"].(float64)
	if !ok || int64(createdAt) != s.CreatedAt.Unix() {
		return false
	}

	return true
}
