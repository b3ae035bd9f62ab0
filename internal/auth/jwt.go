package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"collabedit/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// JWT issues and verifies the tokens that back the identity verifier
// capability: verify(token) -> identity or error.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl}
}

func (j *JWT) Sign(identity models.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":      identity.UserID,
		"username": identity.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(j.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if sub == "" || username == "" {
		return nil, ErrInvalidToken
	}
	return &models.Identity{UserID: sub, Username: username}, nil
}
