package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultTokenTTL = 24 * time.Hour

// Auth выдает и проверяет управляющие токены сессий.
// Без токена соединение может только смотреть.
type Auth struct {
	secret []byte
	ttl    time.Duration
}

func NewAuth(secret []byte, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Auth{secret: secret, ttl: ttl}
}

// IssueToken подписывает токен для сессии (HS256)
func (a *Auth) IssueToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(a.ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken проверяет подпись и срок и возвращает ID сессии
func (a *Auth) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("%w: missing session claim", ErrInvalidToken)
	}
	return sid, nil
}

// Authorize - токен выдан именно для этой сессии
func (a *Auth) Authorize(tokenStr, sessionID string) error {
	if tokenStr == "" {
		return fmt.Errorf("%w: missing", ErrInvalidToken)
	}
	sid, err := a.ValidateToken(tokenStr)
	if err != nil {
		return err
	}
	if sid != sessionID {
		return fmt.Errorf("%w: issued for another session", ErrInvalidToken)
	}
	return nil
}
