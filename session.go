package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionIssuer signs and verifies funnel session tokens. A token is an HS256
// JWT whose subject is the session id (a random UUID).
type sessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newSessionIssuer(secret string, ttl time.Duration) *sessionIssuer {
	return &sessionIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// issue mints a fresh session id and its token.
func (s *sessionIssuer) issue() (sessionID, token string, err error) {
	sessionID = uuid.NewString()
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign session token: %w", err)
	}
	return sessionID, token, nil
}

// parse validates token and returns the session id it carries.
func (s *sessionIssuer) parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.New("session token subject is not a session id")
	}
	return claims.Subject, nil
}
