package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "kitchen-control"

// SessionClaims is the payload of the signed session cookie. The cookie only
// points at the server-side session record; the role is duplicated so that a
// tampered record and cookie disagree.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid"`
	RoleID    int    `json:"rid"`
	jwt.RegisteredClaims
}

// SignSessionToken creates the session cookie value.
func SignSessionToken(secret []byte, sessionID string, userID int64, roleID int, issuedAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	claims := &SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RoleID:    roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			IssuedAt: jwt.NewNumericDate(issuedAt),
			Issuer:   sessionIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ParseSessionToken verifies the cookie value and returns its claims.
func ParseSessionToken(secret []byte, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, fmt.Errorf("session token validation failed: %w", err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
