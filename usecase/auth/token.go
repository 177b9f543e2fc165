package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/tasktracker/domain"
)

// Claims binds a token to one session.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer}
}

// Issue signs a token that expires with the session.
func (t *TokenIssuer) Issue(session *domain.Session) (string, error) {
	claims := Claims{
		UserID:    session.UserID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.VerifyIssuer(t.issuer, true) {
		return nil, errors.New("unexpected token issuer")
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, errors.New("token is missing session claims")
	}
	return claims, nil
}
