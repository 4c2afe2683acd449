package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens signs and verifies session tokens.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

func (t *Tokens) Sign(s Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":   s.UserID,
		"sid":   s.ID,
		"name":  s.Name,
		"email": s.Email,
		"role":  s.Role,
		"iat":   s.IssuedAt.Unix(),
		"exp":   s.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) Parse(tokenString string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	userID, ok1 := claims["sub"].(float64)
	sid, ok2 := claims["sid"].(string)
	if !ok1 || !ok2 || sid == "" {
		return Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	s := Session{ID: sid, UserID: uint(userID)}
	s.Name, _ = claims["name"].(string)
	s.Email, _ = claims["email"].(string)
	s.Role, _ = claims["role"].(string)
	if iat, ok := claims["iat"].(float64); ok {
		s.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		s.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return s, nil
}
