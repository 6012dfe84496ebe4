package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens returns the signing secret via dependency injection rather
// than reading the environment at call time.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("empty JWT secret")
	}
	return &Tokens{secret: []byte(secret)}, nil
}

func (t *Tokens) Generate(userID, email string) (string, error) {
	if userID == "" {
		return "", errors.New("empty userID passed to Generate")
	}

	claims := jwt.MapClaims{
		"userID": userID,
		"email":  email,
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) Validate(tokenString string) (userID, email string, err error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}

	userID, _ = claims["userID"].(string)
	email, _ = claims["email"].(string)
	if userID == "" {
		return "", "", errors.New("token missing userID")
	}

	return userID, email, nil
}
