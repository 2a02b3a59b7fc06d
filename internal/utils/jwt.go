package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds embedded in claims so a refresh token cannot pass as access.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

var errWrongTokenKind = errors.New("wrong token kind")

type jwtCustomClaims struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair carries the access/refresh tokens returned at signin.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GenerateTokenPair creates signed access and refresh JWTs for the user.
func GenerateTokenPair(secret string, userID uuid.UUID, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	access, err := generateToken(secret, userID, TokenKindAccess, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := generateToken(secret, userID, TokenKindRefresh, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

func generateToken(secret string, userID uuid.UUID, kind string, ttl time.Duration) (string, error) {
	claims := &jwtCustomClaims{
		UserID: userID.String(),
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token, checks its kind and returns the user ID.
func ParseToken(secret, tokenString, kind string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	if claims.Kind != kind {
		return uuid.Nil, errWrongTokenKind
	}

	return uuid.Parse(claims.UserID)
}
