package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	insecureDevelopmentKey = "insecure-development-key-change-me"
	defaultTokenTTL        = 24 * time.Hour
)

var ErrNoUser = errors.New("no authenticated user in context")

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

type TokenManager struct {
	key      []byte
	ttl      time.Duration
	Insecure bool
}

// NewTokenManager signs and validates HS256 tokens. An empty key falls back
// to a fixed, publicly known development key and sets Insecure; callers must
// refuse an Insecure manager outside development.
func NewTokenManager(key string) *TokenManager {
	tm := &TokenManager{key: []byte(key), ttl: defaultTokenTTL}
	if key == "" {
		tm.key = []byte(insecureDevelopmentKey)
		tm.Insecure = true
	}
	return tm
}

func (m *TokenManager) GenerateToken(userID uint) (string, error) {
	expirationTime := time.Now().Add(m.ttl)
	claims := &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.key)
}

func (m *TokenManager) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.key, nil
	})

	if err != nil {
		return nil, err
	}

	if !tkn.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	if claims.UserID == 0 {
		return nil, errors.New("token has no user")
	}

	return claims, nil
}

type userIDKey struct{}

func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (uint, error) {
	id, ok := ctx.Value(userIDKey{}).(uint)
	if !ok || id == 0 {
		return 0, ErrNoUser
	}
	return id, nil
}
