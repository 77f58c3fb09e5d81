package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/model"
)

// Claims represents JWT claims with token type, user ID and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	TokenType string    `json:"typ"`
}

// JWT implements TokenCodec backed by symmetric HMAC. Access and
// refresh tokens are signed with separate secrets so a leaked secret
// of one kind cannot forge tokens of the other.
type JWT struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWT creates a new JWT token codec with the provided secrets and TTLs.
func NewJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) model.TokenCodec {
	return &JWT{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// IssueAccessToken creates a short-lived access token.
func (j *JWT) IssueAccessToken(claims model.Claims) (string, error) {
	return j.issue(claims, typeAccess, j.accessSecret, j.accessTTL)
}

// IssueRefreshToken creates a long-lived refresh token.
func (j *JWT) IssueRefreshToken(claims model.Claims) (string, error) {
	return j.issue(claims, typeRefresh, j.refreshSecret, j.refreshTTL)
}

// IssueTokenPair creates an access and a refresh token for the same claims.
func (j *JWT) IssueTokenPair(claims model.Claims) (model.TokenPair, error) {
	access, err := j.IssueAccessToken(claims)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := j.IssueRefreshToken(claims)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// DecodeAccessToken validates an access token and extracts its claims.
func (j *JWT) DecodeAccessToken(tokenString string) (model.Claims, error) {
	return j.decode(tokenString, typeAccess, j.accessSecret)
}

// DecodeRefreshToken validates a refresh token and extracts its claims.
func (j *JWT) DecodeRefreshToken(tokenString string) (model.Claims, error) {
	return j.decode(tokenString, typeRefresh, j.refreshSecret)
}

func (j *JWT) issue(claims model.Claims, tokenType, secret string, ttl time.Duration) (string, error) {
	// jti keeps tokens unique even when two are issued for the same
	// subject within one clock second.
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    claims.UserID,
		Role:      string(claims.Role),
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

func (j *JWT) decode(tokenString, tokenType, secret string) (model.Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return model.Claims{}, fmt.Errorf("failed to parse %s token: %w", tokenType, err)
	}
	if !token.Valid {
		return model.Claims{}, fmt.Errorf("%s token is invalid", tokenType)
	}
	if claims.TokenType != tokenType {
		return model.Claims{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return model.Claims{UserID: claims.UserID, Role: model.Role(claims.Role)}, nil
}
