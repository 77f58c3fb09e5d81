package model

import "github.com/google/uuid"

// Role is the platform role carried inside token claims.
type Role string

const (
	RoleDoctor   Role = "doctor"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

// Claims is the subject material signed into both tokens of a pair.
type Claims struct {
	UserID uuid.UUID
	Role   Role
}

// TokenPair is a transient access/refresh token pair. It is returned
// to the caller and never persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenCodec signs and verifies access/refresh tokens. Access and
// refresh tokens use distinct secrets and do not cross-validate.
type TokenCodec interface {
	IssueAccessToken(claims Claims) (string, error)
	IssueRefreshToken(claims Claims) (string, error)
	IssueTokenPair(claims Claims) (TokenPair, error)
	DecodeAccessToken(token string) (Claims, error)
	DecodeRefreshToken(token string) (Claims, error)
}

// TokenHasher produces and checks the stored one-way hash of a
// refresh token.
type TokenHasher interface {
	Hash(token string) ([]byte, error)
	Compare(hash []byte, token string) bool
}
