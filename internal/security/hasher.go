package security

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/model"
)

var _ model.TokenHasher = (*BcryptHasher)(nil)

// BcryptHasher hashes refresh tokens with bcrypt. The token is
// reduced to a SHA-256 digest first: bcrypt reads at most 72 input
// bytes and signed tokens are longer than that.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given bcrypt cost,
// clamped to the range bcrypt supports.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces the stored hash of token. The plaintext token must
// not be persisted or logged by callers.
func (h *BcryptHasher) Hash(token string) ([]byte, error) {
	digest := sha256.Sum256([]byte(token))
	hash, err := bcrypt.GenerateFromPassword(digest[:], h.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash token: %w", err)
	}
	return hash, nil
}

// Compare reports whether token matches the stored hash. Comparison
// cost does not depend on where the inputs diverge.
func (h *BcryptHasher) Compare(hash []byte, token string) bool {
	digest := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword(hash, digest[:]) == nil
}
