package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	pkgredis "github.com/typetester/font-tester-backend/internal/pkg/redis"
)

const noncePrefix = "fonttester:nonce:"

// DefaultNonceTTL matches the admin session length so a nonce issued with the
// page survives as long as the session that loaded it
const DefaultNonceTTL = 12 * time.Hour

// NonceStore is the cache backend nonces live in
type NonceStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// NonceManager issues and verifies per-session action tokens. Every mutating
// admin request has to present a token obtained from Issue; requests with a
// missing, expired or unknown token are rejected before any other check.
type NonceManager struct {
	store NonceStore
	ttl   time.Duration
}

func NewNonceManager(store NonceStore, ttl time.Duration) *NonceManager {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &NonceManager{store: store, ttl: ttl}
}

// Issue creates a fresh nonce bound to the given session subject
func (m *NonceManager) Issue(ctx context.Context, subject string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(b)

	if err := m.store.Set(ctx, noncePrefix+nonce, subject, m.ttl); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return nonce, nil
}

// Verify checks that the nonce exists, has not expired and was issued to the
// given subject. Nonces stay valid until their TTL runs out; verification
// does not consume them.
func (m *NonceManager) Verify(ctx context.Context, subject, nonce string) error {
	if nonce == "" {
		return apperrors.New(apperrors.ErrAuthBadNonce)
	}

	owner, err := m.store.Get(ctx, noncePrefix+nonce)
	if err != nil {
		if pkgredis.IsNil(err) {
			return apperrors.New(apperrors.ErrAuthBadNonce)
		}
		return apperrors.Wrap(err, apperrors.ErrAuthBadNonce)
	}

	if owner != subject {
		return apperrors.New(apperrors.ErrAuthBadNonce)
	}
	return nil
}
