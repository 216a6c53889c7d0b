package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	pkgredis "github.com/typetester/font-tester-backend/internal/pkg/redis"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.GenerateAccessToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "font-tester-backend", claims.Issuer)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a").GenerateAccessToken("admin")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b").VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.VerifyAccessToken(token)
		assert.Error(t, err)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer abc123", want: "abc123"},
		{name: "empty header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc123", wantErr: true},
		{name: "bare token", header: "abc123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type memNonceStore struct {
	entries map[string]string
}

func newMemNonceStore() *memNonceStore {
	return &memNonceStore{entries: make(map[string]string)}
}

func (s *memNonceStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.entries[key] = value.(string)
	return nil
}

func (s *memNonceStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.entries[key]
	if !ok {
		return "", pkgredis.ErrNil
	}
	return v, nil
}

func TestNonceIssueAndVerify(t *testing.T) {
	store := newMemNonceStore()
	m := NewNonceManager(store, time.Minute)
	ctx := context.Background()

	nonce, err := m.Issue(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, nonce, 32)
	assert.NotContains(t, nonce, " ")

	require.NoError(t, m.Verify(ctx, "admin", nonce))

	// reusable until expiry
	require.NoError(t, m.Verify(ctx, "admin", nonce))
}

func TestNonceVerifyRejectsUnknown(t *testing.T) {
	m := NewNonceManager(newMemNonceStore(), time.Minute)
	ctx := context.Background()

	err := m.Verify(ctx, "admin", strings.Repeat("a", 32))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthBadNonce, apperrors.ExtractCode(err))
}

func TestNonceVerifyRejectsEmpty(t *testing.T) {
	m := NewNonceManager(newMemNonceStore(), time.Minute)

	err := m.Verify(context.Background(), "admin", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthBadNonce, apperrors.ExtractCode(err))
}

func TestNonceVerifyRejectsOtherSubject(t *testing.T) {
	m := NewNonceManager(newMemNonceStore(), time.Minute)
	ctx := context.Background()

	nonce, err := m.Issue(ctx, "admin")
	require.NoError(t, err)

	err = m.Verify(ctx, "intruder", nonce)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthBadNonce, apperrors.ExtractCode(err))
}

func TestNonceUniqueness(t *testing.T) {
	m := NewNonceManager(newMemNonceStore(), time.Minute)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		nonce, err := m.Issue(ctx, "admin")
		require.NoError(t, err)
		assert.False(t, seen[nonce])
		seen[nonce] = true
	}
}
