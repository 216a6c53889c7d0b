package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
)

// filenamePrefix is prepended to every stored font file
const filenamePrefix = "font"

// tokenLength is the number of random characters in a stored filename
const tokenLength = 12

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// StoredFont identifies a blob written by a Store
type StoredFont struct {
	Filename string // obfuscated filename, unique per asset
	Path     string // backend-internal location of the bytes
}

// Store persists opaque font blobs under randomized names. Implementations
// never interpret the bytes; validation happens before Put is called.
type Store interface {
	// Put writes content under a freshly generated obfuscated name.
	Put(ctx context.Context, ext string, content io.Reader, size int64) (*StoredFont, error)

	// Remove deletes the blob at path. Removing a missing blob is not an
	// error; the caller has already confirmed the asset via the registry.
	Remove(ctx context.Context, path string) error

	// ResolveURL derives the public URL for a stored filename.
	ResolveURL(storedFilename string) string

	// EnsureRoot idempotently provisions the backing location.
	EnsureRoot(ctx context.Context) error

	// RemoveRoot tears down the backing location and everything in it.
	RemoveRoot(ctx context.Context) error
}

// generateFilename builds an unguessable filename from a random alphanumeric
// token and the validated extension, e.g. "font_x7Kq9mPz2RtL.woff2".
func generateFilename(ext string) (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate filename token: %w", err)
	}

	for i := range b {
		b[i] = tokenAlphabet[int(b[i])%len(tokenAlphabet)]
	}

	return fmt.Sprintf("%s_%s.%s", filenamePrefix, string(b), ext), nil
}
