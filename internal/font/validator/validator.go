package validator

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
)

// DefaultMaxUploadSize caps uploads at 10 MiB
const DefaultMaxUploadSize int64 = 10 << 20

// allowedExtensions is the accepted font container whitelist
var allowedExtensions = map[string]bool{
	"ttf":   true,
	"otf":   true,
	"woff":  true,
	"woff2": true,
}

// Container signatures are the first four bytes of each format.
var (
	sigOTTO = []byte("OTTO")             // OpenType with CFF outlines
	sigWOFF = []byte("wOFF")             // WOFF 1.0
	sigWOF2 = []byte("wOF2")             // WOFF 2.0
	sigSfnt = []byte{0x00, 0x01, 0x00, 0x00} // TrueType sfnt
	sigTrue = []byte("true")             // legacy Apple TrueType
	sigTTCF = []byte("ttcf")             // TrueType collection
)

// Decision is the accepted outcome of upload validation
type Decision struct {
	Extension     string // normalized lowercase extension
	SanitizedName string // caller-supplied filename, path and control chars stripped
	BaseName      string // SanitizedName without extension, used as the default display name
}

// Validator inspects incoming uploads before any storage action
type Validator struct {
	maxSize int64
}

// New creates a Validator with the given size cap; maxSize <= 0 uses the default
func New(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &Validator{maxSize: maxSize}
}

// CheckUpload validates a declared upload. Checks short-circuit in order: size,
// filename, extension, content signature. The size check runs before any byte
// of content is read. At most the first four bytes of content are consumed.
func (v *Validator) CheckUpload(filename string, size int64, content io.Reader) (*Decision, error) {
	if size > v.maxSize {
		return nil, apperrors.New(apperrors.ErrFontTooLarge)
	}

	sanitized := SanitizeFilename(filename)
	if sanitized == "" {
		return nil, apperrors.New(apperrors.ErrFontEmptyFilename)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(sanitized), "."))
	if !allowedExtensions[ext] {
		return nil, apperrors.New(apperrors.ErrFontInvalidExtension, sanitized)
	}

	if err := checkSignature(ext, content); err != nil {
		return nil, err
	}

	return &Decision{
		Extension:     ext,
		SanitizedName: sanitized,
		BaseName:      strings.TrimSuffix(sanitized, filepath.Ext(sanitized)),
	}, nil
}

// SanitizeFilename strips directory components and control characters from a
// caller-supplied filename. The result is used for display only, never for
// storage path construction.
func SanitizeFilename(name string) string {
	// Take the final path element for both separator conventions.
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}

	name = strings.TrimSpace(b.String())
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// checkSignature reads the first four bytes of content and matches them
// against the known container signatures for the given extension. TTF has no
// single canonical signature, so any of the known sfnt variants is accepted.
func checkSignature(ext string, content io.Reader) error {
	head := make([]byte, 4)
	if _, err := io.ReadFull(content, head); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFontInvalidSignature)
	}

	var ok bool
	switch ext {
	case "otf":
		ok = bytes.Equal(head, sigOTTO) || bytes.Equal(head, sigSfnt)
	case "woff":
		ok = bytes.Equal(head, sigWOFF)
	case "woff2":
		ok = bytes.Equal(head, sigWOF2)
	case "ttf":
		ok = bytes.Equal(head, sigSfnt) || bytes.Equal(head, sigTrue) ||
			bytes.Equal(head, sigTTCF) || bytes.Equal(head, sigOTTO)
	}

	if !ok {
		return apperrors.New(apperrors.ErrFontInvalidSignature)
	}
	return nil
}
