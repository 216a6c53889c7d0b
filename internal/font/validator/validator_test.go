package validator

import (
	"bytes"
	"strings"
	"testing"

	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sfntContent() []byte {
	return append([]byte{0x00, 0x01, 0x00, 0x00}, bytes.Repeat([]byte{0xAB}, 64)...)
}

func TestCheckUpload_AcceptedFormats(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		wantExt  string
	}{
		{"truetype", "MyFont.ttf", sfntContent(), "ttf"},
		{"apple truetype", "Legacy.TTF", append([]byte("true"), 0x00), "ttf"},
		{"opentype", "Serif.otf", append([]byte("OTTO"), 0x00), "otf"},
		{"woff", "Web.woff", append([]byte("wOFF"), 0x00), "woff"},
		{"woff2", "Web2.woff2", append([]byte("wOF2"), 0x00), "woff2"},
	}

	v := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := v.CheckUpload(tt.filename, int64(len(tt.content)), bytes.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, d.Extension)
		})
	}
}

func TestCheckUpload_RejectsUnknownExtension(t *testing.T) {
	v := New(0)

	for _, name := range []string{"font.exe", "font.svg", "font.eot", "font", "font.ttf.zip"} {
		_, err := v.CheckUpload(name, 100, bytes.NewReader(sfntContent()))
		assert.Error(t, err, name)
		assert.True(t, apperrors.Is(err, apperrors.ErrFontInvalidExtension), name)
	}
}

func TestCheckUpload_RejectsInvalidSignature(t *testing.T) {
	v := New(0)

	// An executable renamed to .ttf must not pass the content sniff.
	exe := append([]byte{0x4D, 0x5A, 0x90, 0x00}, bytes.Repeat([]byte{0x00}, 32)...)
	_, err := v.CheckUpload("evil.ttf", int64(len(exe)), bytes.NewReader(exe))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrFontInvalidSignature))

	// A WOFF signature under a .woff2 extension is a mismatch.
	_, err = v.CheckUpload("font.woff2", 100, bytes.NewReader([]byte("wOFFxxxx")))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrFontInvalidSignature))
}

func TestCheckUpload_RejectsOversizeBeforeReadingContent(t *testing.T) {
	v := New(0)

	// The reader panics on read; the size check must short-circuit first.
	_, err := v.CheckUpload("big.ttf", 11<<20, panicReader{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrFontTooLarge))
}

func TestCheckUpload_CustomSizeLimit(t *testing.T) {
	v := New(1024)

	_, err := v.CheckUpload("small.ttf", 2048, bytes.NewReader(sfntContent()))
	assert.True(t, apperrors.Is(err, apperrors.ErrFontTooLarge))

	_, err = v.CheckUpload("small.ttf", 512, bytes.NewReader(sfntContent()))
	assert.NoError(t, err)
}

func TestCheckUpload_BaseName(t *testing.T) {
	v := New(0)

	d, err := v.CheckUpload("Comic.ttf", 50*1024, bytes.NewReader(sfntContent()))
	require.NoError(t, err)
	assert.Equal(t, "Comic", d.BaseName)
	assert.Equal(t, "Comic.ttf", d.SanitizedName)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.ttf", "plain.ttf"},
		{"../../etc/passwd.ttf", "passwd.ttf"},
		{"dir/sub/font.otf", "font.otf"},
		{"win\\path\\font.woff", "font.woff"},
		{"ctrl\x00\x1fchars.ttf", "ctrlchars.ttf"},
		{"   ", ""},
		{"..", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestCheckUpload_EmptyFilename(t *testing.T) {
	v := New(0)

	_, err := v.CheckUpload("///", 100, strings.NewReader(""))
	assert.True(t, apperrors.Is(err, apperrors.ErrFontEmptyFilename))
}

type panicReader struct{}

func (panicReader) Read([]byte) (int, error) {
	panic("content must not be read before the size check")
}
