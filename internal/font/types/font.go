package types

import "time"

// FontAsset is the domain representation of one uploaded font.
// StoragePath is the internal location of the stored bytes; the public URL is
// derived from the stored filename on demand and never persisted.
type FontAsset struct {
	ID               uint
	Name             string // display name; defaults to the upload's base filename
	OriginalFilename string // sanitized caller-supplied name, display only
	StoredFilename   string // obfuscated name assigned at store time
	StoragePath      string
	UploadedAt       time.Time
}
