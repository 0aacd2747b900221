package corpus

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashOf is the content digest used as the identity key for deduplication.
func HashOf(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Repository identifies one mined repository.
type Repository struct {
	Owner   string
	Name    string
	License string
}

// Provenance associates a content hash with one (repository, path) origin.
type Provenance struct {
	Owner string
	Name  string
	Path  string
}

// Location is one origin of a hash, with the repository's license.
type Location struct {
	Owner   string
	Name    string
	Path    string
	License string
}

// FileInfo is everything known about one content hash.
type FileInfo struct {
	Hash      string
	Locations []Location

	Summarized bool
	NTokens    int
	SLOC       int

	Failed     bool
	FailReason string
}

// Stats are corpus-wide processing counts.
type Stats struct {
	Files      int
	Summarized int
	Failed     int
}

// Pending is the number of ingested hashes with no recorded outcome yet.
func (s Stats) Pending() int {
	return s.Files - s.Summarized - s.Failed
}
