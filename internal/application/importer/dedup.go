package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// IdentityHash is the content hash of a row's normalized name.
func IdentityHash(firstName, lastName string) string {
	sum := sha256.Sum256([]byte(normalizeName(firstName) + "\x1f" + normalizeName(lastName)))
	return hex.EncodeToString(sum[:])
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Deduplicator remembers identity hashes seen during one run.
type Deduplicator struct {
	seen map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Check records row and reports whether an earlier row had the same identity.
func (d *Deduplicator) Check(row domain.ImportRow) (string, bool) {
	hash := IdentityHash(row.FirstName, row.LastName)
	if _, ok := d.seen[hash]; ok {
		return hash, true
	}
	d.seen[hash] = struct{}{}
	return hash, false
}
