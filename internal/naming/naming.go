// Package naming produces collision-resistant resource names so every test
// works in its own corner of the remote namespace, and recognizes those
// names again when a run sweeps up after itself.
package naming

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// suffixLen is the number of hex characters appended to a prefix.
// 8 hex chars give 2^32 possibilities per prefix; collisions within a
// single run are treated as negligible rather than checked for.
const suffixLen = 8

// Unique returns prefix followed by 8 lowercase hex characters taken from a
// random (version 4) UUID.
func Unique(prefix string) string {
	id := uuid.New()

	return prefix + strings.ReplaceAll(id.String(), "-", "")[:suffixLen]
}

// Matches reports whether a remote resource name was produced for the given
// prefix. Both sides are compared in Unicode NFC because the provider may
// return names in a different normalization form than the one we sent.
func Matches(name, prefix string) bool {
	if prefix == "" {
		return false
	}

	return strings.HasPrefix(norm.NFC.String(name), norm.NFC.String(prefix))
}
