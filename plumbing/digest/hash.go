// Package digest provides content-addressed identifiers: a Digest is the
// pair (content hash, byte length), and a Function is the hash algorithm
// used to produce it.
package digest

import (
	"crypto"
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/pjbgf/sha1cd"
)

// algos is a map of hash algorithms.
var algos = map[crypto.Hash]func() hash.Hash{
	crypto.SHA1:   sha1cd.New,
	crypto.SHA256: sha256.New,
}

// RegisterHash allows for the hash algorithm used by a Function to be
// overridden, e.g. replacing sha1cd with Go's crypto/sha1 when collision
// detection is not a concern.
func RegisterHash(h crypto.Hash, f func() hash.Hash) error {
	if f == nil {
		return fmt.Errorf("cannot register hash: f is nil")
	}

	switch h {
	case crypto.SHA1:
		algos[h] = f
	case crypto.SHA256:
		algos[h] = f
	default:
		return fmt.Errorf("unsupported hash function: %v", h)
	}
	return nil
}
