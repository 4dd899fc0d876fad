package digest

import (
	"bytes"
	"crypto"
	"encoding/hex"
	"strconv"
)

const (
	// SHA1Size is the size, in bytes, of a SHA-1 sum.
	SHA1Size = 20
	// SHA256Size is the size, in bytes, of a SHA-256 sum.
	SHA256Size = 32
	// MaxSumSize is the size of the largest supported sum.
	MaxSumSize = SHA256Size
)

// Digest identifies content by the hash of its bytes together with its
// byte length. Digests are comparable values and are used as map keys:
// two pieces of content with the same hash and length are considered
// identical.
//
// The zero Digest identifies nothing and reports IsZero.
type Digest struct {
	sum  [MaxSumSize]byte
	algo crypto.Hash
	size int64
}

// FromSum builds a Digest from a raw hash sum and the length of the
// hashed content. The algorithm is inferred from the sum length.
//
// If the sum length matches no supported algorithm, a zero Digest and
// false are returned.
func FromSum(sum []byte, size int64) (Digest, bool) {
	var d Digest

	switch len(sum) {
	case SHA1Size:
		d.algo = crypto.SHA1
	case SHA256Size:
		d.algo = crypto.SHA256
	default:
		return Digest{}, false
	}

	copy(d.sum[:], sum)
	d.size = size
	return d, true
}

// Sum returns a copy of the raw hash sum.
func (d Digest) Sum() []byte {
	if d.algo == 0 {
		return nil
	}

	out := make([]byte, d.algo.Size())
	copy(out, d.sum[:])
	return out
}

// SizeBytes returns the length of the content the digest identifies,
// not the length of the sum.
func (d Digest) SizeBytes() int64 {
	return d.size
}

// Algorithm returns the hash algorithm that produced the digest.
func (d Digest) Algorithm() crypto.Hash {
	return d.algo
}

// IsZero returns true if the digest is the zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Equal reports whether two digests identify the same content.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// Compare compares the digest's sum with a slice of bytes.
func (d Digest) Compare(in []byte) int {
	return bytes.Compare(d.sum[:d.algo.Size()], in)
}

// String returns the digest as "<hex sum>/<content size>".
func (d Digest) String() string {
	if d.algo == 0 {
		return ""
	}

	return hex.EncodeToString(d.sum[:d.algo.Size()]) +
		"/" + strconv.FormatInt(d.size, 10)
}
