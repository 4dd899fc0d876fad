package digest

import (
	"crypto"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrUnsupportedHashFunction is returned when a Function is requested
	// for an algorithm with no registered implementation.
	ErrUnsupportedHashFunction = errors.New("unsupported hash function")
	// ErrInvalidSum is returned when a raw sum does not match the
	// function's algorithm.
	ErrInvalidSum = errors.New("invalid hash sum")
)

// Function is a digest function bound to one hash algorithm. All digests
// within one tree must come from the same Function for deduplication to
// hold.
//
// The zero Function is not usable; construct one with New or SHA256.
type Function struct {
	algo crypto.Hash
}

// New returns a Function for the given algorithm. The algorithm must have
// a registered implementation, see RegisterHash.
func New(algo crypto.Hash) (Function, error) {
	if _, ok := algos[algo]; !ok {
		return Function{}, fmt.Errorf("%w: %v", ErrUnsupportedHashFunction, algo)
	}
	return Function{algo: algo}, nil
}

// SHA256 returns the Function used by default for content-addressed
// trees.
func SHA256() Function {
	return Function{algo: crypto.SHA256}
}

// Algorithm returns the function's hash algorithm.
func (f Function) Algorithm() crypto.Hash {
	return f.algo
}

// Compute hashes p and returns its Digest.
func (f Function) Compute(p []byte) Digest {
	h := algos[f.algo]()
	h.Write(p)

	var d Digest
	d.algo = f.algo
	d.size = int64(len(p))
	copy(d.sum[:], h.Sum(nil))
	return d
}

// FromReader hashes the content of r until EOF, counting its length as
// it goes.
func (f Function) FromReader(r io.Reader) (Digest, error) {
	h := algos[f.algo]()
	n, err := io.Copy(h, r)
	if err != nil {
		return Digest{}, err
	}

	var d Digest
	d.algo = f.algo
	d.size = n
	copy(d.sum[:], h.Sum(nil))
	return d, nil
}

// FromContentHash builds a Digest from an already known hash sum and
// content size, without touching the content itself. The sum length must
// match the function's algorithm.
func (f Function) FromContentHash(sum []byte, size int64) (Digest, error) {
	if len(sum) != f.algo.Size() {
		return Digest{}, fmt.Errorf("%w: got %d bytes, expected %d",
			ErrInvalidSum, len(sum), f.algo.Size())
	}

	d, _ := FromSum(sum, size)
	return d, nil
}

// Empty returns the digest of zero bytes, used as the root digest of an
// empty tree.
func (f Function) Empty() Digest {
	return f.Compute(nil)
}
