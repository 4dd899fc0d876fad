package castree

import (
	"github.com/buildcache/go-castree/plumbing/digest"
	"github.com/buildcache/go-castree/plumbing/node"
)

// Tree is the result of a construction: every distinct directory node and
// every distinct leaf input, keyed by digest, plus the digest of the
// root. A Tree is immutable once returned and safe for concurrent
// readers.
//
// Every digest reachable from the root through subdirectory entries is
// present in one of the two maps. Digests that were never part of the
// construction are simply not found; asking for them is not an error.
type Tree struct {
	dirs   map[digest.Digest]*node.Directory
	inputs map[digest.Digest]Input
	root   digest.Digest
}

// RootDigest returns the digest identifying the whole tree. For an empty
// tree it is the digest of zero bytes and is not present in any map.
func (t *Tree) RootDigest() digest.Digest {
	return t.root
}

// Directory returns the directory node stored under d.
func (t *Tree) Directory(d digest.Digest) (*node.Directory, bool) {
	dir, ok := t.dirs[d]
	return dir, ok
}

// Input returns the leaf input stored under d.
func (t *Tree) Input(d digest.Digest) (Input, bool) {
	in, ok := t.inputs[d]
	return in, ok
}

// NumDirectories returns the number of distinct directory nodes.
func (t *Tree) NumDirectories() int {
	return len(t.dirs)
}

// NumInputs returns the number of distinct leaf inputs.
func (t *Tree) NumInputs() int {
	return len(t.inputs)
}

// AllDigests returns the digests of every node and leaf of the tree, in
// no particular order. An uploader checks these against the remote cache
// and fetches the content of the missing ones through Directory and
// Input.
func (t *Tree) AllDigests() []digest.Digest {
	out := make([]digest.Digest, 0, len(t.dirs)+len(t.inputs))
	for d := range t.dirs {
		out = append(out, d)
	}
	for d := range t.inputs {
		out = append(out, d)
	}
	return out
}
