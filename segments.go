package castree

import (
	"fmt"

	"github.com/buildcache/go-castree/plumbing/digest"
	"github.com/buildcache/go-castree/plumbing/node"
	"github.com/buildcache/go-castree/utils/trace"
)

// SegmentTree is the narrow view BuildFromSegments needs of an externally
// maintained path-segment tree. The inputtree package provides one
// implementation; callers with their own representation only have to
// satisfy this interface.
type SegmentTree interface {
	// Empty reports whether the tree holds no files at all.
	Empty() bool

	// NumFiles and NumDirectories are sizing hints for the result maps,
	// not exact contracts.
	NumFiles() int
	NumDirectories() int

	// Walk visits every directory of the tree in post-order: all children
	// of a directory are visited before the directory itself, and the
	// root (empty path) comes last. Walk stops at the first error
	// returned by the visitor and returns it.
	Walk(SegmentVisitor) error
}

// SegmentVisitor receives one directory per call: its slash-separated
// path relative to the root, its direct file children and the names of
// its direct subdirectories.
type SegmentVisitor func(dir string, files []FileChild, dirs []DirChild) error

// FileChild is a file directly under a visited directory, carrying its
// precomputed digest and the input it came from.
type FileChild struct {
	Name   string
	Digest digest.Digest
	Input  Input
}

// DirChild is a subdirectory directly under a visited directory.
type DirChild struct {
	Name string
}

// BuildFromSegments constructs the same Tree value Build produces, but
// from a pre-structured segment tree instead of a sorted scan. Given
// logically equivalent input, both produce identical digests.
//
// The digest of each visited directory is parked under its path until the
// parent consumes it; post-order guarantees the parent is visited after
// all of its children, so a missing digest means the SegmentTree is
// broken and construction aborts with ErrBrokenPostOrder.
func BuildFromSegments(st SegmentTree, fn digest.Function) (*Tree, error) {
	if st.Empty() {
		return &Tree{
			dirs:   map[digest.Digest]*node.Directory{},
			inputs: map[digest.Digest]Input{},
			root:   fn.Empty(),
		}, nil
	}

	t := &Tree{
		dirs:   make(map[digest.Digest]*node.Directory, st.NumDirectories()),
		inputs: make(map[digest.Digest]Input, st.NumFiles()),
	}

	pending := make(map[string]digest.Digest)
	err := st.Walk(func(dir string, files []FileChild, dirs []DirChild) error {
		b := &node.Directory{}
		for _, f := range files {
			b.AddFile(f.Name, f.Digest, true)
			t.inputs[f.Digest] = f.Input
		}
		for _, c := range dirs {
			sub := joinPath(dir, c.Name)
			d, ok := pending[sub]
			if !ok {
				return fmt.Errorf("%w: no digest for %q", ErrBrokenPostOrder, sub)
			}
			delete(pending, sub)
			b.AddDirectory(c.Name, d)
		}

		d, err := b.Digest(fn)
		if err != nil {
			return err
		}
		t.dirs[d] = b
		pending[dir] = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	root, ok := pending[""]
	if !ok {
		return nil, fmt.Errorf("%w: root was never visited", ErrBrokenPostOrder)
	}
	t.root = root

	trace.Build.Printf("castree: built tree from segments root=%s directories=%d inputs=%d",
		root, len(t.dirs), len(t.inputs))
	return t, nil
}
