package castree

import (
	"sort"
	"strings"

	"github.com/buildcache/go-castree/plumbing/digest"
	"github.com/buildcache/go-castree/plumbing/node"
	"github.com/buildcache/go-castree/utils/trace"
)

// Build constructs the content-addressed tree for inputs, resolving
// non-virtual inputs through p and hashing with fn.
//
// inputs must be strictly sorted by path components (see SortInputs).
// The sort order is a precondition, not verified: it is what tells the
// scan that a directory's children have all been seen, and violating it
// silently produces a wrong tree.
func Build(inputs []Input, p MetadataProvider, fn digest.Function) (*Tree, error) {
	t := &Tree{
		dirs:   make(map[digest.Digest]*node.Directory),
		inputs: make(map[digest.Digest]Input, len(inputs)),
	}

	root, err := build(inputs, p, fn, t.dirs, t.inputs)
	if err != nil {
		return nil, err
	}
	t.root = root

	trace.Build.Printf("castree: built tree root=%s directories=%d inputs=%d",
		root, len(t.dirs), len(t.inputs))
	return t, nil
}

// ComputeRootDigest is the digest-only variant of Build: same traversal,
// but nothing is retained beyond the root digest.
func ComputeRootDigest(inputs []Input, p MetadataProvider, fn digest.Function) (digest.Digest, error) {
	return build(inputs, p, fn, nil, nil)
}

// build runs the sorted single-pass scan. A stack of in-progress
// directory nodes mirrors the ancestor chain of the path being processed;
// current is the directory the stack top belongs to. When the scan moves
// to a path outside current, the finished directories are popped,
// digested and attached to their parents. The nil-ness of dirs and leaves
// selects between the digest-only and the map-populating variant.
func build(inputs []Input, p MetadataProvider, fn digest.Function,
	dirs map[digest.Digest]*node.Directory, leaves map[digest.Digest]Input) (digest.Digest, error) {
	if len(inputs) == 0 {
		return fn.Empty(), nil
	}

	current := ""
	stack := []*node.Directory{{}}

	// finish pops the innermost in-progress directory and returns its
	// digest, recording the node when map output was requested.
	finish := func() (digest.Digest, error) {
		done := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d, err := done.Digest(fn)
		if err != nil {
			return digest.Digest{}, err
		}
		if dirs != nil {
			dirs[d] = done
		}
		return d, nil
	}

	for _, in := range inputs {
		dir := parentPath(in.Path())
		if dir != current {
			// Sorted order guarantees no later input lives under current
			// once dir has left it, so everything between current and the
			// common ancestor is complete and can be closed.
			for !isAncestor(current, dir) {
				d, err := finish()
				if err != nil {
					return digest.Digest{}, err
				}
				stack[len(stack)-1].AddDirectory(basePath(current), d)
				current = parentPath(current)
			}
			for n := segmentCount(dir) - segmentCount(current); n > 0; n-- {
				stack = append(stack, &node.Directory{})
			}
			current = dir
		}

		d, err := ComputeInputDigest(in, p, fn)
		if err != nil {
			return digest.Digest{}, err
		}
		if leaves != nil {
			leaves[d] = in
		}
		stack[len(stack)-1].AddFile(basePath(in.Path()), d, true)
	}

	for {
		d, err := finish()
		if err != nil {
			return digest.Digest{}, err
		}
		if len(stack) == 0 {
			if current != "" {
				panic("castree: directory stack unwound with cursor at " + current)
			}
			return d, nil
		}
		stack[len(stack)-1].AddDirectory(basePath(current), d)
		current = parentPath(current)
	}
}

// SortInputs sorts inputs by path components, the order Build requires.
// Note this differs from plain string order: "a/b" sorts before "a.txt"
// because the segment "a" is shorter than "a.txt".
func SortInputs(inputs []Input) {
	sort.Slice(inputs, func(i, j int) bool {
		return comparePaths(inputs[i].Path(), inputs[j].Path()) < 0
	})
}

func comparePaths(a, b string) int {
	for {
		as, arest, amore := cutSegment(a)
		bs, brest, bmore := cutSegment(b)
		switch {
		case !amore && !bmore:
			return 0
		case !amore:
			return -1
		case !bmore:
			return 1
		}
		if c := strings.Compare(as, bs); c != 0 {
			return c
		}
		a, b = arest, brest
	}
}

func cutSegment(p string) (seg, rest string, ok bool) {
	if p == "" {
		return "", "", false
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], p[i+1:], true
	}
	return p, "", true
}

// parentPath returns the directory containing p, "" for the root.
func parentPath(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// basePath returns the last segment of p.
func basePath(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

// isAncestor reports whether p equals dir or lives below it. The root
// (empty path) is an ancestor of everything.
func isAncestor(dir, p string) bool {
	if dir == "" || p == dir {
		return true
	}
	return strings.HasPrefix(p, dir+"/")
}

func segmentCount(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
