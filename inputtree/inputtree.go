// Package inputtree provides a mutable tree of path segments that feeds
// castree.BuildFromSegments. A build system that constructs many trees
// over a mostly stable input set keeps one of these alive and adds or
// replaces inputs incrementally, instead of re-sorting the full input
// list for every construction.
package inputtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"

	castree "github.com/buildcache/go-castree"
	"github.com/buildcache/go-castree/plumbing/digest"
)

var (
	// ErrPathConflict is returned when a path is already taken by a node
	// of the other kind, e.g. adding a file where a directory exists.
	ErrPathConflict = errors.New("path conflict")

	// ErrEmptyPath is returned by Add for the empty path.
	ErrEmptyPath = errors.New("empty path")
)

// Tree is a tree of path segments with files at the leaves. It is not
// safe for concurrent mutation; build once or guard externally.
type Tree struct {
	root  *dirNode
	files int
	dirs  int
}

type dirNode struct {
	files *treemap.Map // segment name -> *fileNode
	dirs  *treemap.Map // segment name -> *dirNode
}

type fileNode struct {
	digest digest.Digest
	input  castree.Input
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{root: newDirNode(), dirs: 1}
}

func newDirNode() *dirNode {
	return &dirNode{
		files: treemap.NewWithStringComparator(),
		dirs:  treemap.NewWithStringComparator(),
	}
}

// Add places an input with a precomputed digest at the given
// slash-separated path, creating intermediate directories as needed. An
// input already present at the path is replaced. A path segment already
// used by a node of the other kind is an ErrPathConflict.
func (t *Tree) Add(path string, d digest.Digest, in castree.Input) error {
	if path == "" {
		return ErrEmptyPath
	}

	segments := strings.Split(path, "/")
	cur := t.root
	walked := ""

	for _, s := range segments[:len(segments)-1] {
		walked = join(walked, s)
		if _, ok := cur.files.Get(s); ok {
			return fmt.Errorf("%w: %q is a file", ErrPathConflict, walked)
		}

		v, ok := cur.dirs.Get(s)
		if !ok {
			n := newDirNode()
			cur.dirs.Put(s, n)
			t.dirs++
			cur = n
			continue
		}
		cur = v.(*dirNode)
	}

	name := segments[len(segments)-1]
	if _, ok := cur.dirs.Get(name); ok {
		return fmt.Errorf("%w: %q is a directory", ErrPathConflict, path)
	}

	if _, ok := cur.files.Get(name); !ok {
		t.files++
	}
	cur.files.Put(name, &fileNode{digest: d, input: in})
	return nil
}

// Populate builds a Tree from plain inputs, computing each leaf digest
// with the same rule the flat builder uses, so both construction paths
// agree on every digest. Inputs need not be sorted.
func Populate(inputs []castree.Input, p castree.MetadataProvider, fn digest.Function) (*Tree, error) {
	t := New()
	for _, in := range inputs {
		d, err := castree.ComputeInputDigest(in, p, fn)
		if err != nil {
			return nil, err
		}
		if err := t.Add(in.Path(), d, in); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Empty implements castree.SegmentTree.
func (t *Tree) Empty() bool {
	return t.files == 0
}

// NumFiles implements castree.SegmentTree.
func (t *Tree) NumFiles() int {
	return t.files
}

// NumDirectories implements castree.SegmentTree. The root counts as a
// directory.
func (t *Tree) NumDirectories() int {
	return t.dirs
}

// Walk implements castree.SegmentTree: directories are visited in
// post-order with children sorted by name, the root last.
func (t *Tree) Walk(visit castree.SegmentVisitor) error {
	return t.root.walk("", visit)
}

func (n *dirNode) walk(path string, visit castree.SegmentVisitor) error {
	var dirs []castree.DirChild
	for _, k := range n.dirs.Keys() {
		name := k.(string)
		v, _ := n.dirs.Get(name)
		if err := v.(*dirNode).walk(join(path, name), visit); err != nil {
			return err
		}
		dirs = append(dirs, castree.DirChild{Name: name})
	}

	var files []castree.FileChild
	for _, k := range n.files.Keys() {
		name := k.(string)
		v, _ := n.files.Get(name)
		f := v.(*fileNode)
		files = append(files, castree.FileChild{
			Name:   name,
			Digest: f.digest,
			Input:  f.input,
		})
	}

	return visit(path, files, dirs)
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
