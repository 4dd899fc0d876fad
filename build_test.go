package castree

import (
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/suite"

	"github.com/buildcache/go-castree/plumbing/digest"
)

type BuildSuite struct {
	suite.Suite
	fs billy.Filesystem
	fn digest.Function
	p  MetadataProvider
}

func TestBuildSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BuildSuite))
}

func (s *BuildSuite) SetupTest() {
	s.fs = memfs.New()
	s.fn = digest.SHA256()
	s.p = NewFilesystemProvider(s.fs, s.fn)
}

func (s *BuildSuite) write(path, content string) {
	s.NoError(util.WriteFile(s.fs, path, []byte(content), 0644))
}

// scenarioInputs writes the reference layout and returns its inputs in
// build order.
func (s *BuildSuite) scenarioInputs() []Input {
	s.write("a/b.txt", "hi")
	s.write("a/c/d.txt", "yo")
	s.write("e.txt", "!")
	return []Input{FileInput("a/b.txt"), FileInput("a/c/d.txt"), FileInput("e.txt")}
}

func (s *BuildSuite) TestScenario() {
	tree, err := Build(s.scenarioInputs(), s.p, s.fn)
	s.NoError(err)

	d1 := s.fn.Compute([]byte("hi"))
	d2 := s.fn.Compute([]byte("yo"))
	d3 := s.fn.Compute([]byte("!"))

	s.Equal(3, tree.NumInputs())
	for d, path := range map[digest.Digest]string{
		d1: "a/b.txt", d2: "a/c/d.txt", d3: "e.txt",
	} {
		in, ok := tree.Input(d)
		s.True(ok)
		s.Equal(path, in.Path())
	}

	s.Equal(3, tree.NumDirectories())

	root, ok := tree.Directory(tree.RootDigest())
	s.True(ok)
	s.Len(root.Files, 1)
	s.Equal("e.txt", root.Files[0].Name)
	s.Equal(d3, root.Files[0].Digest)
	s.True(root.Files[0].Executable)
	s.Len(root.Dirs, 1)
	s.Equal("a", root.Dirs[0].Name)

	a, ok := tree.Directory(root.Dirs[0].Digest)
	s.True(ok)
	s.Len(a.Files, 1)
	s.Equal("b.txt", a.Files[0].Name)
	s.Equal(d1, a.Files[0].Digest)
	s.Len(a.Dirs, 1)
	s.Equal("c", a.Dirs[0].Name)

	c, ok := tree.Directory(a.Dirs[0].Digest)
	s.True(ok)
	s.Len(c.Files, 1)
	s.Equal("d.txt", c.Files[0].Name)
	s.Equal(d2, c.Files[0].Digest)
	s.Empty(c.Dirs)
}

func (s *BuildSuite) TestDeterminism() {
	inputs := s.scenarioInputs()

	t1, err := Build(inputs, s.p, s.fn)
	s.NoError(err)
	t2, err := Build(inputs, s.p, s.fn)
	s.NoError(err)

	s.Equal(t1.RootDigest(), t2.RootDigest())
	s.ElementsMatch(digestStrings(t1), digestStrings(t2))
}

func (s *BuildSuite) TestComputeRootDigestMatchesBuild() {
	inputs := s.scenarioInputs()

	tree, err := Build(inputs, s.p, s.fn)
	s.NoError(err)

	root, err := ComputeRootDigest(inputs, s.p, s.fn)
	s.NoError(err)
	s.Equal(tree.RootDigest(), root)
}

func (s *BuildSuite) TestDedup() {
	s.write("x/f.txt", "same")
	s.write("y/f.txt", "same")
	s.write("z.txt", "other")
	inputs := []Input{FileInput("x/f.txt"), FileInput("y/f.txt"), FileInput("z.txt")}

	tree, err := Build(inputs, s.p, s.fn)
	s.NoError(err)

	// Identical file content collapses to one leaf, and the structurally
	// identical directories x and y collapse to one node.
	s.Equal(2, tree.NumInputs())
	s.Equal(2, tree.NumDirectories())

	root, ok := tree.Directory(tree.RootDigest())
	s.True(ok)
	s.Len(root.Dirs, 2)
	s.Equal(root.Dirs[0].Digest, root.Dirs[1].Digest)
}

func (s *BuildSuite) TestEmptyInput() {
	tree, err := Build(nil, s.p, s.fn)
	s.NoError(err)

	s.Equal(s.fn.Empty(), tree.RootDigest())
	s.Equal(0, tree.NumDirectories())
	s.Equal(0, tree.NumInputs())
	s.Empty(tree.AllDigests())

	_, ok := tree.Directory(tree.RootDigest())
	s.False(ok)
}

func (s *BuildSuite) TestVirtualInputsSkipMetadata() {
	inputs := []Input{
		NewVirtualInput("gen/out.txt", []byte("data")),
	}

	// A nil provider proves virtual inputs never reach metadata lookup.
	tree, err := Build(inputs, nil, s.fn)
	s.NoError(err)

	d := s.fn.Compute([]byte("data"))
	in, ok := tree.Input(d)
	s.True(ok)
	s.Equal("gen/out.txt", in.Path())

	root, ok := tree.Directory(tree.RootDigest())
	s.True(ok)
	s.Len(root.Dirs, 1)
	s.Equal("gen", root.Dirs[0].Name)
}

func (s *BuildSuite) TestMissingMetadata() {
	tree, err := Build([]Input{FileInput("nope.txt")}, s.p, s.fn)
	s.ErrorIs(err, ErrMissingMetadata)
	s.ErrorContains(err, "nope.txt")
	s.Nil(tree)
}

func (s *BuildSuite) TestUnexpectedInputType() {
	s.NoError(s.fs.MkdirAll("somedir", 0755))

	tree, err := Build([]Input{FileInput("somedir")}, s.p, s.fn)
	s.ErrorIs(err, ErrUnexpectedInputType)
	s.Nil(tree)
}

func (s *BuildSuite) TestDeepUnwind() {
	s.write("a/b/c/d.txt", "deep")
	s.write("a/e.txt", "shallow")
	inputs := []Input{FileInput("a/b/c/d.txt"), FileInput("a/e.txt")}

	tree, err := Build(inputs, s.p, s.fn)
	s.NoError(err)
	s.Equal(4, tree.NumDirectories())

	root, ok := tree.Directory(tree.RootDigest())
	s.True(ok)
	s.Empty(root.Files)
	s.Len(root.Dirs, 1)

	a, ok := tree.Directory(root.Dirs[0].Digest)
	s.True(ok)
	s.Len(a.Files, 1)
	s.Equal("e.txt", a.Files[0].Name)
	s.Len(a.Dirs, 1)
	s.Equal("b", a.Dirs[0].Name)
}

func (s *BuildSuite) TestClosure() {
	tree, err := Build(s.scenarioInputs(), s.p, s.fn)
	s.NoError(err)
	s.assertClosed(tree, tree.RootDigest())
}

// assertClosed checks that every digest reachable from d resolves inside
// the tree.
func (s *BuildSuite) assertClosed(tree *Tree, d digest.Digest) {
	dir, ok := tree.Directory(d)
	if !s.True(ok) {
		return
	}
	for _, f := range dir.Files {
		_, ok := tree.Input(f.Digest)
		s.True(ok)
	}
	for _, sub := range dir.Dirs {
		s.assertClosed(tree, sub.Digest)
	}
}

func (s *BuildSuite) TestSortInputs() {
	inputs := []Input{
		FileInput("a.txt"),
		FileInput("a/b.txt"),
		FileInput("a/b/c.txt"),
	}
	SortInputs(inputs)

	s.Equal("a/b/c.txt", inputs[0].Path())
	s.Equal("a/b.txt", inputs[1].Path())
	s.Equal("a.txt", inputs[2].Path())
}

func digestStrings(t *Tree) []string {
	out := make([]string, 0)
	for _, d := range t.AllDigests() {
		out = append(out, d.String())
	}
	sort.Strings(out)
	return out
}
