package castree

import (
	"os"

	"github.com/go-git/go-billy/v5"

	"github.com/buildcache/go-castree/plumbing/digest"
	"github.com/buildcache/go-castree/utils/ioutil"
)

// FilesystemProvider resolves inputs against a billy filesystem. Regular
// files are hashed by streaming their content; a path that does not exist
// is reported as absent, not as an error.
type FilesystemProvider struct {
	fs billy.Filesystem
	fn digest.Function
}

// NewFilesystemProvider returns a MetadataProvider reading from fs,
// hashing file content with fn. Input paths are resolved relative to the
// root of fs.
func NewFilesystemProvider(fs billy.Filesystem, fn digest.Function) *FilesystemProvider {
	return &FilesystemProvider{fs: fs, fn: fn}
}

// Lookup implements MetadataProvider.
func (p *FilesystemProvider) Lookup(in Input) (md *FileMetadata, err error) {
	fi, err := p.fs.Lstat(in.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	md = &FileMetadata{Size: fi.Size(), Type: fileTypeOf(fi.Mode())}
	if md.Type != Regular {
		return md, nil
	}

	f, err := p.fs.Open(in.Path())
	if err != nil {
		return nil, err
	}
	defer ioutil.CheckClose(f, &err)

	d, err := p.fn.FromReader(f)
	if err != nil {
		return nil, err
	}

	md.ContentHash = d.Sum()
	md.Size = d.SizeBytes()
	return md, nil
}

func fileTypeOf(m os.FileMode) FileType {
	switch {
	case m.IsRegular():
		return Regular
	case m.IsDir():
		return Dir
	case m&os.ModeSymlink != 0:
		return Symlink
	default:
		return Irregular
	}
}
