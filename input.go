package castree

import (
	"fmt"

	"github.com/buildcache/go-castree/plumbing/digest"
)

// FileType classifies what a path on the build filesystem points at.
type FileType int8

const (
	// Regular is a regular file, the only type allowed as tree input.
	Regular FileType = iota
	// Dir is a directory.
	Dir
	// Symlink is a symbolic link.
	Symlink
	// Irregular is anything else (device, socket, ...).
	Irregular
)

func (t FileType) String() string {
	switch t {
	case Regular:
		return "regular file"
	case Dir:
		return "directory"
	case Symlink:
		return "symlink"
	default:
		return "irregular file"
	}
}

// Input references the content of one file placed in the tree at Path.
// Path is slash-separated and relative to the tree root.
type Input interface {
	Path() string
}

// Virtual is an Input whose bytes are fully known in memory. Virtual
// inputs are digested directly and never go through a MetadataProvider.
type Virtual interface {
	Input
	Bytes() []byte
}

// FileInput is an Input backed by a file on the build filesystem,
// resolved through a MetadataProvider at construction time.
type FileInput string

// Path implements Input.
func (f FileInput) Path() string {
	return string(f)
}

// VirtualInput is an in-memory Input, e.g. a file generated by the build
// system itself rather than read from disk.
type VirtualInput struct {
	path     string
	contents []byte
}

// NewVirtualInput returns a VirtualInput placing contents at path.
func NewVirtualInput(path string, contents []byte) *VirtualInput {
	return &VirtualInput{path: path, contents: contents}
}

// Path implements Input.
func (v *VirtualInput) Path() string {
	return v.path
}

// Bytes implements Virtual.
func (v *VirtualInput) Bytes() []byte {
	return v.contents
}

// FileMetadata describes a file well enough to digest it without reading
// its content again: the hash of its bytes, its size and its type.
type FileMetadata struct {
	ContentHash []byte
	Size        int64
	Type        FileType
}

// MetadataProvider resolves non-virtual inputs to their metadata.
//
// Lookup returns (nil, nil) when it knows nothing about the input;
// builders turn that into ErrMissingMetadata. Errors are reserved for
// failures of the provider itself.
type MetadataProvider interface {
	Lookup(in Input) (*FileMetadata, error)
}

// ComputeInputDigest returns the digest of a single input: virtual inputs
// hash their bytes directly, all others must resolve through p to a
// regular file whose digest derives from the metadata's content hash and
// size.
func ComputeInputDigest(in Input, p MetadataProvider, fn digest.Function) (digest.Digest, error) {
	if v, ok := in.(Virtual); ok {
		return fn.Compute(v.Bytes()), nil
	}

	md, err := p.Lookup(in)
	if err != nil {
		return digest.Digest{}, err
	}
	if md == nil {
		return digest.Digest{}, fmt.Errorf("%w for %q", ErrMissingMetadata, in.Path())
	}
	if md.Type != Regular {
		return digest.Digest{}, fmt.Errorf("%w: %q is a %s",
			ErrUnexpectedInputType, in.Path(), md.Type)
	}

	return fn.FromContentHash(md.ContentHash, md.Size)
}
