// Package node defines the directory node of a content-addressed tree
// and its canonical binary encoding. A node's digest is computed over the
// encoded form, so two directories with the same entries always share one
// digest regardless of how the entries were appended.
package node

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/buildcache/go-castree/plumbing/digest"
)

// ErrMalformedNode is returned by Decode when the input is not a valid
// encoded directory node.
var ErrMalformedNode = errors.New("malformed directory node")

// FileEntry is a named reference to file content within a Directory.
type FileEntry struct {
	Name       string
	Digest     digest.Digest
	Executable bool
}

// DirEntry is a named reference to a child Directory, by the digest of
// the child's encoded form.
type DirEntry struct {
	Name   string
	Digest digest.Digest
}

// Directory is one node of the tree: the files and subdirectories that
// live directly under it.
type Directory struct {
	Files []FileEntry
	Dirs  []DirEntry
}

// AddFile appends a file entry.
func (d *Directory) AddFile(name string, dg digest.Digest, executable bool) {
	d.Files = append(d.Files, FileEntry{Name: name, Digest: dg, Executable: executable})
}

// AddDirectory appends a subdirectory entry.
func (d *Directory) AddDirectory(name string, dg digest.Digest) {
	d.Dirs = append(d.Dirs, DirEntry{Name: name, Digest: dg})
}

// Digest encodes the directory and hashes the result with fn.
func (d *Directory) Digest(fn digest.Function) (digest.Digest, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return digest.Digest{}, err
	}

	return fn.Compute(buf.Bytes()), nil
}

// Encode writes the canonical binary form of the directory to w. File
// entries come first, then subdirectory entries, each section sorted by
// name, so the encoding does not depend on append order. The encoding is
// stable across releases: it is the basis for content addressing.
func (d *Directory) Encode(w io.Writer) error {
	e := &encoder{w: w}

	files := make([]FileEntry, len(d.Files))
	copy(files, d.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	dirs := make([]DirEntry, len(d.Dirs))
	copy(dirs, d.Dirs)
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })

	e.uvarint(uint64(len(files)))
	for _, f := range files {
		e.bytes([]byte(f.Name))
		e.digest(f.Digest)
		if f.Executable {
			e.byte(1)
		} else {
			e.byte(0)
		}
	}

	e.uvarint(uint64(len(dirs)))
	for _, s := range dirs {
		e.bytes([]byte(s.Name))
		e.digest(s.Digest)
	}

	return e.err
}

// Decode reads a directory node encoded by Encode. Entries come out in
// their encoded (sorted) order.
func (d *Directory) Decode(r io.Reader) error {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	dec := &decoder{r: br}

	nf := dec.uvarint()
	for i := uint64(0); i < nf && dec.err == nil; i++ {
		var f FileEntry
		f.Name = string(dec.bytes())
		f.Digest = dec.digest()
		f.Executable = dec.byte() == 1
		d.Files = append(d.Files, f)
	}

	nd := dec.uvarint()
	for i := uint64(0); i < nd && dec.err == nil; i++ {
		var s DirEntry
		s.Name = string(dec.bytes())
		s.Digest = dec.digest()
		d.Dirs = append(d.Dirs, s)
	}

	return dec.err
}

type encoder struct {
	w       io.Writer
	scratch [binary.MaxVarintLen64]byte
	err     error
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) byte(b byte) {
	e.write([]byte{b})
}

func (e *encoder) uvarint(v uint64) {
	n := binary.PutUvarint(e.scratch[:], v)
	e.write(e.scratch[:n])
}

func (e *encoder) bytes(p []byte) {
	e.uvarint(uint64(len(p)))
	e.write(p)
}

func (e *encoder) digest(d digest.Digest) {
	e.bytes(d.Sum())
	e.uvarint(uint64(d.SizeBytes()))
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

type decoder struct {
	r   byteReader
	err error
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}

	v, err := binary.ReadUvarint(d.r)
	if err != nil {
		d.err = fmt.Errorf("%w: %s", ErrMalformedNode, err)
		return 0
	}
	return v
}

func (d *decoder) byte() byte {
	if d.err != nil {
		return 0
	}

	b, err := d.r.ReadByte()
	if err != nil {
		d.err = fmt.Errorf("%w: %s", ErrMalformedNode, err)
		return 0
	}
	return b
}

func (d *decoder) bytes() []byte {
	n := d.uvarint()
	if d.err != nil {
		return nil
	}

	p := make([]byte, n)
	if _, err := io.ReadFull(d.r, p); err != nil {
		d.err = fmt.Errorf("%w: %s", ErrMalformedNode, err)
		return nil
	}
	return p
}

func (d *decoder) digest() digest.Digest {
	sum := d.bytes()
	size := d.uvarint()
	if d.err != nil {
		return digest.Digest{}
	}

	dg, ok := digest.FromSum(sum, int64(size))
	if !ok {
		d.err = fmt.Errorf("%w: digest sum of %d bytes", ErrMalformedNode, len(sum))
		return digest.Digest{}
	}
	return dg
}
