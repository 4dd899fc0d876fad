package castree

import "errors"

var (
	// ErrMissingMetadata is returned when no metadata is available for a
	// non-virtual input. Construction aborts; there is no partial tree.
	ErrMissingMetadata = errors.New("missing metadata")

	// ErrUnexpectedInputType is returned when an input's metadata
	// declares something other than a regular file.
	ErrUnexpectedInputType = errors.New("unexpected input type")

	// ErrBrokenPostOrder is returned when a SegmentTree delivers a parent
	// directory before one of its children. It indicates a bug in the
	// SegmentTree implementation, not a data problem.
	ErrBrokenPostOrder = errors.New("segment tree broke post-order visitation")
)
