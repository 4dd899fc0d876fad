// Package castree builds content-addressed (Merkle) directory trees from
// a collection of build inputs. Every node of the resulting tree, file or
// directory, is identified by the digest of its content, so an entire
// input filesystem is described by a single root digest: a remote cache
// can tell which nodes it already holds, and identical files or subtrees
// collapse to one stored instance.
//
// Two construction paths produce the same result. Build scans a
// lexicographically sorted input list once, keeping only the directory
// builders of the current ancestor chain alive. BuildFromSegments
// consumes an already assembled path-segment tree (see the inputtree
// package) through a post-order visit, which lets callers that maintain
// such a tree across many constructions avoid re-sorting unchanged
// subtrees. Both paths yield bit-identical digests for the same logical
// content.
package castree
