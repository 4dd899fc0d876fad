// Package ioutil implements some I/O utility functions.
package ioutil

import "io"

// CheckClose calls Close on the given io.Closer. If the given *error
// points to nil, it will be assigned the error returned by Close. This
// can be used with defer to propagate errors from deferred Close calls.
func CheckClose(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
