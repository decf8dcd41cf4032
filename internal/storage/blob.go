package storage

import "io"

// BlobStore holds station and submission images keyed by a path-like string.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
