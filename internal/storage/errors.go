// Package storage provides blob storage for case documents and other
// service artifacts. A System is backed either by the local filesystem
// or by an S3-compatible object store.
package storage

import "errors"

var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates the key is empty, absolute, or escapes the storage root.
	ErrInvalidKey = errors.New("storage: invalid key")
)
