// Package repositories defines interfaces for data access layers.
package repositories

import "context"

// DocumentRepository locates and reads DBoM or SPDX documents
type DocumentRepository interface {
	// ListDocuments returns the paths of all documents in the repository, sorted
	ListDocuments(ctx context.Context) ([]string, error)

	// ReadDocument returns the document at path as JSON bytes
	ReadDocument(ctx context.Context, path string) ([]byte, error)
}
