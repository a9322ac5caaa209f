// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client. Extracts may be read from an s3://bucket/key
// URI instead of a local path, and processed extracts may be archived back to
// a bucket. Both AWS S3 and self-hosted MinIO work.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - ParseURI: recognizes s3:// sources.
//   - Download: copies an object into a local temporary file.
//   - Upload: stores a local file, creating the bucket when needed.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	local, err := storage.Download(ctx, client, "extracts", "2024/ICI.txt", "")
package storage
