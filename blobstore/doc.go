// Package blobstore provides storage abstraction for autocontext round
// artifacts: project snapshots, cached probability volumes and the run
// manifest.
//
// Store is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - Local: local filesystem with atomic writes
//   - Memory: in-memory store for tests
//   - s3.Store: Amazon S3 with streaming uploads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Compression
//
// Round artifacts can be large; the package ships an optional stream
// compression layer (LZ4 for speed, Zstandard for ratio) applied by the
// trainer when caching volumes.
package blobstore
