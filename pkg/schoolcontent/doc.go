// Package schoolcontent provides the content-management core for a school
// website backend: content records, gallery images, and the upload pipeline
// that transforms images and resolves where their bytes are persisted.
//
// Uploaded files end up in one of three places, encoded in a single file
// reference on the owning record: a blob row in the database (internal
// reference), an object in a remote S3-compatible bucket (remote reference),
// or a legacy file in a local uploads folder (bare filename, pre-migration
// installations only). The service prefers remote storage when configured,
// verifies the resulting public URL actually serves content, and falls back
// to database storage when it does not. The fallback is a deliberate
// resilience policy and is surfaced through structured logs and a counter.
//
// Repository (database) and BlobStore (object storage) implementations are
// pluggable; memory, filesystem and S3 backends are provided under
// subpackages.
package schoolcontent
