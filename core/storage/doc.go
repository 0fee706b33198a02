// Package storage wraps the Minio S3 client behind a small interface so
// the reconciliation audit archive can be tested against a mock client.
package storage
