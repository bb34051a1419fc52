// Package storage moves dataset files between the local filesystem and
// an S3-compatible bucket. The bucket mirrors the on-disk dataset
// layout, so a key is always <prefix>/<kind>/<file>.
package storage

import "context"

// Config carries the connection settings for an S3-compatible store.
// Endpoint may be a bare host:port or a full URL; the scheme is
// stripped before dialing.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ObjectInfo is the subset of object metadata a listing returns.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore is what the dataset commands need from a bucket: list a
// prefix, pull a key to disk, and push generated files back up.
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}
