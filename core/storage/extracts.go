package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

const uriScheme = "s3://"

// ParseURI splits an s3://bucket/key source into its parts.
// ok is false for anything that is not a well-formed object URI.
func ParseURI(uri string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, uriScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Download copies bucket/key into a new file under dir and returns its path.
// The caller owns the file.
func Download(ctx context.Context, client Client, bucket, key, dir string) (string, error) {
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	f, err := os.CreateTemp(dir, "extract-*-"+path.Base(key))
	if err != nil {
		return "", fmt.Errorf("failed to create local copy: %w", err)
	}

	if _, err := io.Copy(f, obj); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to download object %s/%s: %w", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write local copy: %w", err)
	}
	return f.Name(), nil
}

// Upload stores the local file at bucket/key, creating the bucket when missing.
func Upload(ctx context.Context, client Client, bucket, key, localPath string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	_, err = client.PutObject(ctx, bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s/%s: %w", filepath.Base(localPath), bucket, key, err)
	}
	return nil
}
