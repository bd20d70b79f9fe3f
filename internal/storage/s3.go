package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/salihRogo/movie-recommender/internal/logger"
	"go.uber.org/zap"
)

// ArtifactStore downloads model artifacts from an S3 bucket into a local
// directory before the model loader reads them. Training runs elsewhere
// and publishes its outputs to S3; the serving process only ever pulls.
type ArtifactStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArtifactStore creates an S3-backed artifact store.
func NewArtifactStore(region, bucket, prefix string) (*ArtifactStore, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &ArtifactStore{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// SyncTo downloads the named artifacts into destDir, skipping files that
// are missing upstream. Missing optional artifacts are the model
// loader's concern, not a sync failure.
func (a *ArtifactStore) SyncTo(ctx context.Context, destDir string, names []string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %w", err)
	}

	var fetched int
	for _, name := range names {
		if err := a.downloadOne(ctx, name, filepath.Join(destDir, name)); err != nil {
			logger.Warn("Model artifact not downloaded",
				zap.String("artifact", name),
				zap.Error(err),
			)
			continue
		}
		fetched++
	}

	if fetched == 0 {
		return fmt.Errorf("no model artifacts found under s3://%s/%s", a.bucket, a.prefix)
	}

	logger.Log.Info("Model artifacts synced from S3",
		zap.String("bucket", a.bucket),
		zap.Int("fetched", fetched),
		zap.Int("requested", len(names)),
	)
	return nil
}

func (a *ArtifactStore) downloadOne(ctx context.Context, name, destPath string) error {
	key := a.prefix + name
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("fetching s3://%s/%s: %w", a.bucket, key, err)
	}
	defer out.Body.Close()

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	// Rename so the loader never reads a half-written artifact.
	return os.Rename(tmpPath, destPath)
}

// CheckBucketAccess verifies the bucket is reachable with the current
// credentials.
func (a *ArtifactStore) CheckBucketAccess(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", a.bucket, err)
	}
	return nil
}

// BucketURL returns a human-readable location string for logs.
func (a *ArtifactStore) BucketURL() string {
	return "s3://" + a.bucket + "/" + strings.TrimPrefix(a.prefix, "/")
}
