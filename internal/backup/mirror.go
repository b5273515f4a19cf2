package backup

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"pack-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Mirror keeps an off-site copy of archive artifacts in S3-compatible
// object storage. Mirroring is best-effort: a failed upload is logged and
// never fails the archive, but a mirrored copy lets Restore recover an
// artifact whose local file has been lost.
type Mirror struct {
	client *s3.Client
	bucket string
}

// NewMirror returns nil when mirroring is disabled; callers treat a nil
// mirror as "local artifacts only".
func NewMirror(cfg *config.Config) *Mirror {
	mc := cfg.Backup.Mirror
	if !mc.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			mc.AccessKey,
			mc.SecretKey,
			"",
		)),
		awsconfig.WithRegion(mc.Region),
	)
	if err != nil {
		log.Printf("[Mirror] Failed to configure object storage client: %v", err)
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if mc.Endpoint != "" {
			o.BaseEndpoint = aws.String(mc.Endpoint)
		}
	})

	return &Mirror{client: client, bucket: mc.Bucket}
}

// Upload copies a local artifact to the bucket under its base name.
func (m *Mirror) Upload(ctx context.Context, artifactPath string) error {
	f, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact for mirroring: %w", err)
	}
	defer f.Close()

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(filepath.Base(artifactPath)),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to mirror artifact %s: %w", filepath.Base(artifactPath), err)
	}
	return nil
}

// Fetch downloads a mirrored artifact back to artifactPath. Used by
// Restore when the local artifact file has gone missing.
func (m *Mirror) Fetch(ctx context.Context, artifactPath string) error {
	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(filepath.Base(artifactPath)),
	})
	if err != nil {
		return fmt.Errorf("artifact %s not in mirror: %w", filepath.Base(artifactPath), err)
	}
	defer result.Body.Close()

	if err := os.MkdirAll(filepath.Dir(artifactPath), 0o755); err != nil {
		return err
	}

	out, err := os.Create(artifactPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, result.Body); err != nil {
		os.Remove(artifactPath)
		return fmt.Errorf("failed to download mirrored artifact: %w", err)
	}
	return nil
}
