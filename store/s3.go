package store

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Mirror uploads finished artifacts to an S3 bucket so a digest run on an
// ephemeral host leaves a durable copy behind.
type Mirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewMirror creates a mirror using the default AWS configuration chain.
// Region overrides the chain when non-empty.
func NewMirror(ctx context.Context, bucket, prefix, region string) (*Mirror, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Mirror{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Upload copies the local file to <prefix>/<subdir>/<basename>. The content
// type is set from the file extension so mirrored HTML reports render in a
// browser.
func (m *Mirror) Upload(ctx context.Context, localPath, subdir string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join(m.prefix, subdir, filepath.Base(localPath))
	in := &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := contentType(localPath); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := m.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", m.bucket, key, err)
	}
	return nil
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".json":
		return "application/json"
	case ".html":
		return "text/html; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return ""
	}
}
