package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"retail-backend/internal/config"
)

// ArchiveService uploads generated reports to S3-compatible object storage
// (R2 in production). When archiving is disabled it is a no-op.
type ArchiveService struct {
	cfg    *config.Config
	client *s3.Client
}

func NewArchiveService(cfg *config.Config) *ArchiveService {
	svc := &ArchiveService{cfg: cfg}
	if !cfg.Archive.Enabled {
		return svc
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Archive.Region),
	)
	if err != nil {
		log.Printf("[Archive] S3 client setup failed, archiving disabled: %v", err)
		return svc
	}

	svc.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
	})
	return svc
}

func (s *ArchiveService) Enabled() bool {
	return s.client != nil
}

// Upload stores a report under reports/<name>. Failures are logged, not
// returned: the caller already has the report bytes to serve.
func (s *ArchiveService) Upload(ctx context.Context, name, contentType string, data []byte) {
	if s.client == nil {
		return
	}

	key := "reports/" + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Archive.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("[Archive] upload of %s failed: %v", key, err)
		return
	}
	log.Printf("[Archive] uploaded %s (%d bytes)", key, len(data))
}

// List returns archived report keys for the operator view.
func (s *ArchiveService) List(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("archiving is disabled")
	}

	result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Archive.Bucket),
		Prefix: aws.String("reports/"),
	})
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}

	var keys []string
	for _, obj := range result.Contents {
		keys = append(keys, *obj.Key)
	}
	return keys, nil
}
