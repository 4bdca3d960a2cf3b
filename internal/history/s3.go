package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/you/xetrade/internal/config"
)

// S3Storage buffers snapshots in memory and uploads them as JSONL objects
// every flushEvery records. Keys are date-partitioned so a day of capture is
// one prefix. Works against AWS S3 and compatible stores (MinIO, R2) via the
// endpoint override.
type S3Storage struct {
	mu         sync.Mutex
	uploader   *manager.Uploader
	bucket     string
	flushEvery int
	buf        []Snapshot
	seq        int64
}

func NewS3Storage(ctx context.Context, cfg config.S3Cfg, flushEvery int) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("history: s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if flushEvery <= 0 {
		flushEvery = 100
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("history: load aws config: %w", err)
	}

	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(normalizeEndpoint(cfg.Endpoint))
		})
	}
	if cfg.ForcePathStyle {
		opts = append(opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, opts...)
	return &S3Storage{
		uploader:   manager.NewUploader(client),
		bucket:     cfg.Bucket,
		flushEvery: flushEvery,
	}, nil
}

func (s *S3Storage) Store(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	s.seq++
	snap.SequenceNumber = s.seq
	s.buf = append(s.buf, snap)
	full := len(s.buf) >= s.flushEvery
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush uploads the buffered snapshots as one object and clears the buffer.
func (s *S3Storage) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.buf
	s.buf = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, snap := range batch {
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("history: encode batch: %w", err)
		}
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("orderbooks/%s/capture_%s_%d.jsonl",
		now.Format("2006/01/02"), now.Format("150405"), batch[0].SequenceNumber)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        &body,
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("history: upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

func normalizeEndpoint(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		return endpoint
	}
	return "https://" + endpoint
}
