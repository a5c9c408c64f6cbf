package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sandeepkv93/invotrac/internal/domain"
)

const (
	exportPathPrefix = "exports"
	exportURLTTL     = 15 * time.Minute
	exportMediaType  = "text/csv"
)

var (
	ErrBucketCreationFailed = errors.New("failed to create export bucket")
	ErrUploadFailed         = errors.New("failed to upload export")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")

	csvHeader = []string{"id", "name", "description", "price", "quantity"}
)

// ExportCSV writes rows in the given order under the canonical header.
func ExportCSV(w io.Writer, rows []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range rows {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Description,
			p.Price.Format2(),
			p.Quantity.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MinIOExportStore uploads exports to an S3-compatible bucket. The bucket is
// created on first use so a missing object store never blocks startup.
type MinIOExportStore struct {
	client     *minio.Client
	bucketName string
	now        func() time.Time
	initOnce   sync.Once
	initErr    error
}

func NewMinIOExportStore(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOExportStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOExportStore{client: client, bucketName: bucketName, now: time.Now}, nil
}

func (s *MinIOExportStore) Client() *minio.Client { return s.client }

func (s *MinIOExportStore) Bucket() string { return s.bucketName }

func (s *MinIOExportStore) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.ensureBucket(ctx)
	})
	return s.initErr
}

func (s *MinIOExportStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
	}
	return nil
}

func (s *MinIOExportStore) Put(ctx context.Context, body io.Reader, size int64) (ExportLocation, error) {
	if err := s.lazyInit(ctx); err != nil {
		return ExportLocation{}, err
	}
	key := exportObjectKey(s.now(), uuid.New())
	_, err := s.client.PutObject(ctx, s.bucketName, key, body, size, minio.PutObjectOptions{
		ContentType:  exportMediaType,
		UserMetadata: map[string]string{"Exported-At": s.now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		return ExportLocation{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucketName, key, exportURLTTL, url.Values{})
	if err != nil {
		return ExportLocation{Key: key}, fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return ExportLocation{Key: key, URL: presigned.String()}, nil
}

func exportObjectKey(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s-%s.csv", exportPathPrefix, at.UTC().Format("20060102T150405Z"), id.String())
}
