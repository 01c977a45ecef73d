package storage

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/signaldrift/signaldrift/internal/application"
	"github.com/signaldrift/signaldrift/internal/domain/documents"
)

// MinioStore keeps uploaded documents as objects in one bucket. Object
// keys are the timestamped filenames, so listing needs no extra index.
type MinioStore struct {
	client *minio.Client
	bucket string
	clock  application.Clock
}

// NewMinio connects and ensures the bucket exists.
func NewMinio(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &MinioStore{client: cli, bucket: bucket, clock: application.SystemClock{}}, nil
}

func (s *MinioStore) Save(ctx context.Context, originalName string, r io.Reader, size int64) (documents.FileInfo, error) {
	now := s.clock.Now()
	stored := documents.StoredName(now, filepath.Base(originalName))

	contentType := mime.TypeByExtension(filepath.Ext(originalName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.client.PutObject(ctx, s.bucket, stored, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return documents.FileInfo{}, err
	}

	return documents.FileInfo{
		Filename:   stored,
		Size:       info.Size,
		UploadedAt: now.UTC(),
	}, nil
}

func (s *MinioStore) List(ctx context.Context) ([]documents.FileInfo, error) {
	var out []documents.FileInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		uploaded, ok := documents.UploadedAtFromName(obj.Key)
		if !ok {
			uploaded = obj.LastModified.UTC()
		}
		out = append(out, documents.FileInfo{
			Filename:   obj.Key,
			Size:       obj.Size,
			UploadedAt: uploaded,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *MinioStore) Delete(ctx context.Context, filename string) error {
	return s.client.RemoveObject(ctx, s.bucket, filepath.Base(filename), minio.RemoveObjectOptions{})
}

func (s *MinioStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, filepath.Base(filename), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}
