package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// objectPutter is the slice of *minio.Client the object store needs.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ObjectStore writes each bundle to bundles/<id>.json. The key is derived from
// the bundle id, so publishing twice overwrites the same object.
type ObjectStore struct {
	client objectPutter
	bucket string
	logger *zap.Logger
}

func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func NewObjectStore(client objectPutter, bucket string, logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{client: client, bucket: bucket, logger: logger}
}

func (o *ObjectStore) Name() string {
	return "object-store"
}

func ObjectKey(bundleID string) string {
	return "bundles/" + bundleID + ".json"
}

func (o *ObjectStore) Publish(ctx context.Context, bundle fhirmodel.Bundle) error {
	body, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	key := ObjectKey(bundle.ID)
	info, err := o.client.PutObject(ctx, o.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: fhirJSON,
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", o.bucket, key, err)
	}

	o.logger.Info("Bundle stored",
		zap.String("bucket", o.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)
	return nil
}
