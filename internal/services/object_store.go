package services

import (
	"context"
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	// FolderRecordings is the object key prefix for recorded audio.
	FolderRecordings = "recordings"
	audioContentType = "audio/mpeg"
	uploadPartSize   = 8 * 1024 * 1024
)

type ObjectStoreInterface interface {
	UploadFile(ctx context.Context, localPath, remoteKey string) error
}

// R2Storage uploads recordings to Cloudflare R2 through its S3-compatible API.
type R2Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	logger   providers.Logger
}

func NewR2Storage(conf *structures.Config, logger providers.Logger) (ObjectStoreInterface, error) {
	storage := conf.Storage
	region := storage.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			storage.AccessKeyId, storage.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(storage.Endpoint)
		o.UsePathStyle = true
	})
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = uploadPartSize
	})

	logger.Infof(providers.TypeApp, "R2 storage initialized: bucket=%s endpoint=%s", storage.Bucket, storage.Endpoint)

	return &R2Storage{
		client:   client,
		uploader: uploader,
		bucket:   storage.Bucket,
		logger:   logger,
	}, nil
}

// RecordingKey returns the object key of a user's recording: recordings/{userId}/{filename}.
func RecordingKey(userID, filename string) string {
	return path.Join(FolderRecordings, userID, path.Base(filename))
}

func (r *R2Storage) UploadFile(ctx context.Context, localPath, remoteKey string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	_, err = r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(remoteKey),
		Body:          file,
		ContentType:   aws.String(audioContentType),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", remoteKey, err)
	}

	r.logger.Debugf(providers.TypeExecutor, "Uploaded %s (%d bytes) to %s/%s", localPath, info.Size(), r.bucket, remoteKey)
	return nil
}
