package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for uploaded images

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"estateflow/crm/internal/config"
)

// ErrUnsupportedImage is returned when an upload cannot be decoded as an image.
var ErrUnsupportedImage = fmt.Errorf("unsupported or corrupt image data")

// IImageStorage defines the interface for property image storage.
type IImageStorage interface {
	UploadPropertyImage(ctx context.Context, agentID string, data []byte) (string, error)
}

// s3ImageStorage implements IImageStorage on top of S3. Oversized images are
// downscaled before upload; everything is re-encoded as JPEG.
type s3ImageStorage struct {
	cfg      *config.Config
	s3Client *s3.Client
}

// NewS3ImageStorage creates a new S3-backed image storage service.
func NewS3ImageStorage(cfg *config.Config) (IImageStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3ImageStorage{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

// UploadPropertyImage decodes, downscales and stores an image, returning the
// public URL to embed in a property's images list.
func (s *s3ImageStorage) UploadPropertyImage(ctx context.Context, agentID string, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrUnsupportedImage
	}

	maxDim := uint(s.cfg.ImageMaxDimension)
	bounds := img.Bounds()
	if bounds.Dx() > int(maxDim) || bounds.Dy() > int(maxDim) {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	objectKey := fmt.Sprintf("properties/%s/%s.jpg", agentID, uuid.NewString())

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(encoded.Bytes()),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", objectKey, err)
	}

	return fmt.Sprintf("%s/%s", s.cfg.ImageBaseS3URL, objectKey), nil
}
