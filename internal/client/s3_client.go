package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/podpod/api/internal/config"
)

// StorageClient defines the interface for podcast audio storage.
type StorageClient interface {
	// UploadFile stores the file under the audio ID and returns its public URL.
	UploadFile(ctx context.Context, filePath, audioID string) (string, error)
	// DeleteAudio removes every object stored under the audio ID.
	DeleteAudio(ctx context.Context, audioID string) bool
	// CheckConnection probes the bucket and returns a status string for /health.
	CheckConnection(ctx context.Context) (bool, string)
}

// S3Client implements StorageClient for an S3-compatible endpoint.
type S3Client struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewS3Client creates a storage client from the podcast storage config.
// Path-style addressing is required by the OVH object storage endpoint.
func NewS3Client(cfg *config.S3Config) (*S3Client, error) {
	if missing := cfg.MissingVars(); len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	endpointResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: cfg.Endpoint}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithEndpointResolverWithOptions(endpointResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &S3Client{
		s3Client:  s3Client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
	}, nil
}

// UploadFile uploads an audio file with a public-read ACL and returns the
// public URL. Upload failures propagate to the caller.
func (c *S3Client) UploadFile(ctx context.Context, filePath, audioID string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	objectName := fmt.Sprintf("%s/%s", audioID, filepath.Base(filePath))

	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(objectName),
		Body:        f,
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String("audio/mpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", c.publicURL, objectName), nil
}

// DeleteAudio removes every object stored under the audio ID prefix.
func (c *S3Client) DeleteAudio(ctx context.Context, audioID string) bool {
	listed, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(audioID + "/"),
	})
	if err != nil {
		log.Printf("Failed to list objects for %s: %v", audioID, err)
		return false
	}
	if len(listed.Contents) == 0 {
		return true
	}

	objects := make([]types.ObjectIdentifier, 0, len(listed.Contents))
	for _, obj := range listed.Contents {
		objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
	}

	_, err = c.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(c.bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		log.Printf("Failed to delete objects for %s: %v", audioID, err)
		return false
	}
	return true
}

// CheckConnection probes the bucket with a HeadBucket call.
func (c *S3Client) CheckConnection(ctx context.Context) (bool, string) {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err == nil {
		return true, "connected"
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, "bucket_not_found"
	}
	return false, fmt.Sprintf("error: %v", err)
}
