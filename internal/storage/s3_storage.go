package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/pkg/logger"
)

// S3Storage stores uploads in a bucket under the same relative keys the
// local driver uses on disk, so the two drivers are interchangeable.
type S3Storage struct {
	client    *s3.Client
	bucket    string
	uploadDir string
}

func NewS3Storage(cfg *config.StorageConfig) *S3Storage {
	var awsCfg aws.Config
	var err error

	// Static credentials when configured, otherwise the default chain
	// (environment, shared config, IAM role).
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	logger.Info("S3 storage initialized", map[string]interface{}{
		"bucket": cfg.Bucket,
		"region": cfg.Region,
	})
	return &S3Storage{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		uploadDir: cfg.UploadDir,
	}
}

func (s *S3Storage) Save(originalName string, r io.Reader, size, maxSize int64) (string, error) {
	if err := validate(originalName, size, maxSize); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s", s.uploadDir, uniqueName(originalName))

	contentType := mime.TypeByExtension(filepath.Ext(originalName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to upload file to S3", err, map[string]interface{}{
			"key": key,
		})
		return "", err
	}

	return key, nil
}

func (s *S3Storage) Remove(path string) error {
	if err := s.checkKey(path); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		logger.Error("Failed to delete file from S3", err, map[string]interface{}{
			"key": path,
		})
		return err
	}
	return nil
}

func (s *S3Storage) List() ([]FileInfo, error) {
	var files []FileInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.uploadDir + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			files = append(files, FileInfo{
				Path:    *obj.Key,
				ModTime: *obj.LastModified,
			})
		}
	}
	return files, nil
}

// checkKey rejects keys outside the upload prefix before issuing a
// delete against the bucket.
func (s *S3Storage) checkKey(key string) error {
	if strings.Contains(key, "..") || !strings.HasPrefix(key, s.uploadDir+"/") {
		return ErrPathOutsideRoot
	}
	return nil
}
