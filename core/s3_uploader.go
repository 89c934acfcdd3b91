package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is the subset of the S3 API the uploader needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// S3Uploader handles uploading generated BOMs to S3.
type S3Uploader struct {
	Client S3Client
	Bucket string
	Prefix string
}

// NewS3Uploader creates a new uploader.
func NewS3Uploader(cfg aws.Config, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Prefix: prefix,
	}
}

// Key joins the prefix and a slash-separated relative path.
func (u *S3Uploader) Key(rel string) string {
	key := path.Join(u.Prefix, filepath.ToSlash(rel))
	return strings.TrimPrefix(key, "/")
}

// UploadDirectory walks the local directory and uploads every generated workbook.
// Temp files left by an interrupted save are skipped.
func (u *S3Uploader) UploadDirectory(ctx context.Context, localDir string) (int, error) {
	count := 0
	err := filepath.Walk(localDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		relPath, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		if err := u.UploadFile(ctx, p, u.Key(relPath)); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// UploadFile uploads a single file to S3.
func (u *S3Uploader) UploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	slog.Info("Uploading to S3", "local", localPath, "bucket", u.Bucket, "key", key)
	return u.put(ctx, key, file, contentType(key))
}

// UploadBytes uploads an in-memory object such as a zip archive.
func (u *S3Uploader) UploadBytes(ctx context.Context, key string, data []byte) error {
	slog.Info("Uploading to S3", "bucket", u.Bucket, "key", key, "bytes", len(data))
	return u.put(ctx, key, bytes.NewReader(data), contentType(key))
}

func (u *S3Uploader) put(ctx context.Context, key string, body io.Reader, ctype string) error {
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(ctype),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}

func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".xlsx":
		return xlsxContentType
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
