package core

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type MockS3Client struct {
	Objects map[string][]byte
	Types   map[string]string
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.Objects[*params.Key] = data
	m.Types[*params.Key] = *params.ContentType
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_UploadDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "春一波"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"A1.xlsx":                        "a1",
		filepath.Join("春一波", "A2.xlsx"): "a2",
		".bom-123.xlsx":                  "partial",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	client := &MockS3Client{Objects: map[string][]byte{}, Types: map[string]string{}}
	u := &S3Uploader{Client: client, Bucket: "boms", Prefix: "2025/"}
	n, err := u.UploadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("UploadDirectory error: %v", err)
	}
	if n != 2 {
		t.Errorf("uploaded %d files, want 2", n)
	}

	var keys []string
	for k := range client.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := []string{"2025/A1.xlsx", "2025/春一波/A2.xlsx"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("keys = %v, want %v", keys, want)
	}
	if client.Types["2025/A1.xlsx"] != xlsxContentType {
		t.Errorf("content type = %q", client.Types["2025/A1.xlsx"])
	}
}

func TestS3Uploader_UploadBytes(t *testing.T) {
	client := &MockS3Client{Objects: map[string][]byte{}, Types: map[string]string{}}
	u := &S3Uploader{Client: client, Bucket: "boms"}

	if err := u.UploadBytes(context.Background(), u.Key("BOM_files.zip"), []byte("zip")); err != nil {
		t.Fatalf("UploadBytes error: %v", err)
	}
	if string(client.Objects["BOM_files.zip"]) != "zip" {
		t.Errorf("objects = %v", client.Objects)
	}
	if client.Types["BOM_files.zip"] != "application/zip" {
		t.Errorf("content type = %q", client.Types["BOM_files.zip"])
	}
}
