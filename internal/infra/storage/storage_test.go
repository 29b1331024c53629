package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockObjectAPI struct {
	putFunc    func(ctx context.Context, in *s3.PutObjectInput) error
	deleteKeys []string
}

func (m *mockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putFunc != nil {
		if err := m.putFunc(ctx, in); err != nil {
			return nil, err
		}
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deleteKeys = append(m.deleteKeys, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestLogStorage(t *testing.T) {
	url, err := LogStorage{}.Upload(context.Background(), "data:image/jpeg;base64,aGVsbG8=", "recipe_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://storage.example.com/images/recipe_abc.jpg" {
		t.Errorf("unexpected url %s", url)
	}

	if _, err := (LogStorage{}).Upload(context.Background(), "%%%", "x"); !errors.Is(err, recipe.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestS3Storage_UploadAndDelete(t *testing.T) {
	var gotKey, gotBody string
	api := &mockObjectAPI{putFunc: func(_ context.Context, in *s3.PutObjectInput) error {
		gotKey = aws.ToString(in.Key)
		b, _ := io.ReadAll(in.Body)
		gotBody = string(b)
		return nil
	}}

	s := &S3Storage{client: api, bucket: "photos", baseURL: "http://minio:9000/photos"}

	url, err := s.Upload(context.Background(), "aGVsbG8=", "recipe_1")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotKey != "images/recipe_1.jpg" || gotBody != "hello" {
		t.Errorf("unexpected put key=%s body=%s", gotKey, gotBody)
	}
	if url != "http://minio:9000/photos/images/recipe_1.jpg" {
		t.Errorf("unexpected url %s", url)
	}

	if err := s.Delete(context.Background(), url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(context.Background(), "https://elsewhere.example.com/images/x.jpg"); err != nil {
		t.Fatalf("delete foreign: %v", err)
	}
	if len(api.deleteKeys) != 1 || api.deleteKeys[0] != "images/recipe_1.jpg" {
		t.Errorf("expected only bucket object deleted, got %v", api.deleteKeys)
	}
}

func TestS3Storage_PutError(t *testing.T) {
	api := &mockObjectAPI{putFunc: func(context.Context, *s3.PutObjectInput) error {
		return errors.New("access denied")
	}}
	s := &S3Storage{client: api, bucket: "photos", baseURL: "http://minio:9000/photos"}

	if _, err := s.Upload(context.Background(), "aGVsbG8=", "recipe_1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewS3Storage_DefaultBaseURL(t *testing.T) {
	s := NewS3Storage(S3Config{Endpoint: "http://minio:9000/", Region: "us-east-1", Bucket: "photos"})
	if s.baseURL != "http://minio:9000/photos" {
		t.Errorf("unexpected base url %s", s.baseURL)
	}
}
