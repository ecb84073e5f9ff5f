// Package s3 implements blobstore.Store on Amazon S3. Round artifacts
// are streamed; uploads go through the parallel upload manager.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/akreshuk/autocontext/blobstore"
)

// Store implements blobstore.Store for S3.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "autocontext/run1/").
func NewStore(client *s3.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// New creates a Store using the default AWS configuration chain
// (environment, shared config, IMDS).
func New(ctx context.Context, bucket, rootPrefix string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	size := int64(-1)
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}
	return &s3Blob{body: resp.Body, size: size}, nil
}

// Create creates a blob for streaming writes. The upload runs in the
// background; Close blocks until it finishes.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()

	blob := &s3WritableBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	uploader := manager.NewUploader(s.client)
	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
			Body:   pr,
		})
		_ = pr.CloseWithError(err)
		blob.done <- err
	}()

	return blob, nil
}

// Put writes a blob atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Delete removes a blob. S3 deletes are idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns all blob names with the given prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			name = strings.TrimPrefix(name, "/")
			if name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

type s3Blob struct {
	body io.ReadCloser
	size int64
}

func (b *s3Blob) Read(p []byte) (int, error) { return b.body.Read(p) }
func (b *s3Blob) Close() error               { return b.body.Close() }
func (b *s3Blob) Size() int64                { return b.size }

type s3WritableBlob struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *s3WritableBlob) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *s3WritableBlob) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
