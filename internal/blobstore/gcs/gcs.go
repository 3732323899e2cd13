// Package gcs resolves image paths against a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/felipe-ssantos/prodigyfix/internal/blobstore"
)

// Resolver implements blobstore.Resolver by verifying the object exists and
// issuing a V4 signed GET URL for it.
type Resolver struct {
	client *storage.Client
	bucket string
	expiry time.Duration
}

// New constructs a Resolver for the given bucket. expiry bounds the signed
// URL validity; it should be at least as long as the image cache TTL so a
// cached URL never outlives its signature.
func New(ctx context.Context, bucket string, expiry time.Duration) (*Resolver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: create storage client: %w", err)
	}
	return &Resolver{client: client, bucket: bucket, expiry: expiry}, nil
}

// ResolveURL checks the object exists, then signs a GET URL for it.
func (r *Resolver) ResolveURL(ctx context.Context, path string) (string, error) {
	obj := r.client.Bucket(r.bucket).Object(path)
	if _, err := obj.Attrs(ctx); err != nil {
		return "", classify(err)
	}
	signed, err := r.client.Bucket(r.bucket).SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(r.expiry),
	})
	if err != nil {
		return "", classify(err)
	}
	return signed, nil
}

// Close releases the underlying storage client.
func (r *Resolver) Close() error { return r.client.Close() }

func classify(err error) error {
	switch {
	case errors.Is(err, storage.ErrObjectNotExist), errors.Is(err, storage.ErrBucketNotExist):
		return &blobstore.Error{Code: blobstore.CodeObjectNotFound, Err: err}
	case errors.Is(err, context.Canceled):
		return &blobstore.Error{Code: blobstore.CodeCanceled, Err: err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &blobstore.Error{Code: blobstore.CodeUnauthorized, Err: err}
		case 404:
			return &blobstore.Error{Code: blobstore.CodeObjectNotFound, Err: err}
		case 408, 429, 500, 502, 503, 504:
			return &blobstore.Error{Code: blobstore.CodeUnknown, Transient: true, Err: err}
		}
		return &blobstore.Error{Code: blobstore.CodeUnknown, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &blobstore.Error{Code: blobstore.CodeUnknown, Transient: true, Err: err}
	}
	return &blobstore.Error{Code: blobstore.CodeUnknown, Err: err}
}
