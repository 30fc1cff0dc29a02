// Package images turns product and banner image object names into URLs.
package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	config "github.com/brenpaiva/ecommerce-store/configs"
)

// URLer resolves an image object name to something a browser can load.
type URLer interface {
	URL(ctx context.Context, object string) (string, error)
}

// Static joins object names onto a public base URL. An empty base returns the
// object name unchanged.
type Static struct {
	BaseURL string
}

func (s Static) URL(_ context.Context, object string) (string, error) {
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if object == "" || s.BaseURL == "" {
		return object, nil
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + object, nil
}

// signer is the part of *storage.BucketHandle used here.
type signer interface {
	SignedURL(object string, opts *storage.SignedURLOptions) (string, error)
}

// GCS issues short-lived V4 GET URLs for objects in a private bucket.
type GCS struct {
	bucket signer
	ttl    time.Duration
	now    func() time.Time
}

const DefaultTTL = 15 * time.Minute

func NewGCS(ctx context.Context, bucket string, ttl time.Duration) (*GCS, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("images: bucket is empty")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("images: storage client: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &GCS{bucket: client.Bucket(bucket), ttl: ttl, now: time.Now}, nil
}

func (g *GCS) URL(_ context.Context, object string) (string, error) {
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if object == "" {
		return "", nil
	}
	u, err := g.bucket.SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: g.now().UTC().Add(g.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("images: sign %s: %w", object, err)
	}
	return u, nil
}

// New picks GCS when a bucket is configured, else the static base URL.
func New(ctx context.Context, cfg config.ImagesConfig) (URLer, error) {
	if cfg.GCSBucket != "" {
		return NewGCS(ctx, cfg.GCSBucket, DefaultTTL)
	}
	return Static{BaseURL: cfg.BaseURL}, nil
}
