// Package alioss stores objects in an Alibaba Cloud OSS bucket.
package alioss

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
)

const immutableCache = "public, max-age=31536000, immutable"

// bucket is the part of *oss.Bucket we use.
type bucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
	DeleteObject(objectKey string, options ...oss.Option) error
}

type Storage struct {
	bucket     bucket
	name       string
	endpoint   string
	publicBase string
}

var _ core.ObjectStorage = (*Storage)(nil) // interface compliance check

func New(conf core.OSSConfig) (*Storage, error) {
	endpoint := NormalizeEndpoint(conf.Endpoint)
	if endpoint == "" || conf.AccessKeyID == "" || conf.AccessKeySecret == "" || conf.Bucket == "" {
		return nil, errors.New("incomplete OSS configuration")
	}
	client, err := oss.New(endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating OSS client")
	}
	b, err := client.Bucket(conf.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSS bucket")
	}
	return newStorage(b, conf.Bucket, endpoint, conf.PublicBase), nil
}

func newStorage(b bucket, name, endpoint, publicBase string) *Storage {
	return &Storage{bucket: b, name: name, endpoint: endpoint, publicBase: strings.TrimSpace(publicBase)}
}

// Upload stores r under key, served inline and cached forever since keys are never reused.
func (s *Storage) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl(immutableCache),
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return "", errors.Wrap(err, "putting object "+key)
	}
	return s.PublicURL(key), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "deleting object "+key)
	}
	return nil
}

// PublicURL is the configured public base joined with key, or the bucket's virtual-host URL.
func (s *Storage) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.publicBase != "" {
		return strings.TrimRight(s.publicBase, "/") + "/" + key
	}
	if s.endpoint == "" || s.name == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.name, strings.TrimRight(host, "/"), key)
}

// NormalizeEndpoint defaults the endpoint scheme to https.
func NormalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" {
		return ep
	}
	if strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}
