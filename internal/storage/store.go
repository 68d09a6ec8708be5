package storage

import (
	"context"
	"errors"
	"io"

	applog "marketplace/internal/log"
)

// Kind selects the bucket an object lives in.
type Kind string

const (
	KindImages    Kind = "images"
	KindDocuments Kind = "documents"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindImages, KindDocuments:
		return Kind(s), true
	}
	return "", false
}

// ObjectStore addresses objects by their public URL.
type ObjectStore interface {
	// Put stores body under key in the bucket for kind and returns its public URL.
	Put(ctx context.Context, kind Kind, key string, body io.Reader, contentType string) (string, error)
	// Delete removes the object behind url. URLs outside the known hosts are
	// skipped and reported with deleted == false.
	Delete(ctx context.Context, url string) (deleted bool, err error)
}

var ErrNotConfigured = errors.New("object store not configured")

// NopStore stands in when no bucket is configured (local development).
type NopStore struct{}

func (NopStore) Put(context.Context, Kind, string, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}

func (NopStore) Delete(_ context.Context, url string) (bool, error) {
	applog.Base().WithField("url", url).Info("storage.nop.delete")
	return false, nil
}
