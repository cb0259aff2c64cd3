package report

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
)

// Prefix of every published report key.
const Prefix = "evaluations"

var errEmptyURL = errors.New("object storage returned an empty URL")

// Artifact locates a published report.
type Artifact struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

// PublicationError means a report could not be published; nothing should be recorded for it.
type PublicationError struct {
	Key string
	Err error
}

func (e *PublicationError) Error() string {
	return fmt.Sprintf("publishing report %s: %v", e.Key, e.Err)
}

func (e *PublicationError) Cause() error { return e.Err }

func (e *PublicationError) Unwrap() error { return e.Err }

// IsPublicationError reports whether err was caused by a failed publication.
func IsPublicationError(err error) bool {
	for err != nil {
		if _, ok := err.(*PublicationError); ok {
			return true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}

type Publisher struct {
	storage core.ObjectStorage
}

func NewPublisher(storage core.ObjectStorage) *Publisher {
	return &Publisher{storage: storage}
}

// ArtifactName is evaluation_{personID}_{epochMillis}.pdf.
func ArtifactName(personID string, at time.Time) string {
	return fmt.Sprintf("evaluation_%s_%d.pdf", personID, at.UnixMilli())
}

// ArtifactKey is the storage key of a published report name.
func ArtifactKey(name string) string {
	return path.Join(Prefix, name)
}

// Publish uploads doc, named after personID and the time it was published at,
// and returns where it can be fetched from.
func (p *Publisher) Publish(ctx context.Context, doc *Document, personID string, at time.Time) (Artifact, error) {
	name := ArtifactName(personID, at)
	key := ArtifactKey(name)

	url, err := p.storage.Upload(ctx, key, doc.Reader(), ContentType)
	if err != nil {
		return Artifact{}, &PublicationError{Key: key, Err: err}
	}
	if url == "" {
		return Artifact{}, &PublicationError{Key: key, Err: errEmptyURL}
	}
	return Artifact{Name: name, Key: key, URL: url}, nil
}

// Withdraw deletes a published report.
func (p *Publisher) Withdraw(ctx context.Context, key string) error {
	if err := p.storage.Delete(ctx, key); err != nil {
		return errors.Wrap(err, "deleting report "+key)
	}
	return nil
}
