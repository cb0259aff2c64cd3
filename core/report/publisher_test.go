package report

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/trezcool/taqyeem/tests"
)

func TestArtifactName(t *testing.T) {
	at := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	name := ArtifactName("p-1", at)
	assert.Equal(t, "evaluation_p-1_1710151200000.pdf", name)
	assert.Equal(t, "evaluations/evaluation_p-1_1710151200000.pdf", ArtifactKey(name))
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	doc, err := newTestAssembler(t).Assemble(Input{TeacherName: "Ahmed"})
	require.NoError(t, err)

	t.Run("publish and withdraw", func(t *testing.T) {
		storage := testutil.NewStorage()
		pub := NewPublisher(storage)

		art, err := pub.Publish(ctx, doc, "p-1", at)
		require.NoError(t, err)
		assert.Equal(t, "evaluation_p-1_1710151200000.pdf", art.Name)
		assert.Equal(t, "evaluations/evaluation_p-1_1710151200000.pdf", art.Key)
		assert.Equal(t, "https://files.test/evaluations/evaluation_p-1_1710151200000.pdf", art.URL)

		data, ct, ok := storage.Object(art.Key)
		require.True(t, ok)
		assert.Equal(t, ContentType, ct)
		assert.Equal(t, doc.Bytes(), data)

		require.NoError(t, pub.Withdraw(ctx, art.Key))
		assert.Equal(t, 0, storage.Len())
	})

	t.Run("upload failure", func(t *testing.T) {
		storage := testutil.NewStorage()
		storage.Err = testutil.ErrStorageDown
		pub := NewPublisher(storage)

		art, err := pub.Publish(ctx, doc, "p-1", at)
		assert.Equal(t, Artifact{}, art)
		assert.True(t, IsPublicationError(err))
		assert.True(t, IsPublicationError(errors.Wrap(err, "saving evaluation")))
		assert.Equal(t, testutil.ErrStorageDown, errors.Cause(err))
		assert.Contains(t, err.Error(), "evaluations/evaluation_p-1_1710151200000.pdf")

		assert.Error(t, pub.Withdraw(ctx, "evaluations/x.pdf"))
	})

	t.Run("empty url", func(t *testing.T) {
		storage := testutil.NewStorage()
		storage.EmptyURL = true

		_, err := NewPublisher(storage).Publish(ctx, doc, "p-1", at)
		assert.True(t, IsPublicationError(err))
		assert.Equal(t, errEmptyURL, errors.Cause(err))
	})

	assert.False(t, IsPublicationError(nil))
	assert.False(t, IsPublicationError(errors.New("boom")))
}
