package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/taqyeem/core/visit"
)

func TestVisitRepository_Subscribe(t *testing.T) {
	db := Open()
	repo := NewVisitRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := repo.Subscribe(ctx, "acc-1")
	require.NoError(t, err)

	received := func() bool {
		select {
		case <-changes:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}

	v, err := repo.CreateVisit(ctx, visit.Visit{AccountID: "acc-1", Kind: visit.KindNonClass})
	require.NoError(t, err)
	assert.True(t, received())

	_, err = repo.CreateVisit(ctx, visit.Visit{AccountID: "acc-2", Kind: visit.KindNonClass})
	require.NoError(t, err)
	assert.False(t, received(), "other accounts are not notified")

	// pending notifications coalesce
	_, _ = repo.CreateVisit(ctx, visit.Visit{AccountID: "acc-1"})
	_, _ = repo.CreateVisit(ctx, visit.Visit{AccountID: "acc-1"})
	assert.True(t, received())
	assert.False(t, received())

	require.NoError(t, repo.DeleteVisit(ctx, "acc-1", v.ID))
	assert.True(t, received())
	assert.Equal(t, visit.ErrNotFound, repo.DeleteVisit(ctx, "acc-1", v.ID))
	assert.False(t, received(), "failed deletes notify nobody")

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
	assert.Eventually(t, func() bool {
		db.visits.subs.mutex.Lock()
		defer db.visits.subs.mutex.Unlock()
		return len(db.visits.subs.m) == 0
	}, time.Second, 10*time.Millisecond)
}
