package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/taqyeem/core/visit"
)

type visitRepository struct {
	db *visitTable
}

var _ visit.Repository = (*visitRepository)(nil) // interface compliance check

func NewVisitRepository(db *DB) *visitRepository {
	return &visitRepository{db: db.visits}
}

func (repo *visitRepository) CreateVisit(_ context.Context, v visit.Visit) (visit.Visit, error) {
	repo.db.mutex.Lock()
	v.ID = uuid.New().String()
	repo.db.t[v.ID] = &v
	repo.db.mutex.Unlock()

	repo.db.subs.notify(v.AccountID)
	return v, nil
}

func (repo *visitRepository) GetVisit(_ context.Context, accountID, id string) (visit.Visit, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if v, ok := repo.db.t[id]; ok && v.AccountID == accountID {
		return *v, nil
	}
	return visit.Visit{}, visit.ErrNotFound
}

func (repo *visitRepository) QueryVisits(_ context.Context, accountID string) ([]visit.Visit, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	visits := make([]visit.Visit, 0)
	for _, v := range repo.db.t {
		if v.AccountID == accountID {
			visits = append(visits, *v)
		}
	}
	return visits, nil
}

func (repo *visitRepository) DeleteVisit(_ context.Context, accountID, id string) error {
	repo.db.mutex.Lock()
	v, ok := repo.db.t[id]
	if !ok || v.AccountID != accountID {
		repo.db.mutex.Unlock()
		return visit.ErrNotFound
	}
	delete(repo.db.t, id)
	repo.db.mutex.Unlock()

	repo.db.subs.notify(accountID)
	return nil
}

func (repo *visitRepository) Subscribe(ctx context.Context, accountID string) (<-chan struct{}, error) {
	return repo.db.subs.subscribe(ctx, accountID), nil
}
