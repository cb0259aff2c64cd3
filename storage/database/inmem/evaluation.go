package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/taqyeem/core/evaluation"
)

type evaluationRepository struct {
	db *evaluationTable
}

var _ evaluation.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *DB) *evaluationRepository {
	return &evaluationRepository{db: db.evaluations}
}

func (repo *evaluationRepository) CreateEvaluation(_ context.Context, ev evaluation.Evaluation) (evaluation.Evaluation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ev.ID = uuid.New().String()
	repo.db.t[ev.ID] = &ev
	return ev, nil
}

func (repo *evaluationRepository) GetEvaluation(_ context.Context, accountID, personID, id string) (evaluation.Evaluation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ev, ok := repo.db.t[id]; ok && ev.AccountID == accountID && ev.PersonID == personID {
		return *ev, nil
	}
	return evaluation.Evaluation{}, evaluation.ErrNotFound
}

func (repo *evaluationRepository) QueryEvaluations(_ context.Context, accountID, personID string) ([]evaluation.Evaluation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	evals := make([]evaluation.Evaluation, 0)
	for _, ev := range repo.db.t {
		if ev.AccountID == accountID && ev.PersonID == personID {
			evals = append(evals, *ev)
		}
	}
	return evals, nil
}

func (repo *evaluationRepository) DeleteEvaluation(_ context.Context, accountID, personID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ev, ok := repo.db.t[id]
	if !ok || ev.AccountID != accountID || ev.PersonID != personID {
		return evaluation.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}
