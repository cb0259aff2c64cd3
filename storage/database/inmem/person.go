package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/taqyeem/core/person"
)

type personRepository struct {
	db *personTable
}

var _ person.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository(db *DB) *personRepository {
	return &personRepository{db: db.persons}
}

func (repo *personRepository) CreatePerson(_ context.Context, p person.Person) (person.Person, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p.ID = uuid.New().String()
	repo.db.t[p.ID] = &p
	return p, nil
}

func (repo *personRepository) GetPerson(_ context.Context, accountID string, kind person.Kind, id string) (person.Person, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.t[id]; ok && p.AccountID == accountID && p.Kind == kind {
		return *p, nil
	}
	return person.Person{}, person.ErrNotFound
}

func (repo *personRepository) QueryPersons(_ context.Context, accountID string, filter person.QueryFilter) ([]person.Person, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	persons := make([]person.Person, 0)
	for _, p := range repo.db.t {
		if p.AccountID == accountID && filter.Match(*p) {
			persons = append(persons, *p)
		}
	}
	return persons, nil
}

func (repo *personRepository) DeletePerson(_ context.Context, accountID string, kind person.Kind, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p, ok := repo.db.t[id]
	if !ok || p.AccountID != accountID || p.Kind != kind {
		return person.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}
