// Package inmemdb is a process-local record store, used in development and tests.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/taqyeem/core/evaluation"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/visit"
)

type (
	DB struct {
		persons     *personTable
		evaluations *evaluationTable
		visits      *visitTable
	}

	personTable struct {
		t     map[string]*person.Person
		mutex sync.RWMutex
	}

	evaluationTable struct {
		t     map[string]*evaluation.Evaluation
		mutex sync.RWMutex
	}

	visitTable struct {
		t     map[string]*visit.Visit
		mutex sync.RWMutex
		subs  subscribers
	}

	// subscribers are notified of changes per account.
	subscribers struct {
		mutex sync.Mutex
		m     map[string]map[chan struct{}]struct{}
	}
)

func Open() *DB {
	return &DB{
		persons:     &personTable{t: make(map[string]*person.Person)},
		evaluations: &evaluationTable{t: make(map[string]*evaluation.Evaluation)},
		visits: &visitTable{
			t:    make(map[string]*visit.Visit),
			subs: subscribers{m: make(map[string]map[chan struct{}]struct{})},
		},
	}
}

// subscribe returns a channel notified on every change to the account's records until ctx is done.
func (s *subscribers) subscribe(ctx context.Context, accountID string) <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.mutex.Lock()
	if s.m[accountID] == nil {
		s.m[accountID] = make(map[chan struct{}]struct{})
	}
	s.m[accountID][ch] = struct{}{}
	s.mutex.Unlock()

	go func() {
		<-ctx.Done()
		s.mutex.Lock()
		delete(s.m[accountID], ch)
		if len(s.m[accountID]) == 0 {
			delete(s.m, accountID)
		}
		s.mutex.Unlock()
		close(ch)
	}()
	return ch
}

// notify never blocks: a subscriber with a pending notification is skipped.
func (s *subscribers) notify(accountID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for ch := range s.m[accountID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
