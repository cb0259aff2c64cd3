// Package visit records supervisory visits and streams live listings of them.
package visit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("visit not found")
)

type (
	Repository interface {
		CreateVisit(ctx context.Context, v Visit) (Visit, error)
		// GetVisit returns ErrNotFound when no such visit belongs to the account.
		GetVisit(ctx context.Context, accountID, id string) (Visit, error)
		QueryVisits(ctx context.Context, accountID string) ([]Visit, error)
		DeleteVisit(ctx context.Context, accountID, id string) error
		// Subscribe notifies every change to the account's visits until ctx is done,
		// then closes the channel. Notifications may be coalesced.
		Subscribe(ctx context.Context, accountID string) (<-chan struct{}, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
		loc      *time.Location
	}
)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, validate: validate, logger: logger, loc: loc}
}

func (svc *Service) Create(ctx context.Context, sess core.Session, nv NewVisit) (Visit, error) {
	if err := sess.Check(); err != nil {
		return Visit{}, err
	}
	if err := nv.Validate(svc.validate); err != nil {
		return Visit{}, err
	}
	v, err := svc.repo.CreateVisit(ctx, nv.visit(sess.AccountID, sess.Email, NowFunc().UTC()))
	if err != nil {
		return Visit{}, errors.Wrap(err, "creating visit")
	}
	return v, nil
}

func (svc *Service) Get(ctx context.Context, sess core.Session, id string) (Visit, error) {
	if err := sess.Check(); err != nil {
		return Visit{}, err
	}
	return svc.repo.GetVisit(ctx, sess.AccountID, id)
}

func (svc *Service) Delete(ctx context.Context, sess core.Session, id string) error {
	if err := sess.Check(); err != nil {
		return err
	}
	if err := svc.repo.DeleteVisit(ctx, sess.AccountID, id); err != nil {
		return errors.Wrap(err, "deleting visit")
	}
	return nil
}

// Query returns the account's visits matching the filter, most recent first.
func (svc *Service) Query(ctx context.Context, sess core.Session, filter Filter) ([]Visit, error) {
	if err := sess.Check(); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.query(ctx, sess.AccountID, filter)
}

func (svc *Service) query(ctx context.Context, accountID string, filter Filter) ([]Visit, error) {
	all, err := svc.repo.QueryVisits(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "querying visits")
	}
	visits := make([]Visit, 0, len(all))
	for _, v := range all {
		if filter.Match(v, svc.loc) {
			visits = append(visits, v)
		}
	}
	sort.SliceStable(visits, func(i, j int) bool { return visits[i].Date.After(visits[j].Date) })
	return visits, nil
}

// Watch emits a snapshot of the matching visits right away, then a fresh one after every change,
// until ctx is done. The returned channel is closed when watching stops.
func (svc *Service) Watch(ctx context.Context, sess core.Session, filter Filter) (<-chan []Visit, error) {
	if err := sess.Check(); err != nil {
		return nil, err
	}
	filter.Clean()

	changes, err := svc.repo.Subscribe(ctx, sess.AccountID)
	if err != nil {
		return nil, errors.Wrap(err, "subscribing to visits")
	}
	first, err := svc.query(ctx, sess.AccountID, filter)
	if err != nil {
		return nil, err
	}

	snapshots := make(chan []Visit, 1)
	snapshots <- first
	go func() {
		defer close(snapshots)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				visits, err := svc.query(ctx, sess.AccountID, filter)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					svc.logger.Warn(fmt.Sprintf("refreshing visits: %v", err), err, sess)
					continue
				}
				select {
				case snapshots <- visits:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return snapshots, nil
}
