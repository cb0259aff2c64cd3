package evaluation

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
)

var errInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// Filter narrows an evaluation listing; empty fields match everything.
type Filter struct {
	PersonID    string `query:"person"`
	EvaluatorID string `query:"evaluator"`
	Date        string `query:"date"` // local calendar day, YYYY-MM-DD
}

func (f *Filter) Clean() error {
	f.PersonID = core.CleanString(f.PersonID)
	f.EvaluatorID = core.CleanString(f.EvaluatorID)
	f.Date = core.CleanString(f.Date)
	if f.Date != "" {
		if _, err := time.Parse(core.DateLayout, f.Date); err != nil {
			return core.NewValidationError(errInvalidDate, core.FieldError{Field: "date", Error: errInvalidDate.Error()})
		}
	}
	return nil
}

// Match applies the evaluator and date filters; the day is compared in loc.
func (f Filter) Match(ev Evaluation, loc *time.Location) bool {
	if f.PersonID != "" && ev.PersonID != f.PersonID {
		return false
	}
	if f.EvaluatorID != "" && ev.EvaluatorID != f.EvaluatorID {
		return false
	}
	if f.Date != "" && !core.SameDay(ev.Date, f.Date, loc) {
		return false
	}
	return true
}

// Query lists the account's evaluations, most recent first.
// Without a person filter it fans out over every teacher of the account and merges the results.
func (svc *Service) Query(ctx context.Context, sess core.Session, filter Filter) ([]Evaluation, error) {
	if err := sess.Check(); err != nil {
		return nil, err
	}
	if err := filter.Clean(); err != nil {
		return nil, err
	}

	parents := []string{filter.PersonID}
	if filter.PersonID == "" {
		teachers, err := svc.persons.QueryPersons(ctx, sess.AccountID, person.QueryFilter{Kind: person.KindTeacher})
		if err != nil {
			return nil, errors.Wrap(err, "querying teachers")
		}
		parents = make([]string, 0, len(teachers))
		for _, t := range teachers {
			parents = append(parents, t.ID)
		}
	}

	evals := make([]Evaluation, 0)
	for _, personID := range parents {
		found, err := svc.repo.QueryEvaluations(ctx, sess.AccountID, personID)
		if err != nil {
			return nil, errors.Wrap(err, "querying evaluations of "+personID)
		}
		for _, ev := range found {
			if filter.Match(ev, svc.loc) {
				evals = append(evals, ev)
			}
		}
	}

	SortByRecency(evals)
	return evals, nil
}

// SortByRecency sorts evaluations by recording date, most recent first.
func SortByRecency(evals []Evaluation) {
	sort.SliceStable(evals, func(i, j int) bool { return evals[i].Date.After(evals[j].Date) })
}
