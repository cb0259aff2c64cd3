package person

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
	ErrNotFound    = errors.New("person not found")
	ErrInvalidKind = errors.New("invalid person kind")
)

type (
	Repository interface {
		CreatePerson(ctx context.Context, p Person) (Person, error)
		// GetPerson returns ErrNotFound when no such person belongs to the account.
		GetPerson(ctx context.Context, accountID string, kind Kind, id string) (Person, error)
		// QueryPersons returns the account's persons matching the filter, in no particular order.
		QueryPersons(ctx context.Context, accountID string, filter QueryFilter) ([]Person, error)
		DeletePerson(ctx context.Context, accountID string, kind Kind, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}

	// RowResult is the outcome of importing one spreadsheet row.
	RowResult struct {
		Row      int    `json:"row"` // 1-based sheet row
		Name     string `json:"name"`
		PersonID string `json:"personId,omitempty"`
		Error    string `json:"error,omitempty"`
	}

	ImportReport struct {
		Total     int         `json:"total"`
		Succeeded int         `json:"succeeded"`
		Rows      []RowResult `json:"rows"`
	}
)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, validate: validate, logger: logger}
}

func (svc *Service) Create(ctx context.Context, sess core.Session, np NewPerson) (Person, error) {
	if err := sess.Check(); err != nil {
		return Person{}, err
	}
	if err := np.Validate(svc.validate); err != nil {
		return Person{}, err
	}
	p, err := svc.repo.CreatePerson(ctx, np.person(sess.AccountID, NowFunc().UTC()))
	if err != nil {
		return Person{}, errors.Wrap(err, "creating person")
	}
	return p, nil
}

// Import writes the normalized rows one by one. A failing row is reported and skipped;
// only a missing session or an invalid kind/group aborts the whole batch.
func (svc *Service) Import(ctx context.Context, sess core.Session, kind Kind, group string, grid [][]interface{}) (ImportReport, error) {
	if err := sess.Check(); err != nil {
		return ImportReport{}, err
	}
	if !kind.IsValid() {
		return ImportReport{}, core.NewValidationError(ErrInvalidKind, core.FieldError{Field: "kind", Error: kindText})
	}
	if !ValidGroup(kind, group) {
		return ImportReport{}, core.NewValidationError(nil, core.FieldError{Field: "group", Error: groupText})
	}

	rows := NormalizeGrid(grid)
	report := ImportReport{Total: len(rows), Rows: make([]RowResult, 0, len(rows))}
	for _, ip := range rows {
		res := RowResult{Row: ip.Row + 1, Name: ip.ArabicName}
		p, err := svc.Create(ctx, sess, ip.NewPerson(kind, group))
		if err != nil {
			res.Error = err.Error()
			svc.logger.Warn(fmt.Sprintf("importing row %d (%s): %v", res.Row, ip.ArabicName, err), err, sess)
		} else {
			res.PersonID = p.ID
			report.Succeeded++
		}
		report.Rows = append(report.Rows, res)
	}
	svc.logger.Info(fmt.Sprintf("imported %d/%d %ss", report.Succeeded, report.Total, kind), sess)
	return report, nil
}

// Query returns the account's persons sorted by Arabic name.
func (svc *Service) Query(ctx context.Context, sess core.Session, filter QueryFilter) ([]Person, error) {
	if err := sess.Check(); err != nil {
		return nil, err
	}
	filter.Clean()
	persons, err := svc.repo.QueryPersons(ctx, sess.AccountID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying persons")
	}
	sort.SliceStable(persons, func(i, j int) bool { return persons[i].ArabicName < persons[j].ArabicName })
	return persons, nil
}

func (svc *Service) Get(ctx context.Context, sess core.Session, kind Kind, id string) (Person, error) {
	if err := sess.Check(); err != nil {
		return Person{}, err
	}
	return svc.repo.GetPerson(ctx, sess.AccountID, kind, id)
}

// Evaluators returns the managers whose job title makes them eligible to evaluate teachers.
func (svc *Service) Evaluators(ctx context.Context, sess core.Session) ([]Person, error) {
	managers, err := svc.Query(ctx, sess, QueryFilter{Kind: KindManager})
	if err != nil {
		return nil, err
	}
	evaluators := make([]Person, 0, len(managers))
	for _, m := range managers {
		if IsEvaluatorTitle(m.JobTitle) {
			evaluators = append(evaluators, m)
		}
	}
	return evaluators, nil
}

func (svc *Service) Delete(ctx context.Context, sess core.Session, kind Kind, id string) error {
	if err := sess.Check(); err != nil {
		return err
	}
	if err := svc.repo.DeletePerson(ctx, sess.AccountID, kind, id); err != nil {
		return errors.Wrap(err, "deleting person")
	}
	return nil
}
