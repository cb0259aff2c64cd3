// Package evaluation records teacher evaluations together with their published PDF report.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/report"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("evaluation not found")
	ErrEmptyScores      = errors.New("evaluation scores cannot be empty")
	errUnknownTeacher   = errors.New("unknown teacher")
	errUnknownEvaluator = errors.New("evaluator has no name on record")
)

type (
	Repository interface {
		CreateEvaluation(ctx context.Context, ev Evaluation) (Evaluation, error)
		// GetEvaluation returns ErrNotFound when the evaluation does not exist under the given person.
		GetEvaluation(ctx context.Context, accountID, personID, id string) (Evaluation, error)
		// QueryEvaluations returns the evaluations recorded under a single person.
		QueryEvaluations(ctx context.Context, accountID, personID string) ([]Evaluation, error)
		DeleteEvaluation(ctx context.Context, accountID, personID, id string) error
	}

	Service struct {
		repo      Repository
		persons   person.Repository
		assembler *report.Assembler
		publisher *report.Publisher
		mailSvc   core.EmailService
		validate  *validator.Validate
		logger    core.Logger
		loc       *time.Location
	}

	Deps struct {
		Repo      Repository
		Persons   person.Repository
		Assembler *report.Assembler
		Publisher *report.Publisher
		MailSvc   core.EmailService
		Validate  *validator.Validate
		Logger    core.Logger
		Location  *time.Location
	}
)

func NewService(deps Deps) *Service {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      deps.Repo,
		persons:   deps.Persons,
		assembler: deps.Assembler,
		publisher: deps.Publisher,
		mailSvc:   deps.MailSvc,
		validate:  deps.Validate,
		logger:    deps.Logger,
		loc:       loc,
	}
}

// Save computes the scores, renders and publishes the report, then records the evaluation.
// Nothing is recorded when the report could not be rendered or published.
func (svc *Service) Save(ctx context.Context, sess core.Session, ne NewEvaluation) (Evaluation, error) {
	if err := sess.Check(); err != nil {
		return Evaluation{}, err
	}
	if err := ne.Validate(svc.validate); err != nil {
		return Evaluation{}, err
	}

	teacher, err := svc.persons.GetPerson(ctx, sess.AccountID, person.KindTeacher, ne.PersonID)
	if err != nil {
		if errors.Cause(err) == person.ErrNotFound {
			return Evaluation{}, core.NewValidationError(err, core.FieldError{Field: "teacherId", Error: errUnknownTeacher.Error()})
		}
		return Evaluation{}, errors.Wrap(err, "loading teacher")
	}
	evaluator, err := svc.evaluator(ctx, sess, ne.EvaluatorID)
	if err != nil {
		return Evaluation{}, err
	}

	scores, err := ne.Ratings.Scores()
	if err != nil {
		return Evaluation{}, core.NewValidationError(err, core.FieldError{Field: "ratings", Error: err.Error()})
	}
	if scores.Overall <= 0 {
		return Evaluation{}, core.NewValidationError(ErrEmptyScores, core.FieldError{Field: "ratings", Error: ErrEmptyScores.Error()})
	}

	info := ne.MainInformation
	if info.TeacherName == "" {
		info.TeacherName = teacher.ArabicName
	}
	if info.Oracle == "" {
		info.Oracle = teacher.Oracle
	}
	if info.EvaluatorJobTitle == "" {
		info.EvaluatorJobTitle = evaluator.JobTitle
	}

	doc, err := svc.assembler.Assemble(ne.reportInput(info, evaluator.ArabicName, scores))
	if err != nil {
		return Evaluation{}, errors.Wrap(err, "assembling report")
	}

	now := NowFunc()
	artifact, err := svc.publisher.Publish(ctx, doc, teacher.ID, now)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("publishing report for %s", teacher.ID), err, sess)
		return Evaluation{}, err
	}

	ev, err := svc.repo.CreateEvaluation(ctx, Evaluation{
		AccountID:       sess.AccountID,
		PersonID:        teacher.ID,
		EvaluatorID:     evaluator.ID,
		EvaluatorName:   evaluator.ArabicName,
		MainInformation: info,
		CoreForm:        ne.CoreForm,
		Scores:          scores,
		PDFURL:          artifact.URL,
		PDFKey:          artifact.Key,
		Group:           ne.Group,
		CreatedBy:       sess.Email,
		Date:            now,
		CreatedAt:       now.UTC(),
	})
	if err != nil {
		// the report is already public; keep its key in the logs so it can be cleaned up
		svc.logger.Error(fmt.Sprintf("recording evaluation failed, orphan report %s", artifact.Key), err, sess)
		return Evaluation{}, errors.Wrap(err, "creating evaluation")
	}
	svc.logger.Info(fmt.Sprintf("evaluation %s recorded for %s", ev.ID, teacher.ID), sess)
	return ev, nil
}

func (svc *Service) evaluator(ctx context.Context, sess core.Session, id string) (person.Person, error) {
	mgr, err := svc.persons.GetPerson(ctx, sess.AccountID, person.KindManager, id)
	if err != nil {
		if errors.Cause(err) != person.ErrNotFound {
			return person.Person{}, errors.Wrap(err, "loading evaluator")
		}
	} else if mgr.ArabicName != "" {
		return mgr, nil
	}
	return person.Person{}, core.NewValidationError(errUnknownEvaluator, core.FieldError{Field: "evaluatorId", Error: errUnknownEvaluator.Error()})
}

func (svc *Service) Get(ctx context.Context, sess core.Session, personID, id string) (Evaluation, error) {
	if err := sess.Check(); err != nil {
		return Evaluation{}, err
	}
	return svc.repo.GetEvaluation(ctx, sess.AccountID, personID, id)
}

// Delete removes the evaluation record, then tries to withdraw its report.
func (svc *Service) Delete(ctx context.Context, sess core.Session, personID, id string) error {
	ev, err := svc.Get(ctx, sess, personID, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteEvaluation(ctx, sess.AccountID, personID, id); err != nil {
		return errors.Wrap(err, "deleting evaluation")
	}
	if ev.PDFKey != "" {
		if err := svc.publisher.Withdraw(ctx, ev.PDFKey); err != nil {
			svc.logger.Warn(fmt.Sprintf("withdrawing report %s", ev.PDFKey), err, sess)
		}
	}
	return nil
}
