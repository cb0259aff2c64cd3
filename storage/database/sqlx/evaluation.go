package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/taqyeem/core/evaluation"
	"github.com/trezcool/taqyeem/core/rubric"
)

type evaluationRow struct {
	ID              string      `db:"id"`
	AccountID       string      `db:"account_id"`
	PersonID        string      `db:"person_id"`
	EvaluatorID     null.String `db:"evaluator_id"`
	EvaluatorName   null.String `db:"evaluator_name"`
	MainInformation null.JSON   `db:"main_information"`
	CoreForm        null.JSON   `db:"core_form"`
	Scores          null.JSON   `db:"scores"`
	PDFURL          string      `db:"pdf_url"`
	PDFKey          null.String `db:"pdf_key"`
	Group           null.String `db:"group"`
	CreatedBy       null.String `db:"created_by"`
	Date            time.Time   `db:"date"`
	CreatedAt       time.Time   `db:"created_at"`
}

const evaluationColumns = `id, account_id, person_id, evaluator_id, evaluator_name, main_information, core_form,
	scores, pdf_url, pdf_key, "group", created_by, date, created_at`

type evaluationRepository struct {
	db *sqlx.DB
}

var _ evaluation.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *sqlx.DB) *evaluationRepository {
	return &evaluationRepository{db: db}
}

func (repo evaluationRepository) row(ev evaluation.Evaluation) (evaluationRow, error) {
	r := evaluationRow{
		ID:            ev.ID,
		AccountID:     ev.AccountID,
		PersonID:      ev.PersonID,
		EvaluatorID:   nullString(ev.EvaluatorID),
		EvaluatorName: nullString(ev.EvaluatorName),
		PDFURL:        ev.PDFURL,
		PDFKey:        nullString(ev.PDFKey),
		Group:         nullString(ev.Group),
		CreatedBy:     nullString(ev.CreatedBy),
		Date:          ev.Date.UTC(),
		CreatedAt:     ev.CreatedAt.UTC(),
	}
	var err error
	if r.MainInformation, err = toJSON(ev.MainInformation); err != nil {
		return evaluationRow{}, err
	}
	if r.CoreForm, err = toJSON(ev.CoreForm); err != nil {
		return evaluationRow{}, err
	}
	if r.Scores, err = toJSON(ev.Scores); err != nil {
		return evaluationRow{}, err
	}
	return r, nil
}

func (repo evaluationRepository) evaluation(r evaluationRow) (evaluation.Evaluation, error) {
	ev := evaluation.Evaluation{
		ID:            r.ID,
		AccountID:     r.AccountID,
		PersonID:      r.PersonID,
		EvaluatorID:   r.EvaluatorID.String,
		EvaluatorName: r.EvaluatorName.String,
		PDFURL:        r.PDFURL,
		PDFKey:        r.PDFKey.String,
		Group:         r.Group.String,
		CreatedBy:     r.CreatedBy.String,
		Date:          r.Date.UTC(),
		CreatedAt:     r.CreatedAt.UTC(),
	}
	if err := fromJSON(r.MainInformation, &ev.MainInformation); err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "decoding main information")
	}
	if err := fromJSON(r.CoreForm, &ev.CoreForm); err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "decoding core form")
	}
	scores, err := decodeScores(r.Scores)
	if err != nil {
		return evaluation.Evaluation{}, err
	}
	ev.Scores = scores
	return ev, nil
}

// decodeScores reads a stored scores document; absent sub-scores are zero.
func decodeScores(j null.JSON) (rubric.Scores, error) {
	var s rubric.Scores
	if err := fromJSON(j, &s); err != nil {
		return rubric.Scores{}, errors.Wrap(err, "decoding scores")
	}
	return s, nil
}

func (repo evaluationRepository) CreateEvaluation(ctx context.Context, ev evaluation.Evaluation) (evaluation.Evaluation, error) {
	ev.ID = uuid.New().String()
	r, err := repo.row(ev)
	if err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "encoding evaluation")
	}
	q := `INSERT INTO evaluations (` + evaluationColumns + `) VALUES (:id, :account_id, :person_id, :evaluator_id,
		:evaluator_name, :main_information, :core_form, :scores, :pdf_url, :pdf_key, :group, :created_by, :date,
		:created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, r); err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "inserting evaluation")
	}
	return ev, nil
}

func (repo evaluationRepository) GetEvaluation(ctx context.Context, accountID, personID, id string) (evaluation.Evaluation, error) {
	if !validUUIDs(personID, id) {
		return evaluation.Evaluation{}, evaluation.ErrNotFound
	}
	var r evaluationRow
	q := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1 AND account_id = $2 AND person_id = $3`
	if err := repo.db.GetContext(ctx, &r, q, id, accountID, personID); err != nil {
		return evaluation.Evaluation{}, trapNoRowsErr(err, evaluation.ErrNotFound, "selecting evaluation")
	}
	return repo.evaluation(r)
}

func (repo evaluationRepository) QueryEvaluations(ctx context.Context, accountID, personID string) ([]evaluation.Evaluation, error) {
	if !validUUIDs(personID) {
		return []evaluation.Evaluation{}, nil
	}
	var rows []evaluationRow
	q := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE account_id = $1 AND person_id = $2`
	if err := repo.db.SelectContext(ctx, &rows, q, accountID, personID); err != nil {
		return nil, errors.Wrap(err, "selecting evaluations")
	}

	evals := make([]evaluation.Evaluation, 0, len(rows))
	for _, r := range rows {
		ev, err := repo.evaluation(r)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	return evals, nil
}

func (repo evaluationRepository) DeleteEvaluation(ctx context.Context, accountID, personID, id string) error {
	if !validUUIDs(personID, id) {
		return evaluation.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM evaluations WHERE id = $1 AND account_id = $2 AND person_id = $3`, id, accountID, personID)
	if err != nil {
		return errors.Wrap(err, "deleting evaluation")
	}
	return checkAffected(res, evaluation.ErrNotFound, "deleting evaluation")
}

func validUUIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
