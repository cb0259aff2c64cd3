package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/visit"
	"github.com/trezcool/taqyeem/storage/database"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	listenerPingInterval = 90 * time.Second
)

type (
	visitRow struct {
		ID            string      `db:"id"`
		AccountID     string      `db:"account_id"`
		Kind          string      `db:"kind"`
		PersonID      null.String `db:"person_id"`
		EvaluatorName null.String `db:"evaluator_name"`
		Details       null.JSON   `db:"details"`
		Extra         null.JSON   `db:"extra"`
		CreatedBy     null.String `db:"created_by"`
		Date          time.Time   `db:"date"`
	}

	// visitDetails is the document stored in the details column.
	visitDetails struct {
		NonClass *visit.NonClass `json:"nonClass,omitempty"`
		Class    *visit.Class    `json:"class,omitempty"`
	}
)

const visitColumns = `id, account_id, kind, person_id, evaluator_name, details, extra, created_by, date`

type visitRepository struct {
	db     *sqlx.DB
	dsn    string
	logger core.Logger
}

var _ visit.Repository = (*visitRepository)(nil) // interface compliance check

// NewVisitRepository needs the connection string to open LISTEN connections for subscribers.
func NewVisitRepository(db *sqlx.DB, dsn string, logger core.Logger) *visitRepository {
	return &visitRepository{db: db, dsn: dsn, logger: logger}
}

func (repo visitRepository) row(v visit.Visit) (visitRow, error) {
	r := visitRow{
		ID:            v.ID,
		AccountID:     v.AccountID,
		Kind:          string(v.Kind),
		PersonID:      nullString(v.PersonID),
		EvaluatorName: nullString(v.EvaluatorName),
		CreatedBy:     nullString(v.CreatedBy),
		Date:          v.Date.UTC(),
	}
	var err error
	if r.Details, err = toJSON(visitDetails{NonClass: v.NonClass, Class: v.Class}); err != nil {
		return visitRow{}, err
	}
	if len(v.Extra) > 0 {
		if r.Extra, err = toJSON(v.Extra); err != nil {
			return visitRow{}, err
		}
	}
	return r, nil
}

func (repo visitRepository) visit(r visitRow) (visit.Visit, error) {
	v := visit.Visit{
		ID:            r.ID,
		AccountID:     r.AccountID,
		Kind:          visit.Kind(r.Kind),
		PersonID:      r.PersonID.String,
		EvaluatorName: r.EvaluatorName.String,
		CreatedBy:     r.CreatedBy.String,
		Date:          r.Date.UTC(),
	}
	var details visitDetails
	if err := fromJSON(r.Details, &details); err != nil {
		return visit.Visit{}, errors.Wrap(err, "decoding visit details")
	}
	v.NonClass, v.Class = details.NonClass, details.Class
	if err := fromJSON(r.Extra, &v.Extra); err != nil {
		return visit.Visit{}, errors.Wrap(err, "decoding visit extra fields")
	}
	return v, nil
}

func (repo visitRepository) CreateVisit(ctx context.Context, v visit.Visit) (visit.Visit, error) {
	v.ID = uuid.New().String()
	r, err := repo.row(v)
	if err != nil {
		return visit.Visit{}, errors.Wrap(err, "encoding visit")
	}
	q := `INSERT INTO visits (` + visitColumns + `) VALUES (:id, :account_id, :kind, :person_id, :evaluator_name,
		:details, :extra, :created_by, :date)`
	if _, err := repo.db.NamedExecContext(ctx, q, r); err != nil {
		return visit.Visit{}, errors.Wrap(err, "inserting visit")
	}
	return v, nil
}

func (repo visitRepository) GetVisit(ctx context.Context, accountID, id string) (visit.Visit, error) {
	if !validUUIDs(id) {
		return visit.Visit{}, visit.ErrNotFound
	}
	var r visitRow
	q := `SELECT ` + visitColumns + ` FROM visits WHERE id = $1 AND account_id = $2`
	if err := repo.db.GetContext(ctx, &r, q, id, accountID); err != nil {
		return visit.Visit{}, trapNoRowsErr(err, visit.ErrNotFound, "selecting visit")
	}
	return repo.visit(r)
}

func (repo visitRepository) QueryVisits(ctx context.Context, accountID string) ([]visit.Visit, error) {
	var rows []visitRow
	q := `SELECT ` + visitColumns + ` FROM visits WHERE account_id = $1`
	if err := repo.db.SelectContext(ctx, &rows, q, accountID); err != nil {
		return nil, errors.Wrap(err, "selecting visits")
	}

	visits := make([]visit.Visit, 0, len(rows))
	for _, r := range rows {
		v, err := repo.visit(r)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, nil
}

func (repo visitRepository) DeleteVisit(ctx context.Context, accountID, id string) error {
	if !validUUIDs(id) {
		return visit.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM visits WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return errors.Wrap(err, "deleting visit")
	}
	return checkAffected(res, visit.ErrNotFound, "deleting visit")
}

// Subscribe listens to the visits channel; the table trigger sends the account id as payload.
func (repo visitRepository) Subscribe(ctx context.Context, accountID string) (<-chan struct{}, error) {
	listener := pq.NewListener(repo.dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			repo.logger.Warn(fmt.Sprintf("visits listener event %d: %v", ev, err), err)
		}
	})
	if err := listener.Listen(database.VisitsChannel); err != nil {
		_ = listener.Close()
		return nil, errors.Wrap(err, "listening to visits changes")
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer func() { _ = listener.Close() }()

		ticker := time.NewTicker(listenerPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				// a nil notification follows a reconnection, after which anything may have changed
				if n != nil && n.Extra != accountID {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case <-ticker.C:
				go func() { _ = listener.Ping() }()
			}
		}
	}()
	return changes, nil
}
