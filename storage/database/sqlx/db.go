// Package sqlxrepos stores records in PostgreSQL.
package sqlxrepos

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// Wrap returns the sqlx handle of an opened database.
func Wrap(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func toJSON(v interface{}) (null.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return null.JSON{}, err
	}
	return null.JSONFrom(b), nil
}

// fromJSON leaves dest untouched when the column is NULL; keys missing from the document keep their zero value.
func fromJSON(j null.JSON, dest interface{}) error {
	if !j.Valid || len(j.JSON) == 0 || string(j.JSON) == "null" {
		return nil
	}
	return json.Unmarshal(j.JSON, dest)
}

// checkAffected returns notFound when a statement touched no rows.
func checkAffected(res sql.Result, notFound error, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
