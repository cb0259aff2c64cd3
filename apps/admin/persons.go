package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/services/spreadsheet"
)

func (cli *commandLine) importPersons(sess core.Session, kind person.Kind, group, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening sheet")
	}
	defer f.Close()

	grid, err := spreadsheet.ReadGrid(f, path)
	if err != nil {
		return err
	}
	report, err := cli.personSvc.Import(context.Background(), sess, kind, group, grid)
	if err != nil {
		return err
	}

	for _, row := range report.Rows {
		if row.Error != "" {
			_, _ = fmt.Fprintf(cli.out, "row %d (%s): %s\n", row.Row, row.Name, row.Error)
		}
	}
	_, _ = fmt.Fprintf(cli.out, "imported %d of %d %ss\n", report.Succeeded, report.Total, kind)
	return nil
}

func (cli *commandLine) exportPersons(sess core.Session, filter person.QueryFilter, path string) error {
	persons, err := cli.personSvc.Query(context.Background(), sess, filter)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	sheet := string(filter.Kind)
	if sheet == "" {
		sheet = "persons"
	}
	if err = spreadsheet.WritePersons(f, sheet, persons); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing sheet")
	}
	_, _ = fmt.Fprintf(cli.out, "exported %d persons to %s\n", len(persons), path)
	return nil
}
