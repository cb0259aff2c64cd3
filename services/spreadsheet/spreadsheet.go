// Package spreadsheet reads person sheets from .xlsx and legacy .xls workbooks and writes them back as .xlsx.
package spreadsheet

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/taqyeem/core/person"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxXLSRows = 100000
)

var (
	ErrNoSheet    = errors.New("no worksheet found")
	ErrEmptySheet = errors.New("worksheet is empty")
)

// ReadGrid returns the cells of the first worksheet. The format is picked from the file extension:
// .xls goes through the BIFF reader, anything else is opened as an OOXML workbook.
func ReadGrid(r io.Reader, filename string) ([][]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading spreadsheet")
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(filename)) == ".xls" {
		rows, err = readXLS(data)
	} else {
		rows, err = readXLSX(data)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return person.StringGrid(rows), nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, errors.Wrap(err, "opening xls workbook")
	}
	if workbook == nil {
		return nil, errors.New("opening xls workbook: no workbook stream")
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoSheet
	}

	width := len(person.HeaderRow)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow) && i < maxXLSRows; i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, []string{})
			continue
		}
		cells := make([]string, width)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, trimTrailing(cells))
	}

	// drop trailing blank rows, like the xlsx reader does
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// xlsRow returns nil for a row that holds no cells: WorkSheet.Row panics on those.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "opening xlsx workbook")
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "reading rows of "+sheet)
	}
	return rows, nil
}

// WritePersons writes persons as an .xlsx workbook in the import layout, header row first,
// so that an export can be edited and imported again.
func WritePersons(w io.Writer, sheet string, persons []person.Person) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return errors.Wrap(err, "naming sheet")
		}
	}
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
		return errors.Wrap(err, "setting sheet direction")
	}

	header := make([]interface{}, len(person.HeaderRow))
	for i, h := range person.HeaderRow {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, p := range persons {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		row := person.GridRow(i+1, p)
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
