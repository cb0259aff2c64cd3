package spreadsheet

import (
	"bytes"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/taqyeem/core/person"
)

func TestWritePersons_roundTrip(t *testing.T) {
	persons := []person.Person{
		{ArabicName: "أحمد علي", EnglishName: "Ahmed Ali", Oracle: "1001", BirthDay: "5", BirthMonth: "3", BirthYear: "1990", Email: "ahmed@school.ae"},
		{ArabicName: "سارة", Notes: "part-time"},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePersons(&buf, "teachers", persons))

	grid, err := ReadGrid(bytes.NewReader(buf.Bytes()), "teachers.xlsx")
	require.NoError(t, err)
	require.Len(t, grid, 3)
	assert.Equal(t, person.HeaderRow[1], person.CellText(grid[0][1]))

	rows := person.NormalizeGrid(grid)
	require.Len(t, rows, 2)
	assert.Equal(t, "أحمد علي", rows[0].ArabicName)
	assert.Equal(t, "Ahmed Ali", rows[0].EnglishName)
	assert.Equal(t, "1001", rows[0].Oracle)
	assert.Equal(t, person.DateParts{Day: 5, Month: 3, Year: 1990}, rows[0].BirthDate)
	assert.Equal(t, "ahmed@school.ae", rows[0].Email)
	assert.Equal(t, "سارة", rows[1].ArabicName)
	assert.Equal(t, "part-time", rows[1].Notes)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, "teachers", f.GetSheetName(0))
}

func TestReadGrid_xlsFirstSheetOnly(t *testing.T) {
	f, err := os.Open("testdata/two_sheets.xls")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	grid, err := ReadGrid(f, "two_sheets.xls")
	require.NoError(t, err)
	require.Len(t, grid, 5)
	assert.Equal(t, "الاسم بالعربية", person.CellText(grid[0][1]))
	assert.Empty(t, grid[3], "row without cells")

	rows := person.NormalizeGrid(grid)
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.ArabicName
	}
	assert.Equal(t, []string{"أحمد علي", "سارة", "خالد"}, names)
	assert.Equal(t, "Ahmed Ali", rows[0].EnglishName)
}

func TestReadGrid_errors(t *testing.T) {
	_, err := ReadGrid(bytes.NewReader([]byte("not a workbook")), "people.xlsx")
	assert.Error(t, err)

	empty := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, empty.Write(&buf))
	_, err = ReadGrid(&buf, "empty.xlsx")
	assert.Equal(t, ErrEmptySheet, errors.Cause(err))
}
