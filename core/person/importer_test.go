package person

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridRow(cells map[int]interface{}) []interface{} {
	row := make([]interface{}, GridColumns)
	for col, v := range cells {
		row[col] = v
	}
	return row
}

func TestNormalizeGrid(t *testing.T) {
	header := gridRow(map[int]interface{}{colArabicName: "الاسم"})

	tests := []struct {
		name string
		grid [][]interface{}
		want []ImportedPerson
	}{
		{name: "empty grid", grid: nil, want: []ImportedPerson{}},
		{name: "header only", grid: [][]interface{}{header}, want: []ImportedPerson{}},
		{
			name: "one full row",
			grid: [][]interface{}{
				header,
				gridRow(map[int]interface{}{
					0: 1, colArabicName: "أحمد", colEnglishName: "Ahmed", colOracle: 123456.0, colJobTitle: "معلم",
					colBirthDay: 5.0, colBirthMonth: "3", colBirthYear: "1990",
					colAppointmentDay: "x", colAppointmentMonth: "", colAppointmentYear: 2015,
					colEmail: " ahmed@school.ae ", colNotes: "ok",
				}),
			},
			want: []ImportedPerson{{
				Row: 1, ArabicName: "أحمد", EnglishName: "Ahmed", Oracle: "123456", JobTitle: "معلم",
				BirthDate:       DateParts{Day: 5, Month: 3, Year: 1990},
				AppointmentDate: DateParts{Year: 2015},
				Email:           "ahmed@school.ae", Notes: "ok",
			}},
		},
		{
			name: "empty name",
			grid: [][]interface{}{header, gridRow(map[int]interface{}{colEnglishName: "Nobody", colBirthDay: "1"})},
			want: []ImportedPerson{},
		},
		{
			name: "blank name and short rows",
			grid: [][]interface{}{
				header,
				{nil, "   "},
				{nil, "سارة"},
				{},
				{nil, "منى", "Mona"},
			},
			want: []ImportedPerson{
				{Row: 2, ArabicName: "سارة"},
				{Row: 4, ArabicName: "منى", EnglishName: "Mona"},
			},
		},
		{
			name: "row 0 is dropped even with a name",
			grid: [][]interface{}{gridRow(map[int]interface{}{colArabicName: "خالد"})},
			want: []ImportedPerson{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeGrid(tt.grid)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeGrid(tt.grid), "idempotent")
		})
	}
}

func TestNormalizeGrid_order(t *testing.T) {
	names := []string{"ي", "ب", "أ", "م"}
	grid := [][]interface{}{{}}
	for _, n := range names {
		grid = append(grid, []interface{}{nil, n})
	}
	got := NormalizeGrid(grid)
	require.Len(t, got, len(names))
	for i, ip := range got {
		assert.Equal(t, names[i], ip.ArabicName)
		assert.Equal(t, i+1, ip.Row)
	}
}

func TestGridRow(t *testing.T) {
	p := Person{
		ArabicName: "أحمد علي", EnglishName: "Ahmed Ali", Oracle: "1001", JobTitle: "معلم", Qualification: "بكالوريوس",
		BirthDay: "5", BirthMonth: "3", BirthYear: "1990", AppointmentDay: "1", AppointmentMonth: "9", AppointmentYear: "2015",
		NationalID: "784", Email: "a@school.ae", Phone: "050", Emirate: "دبي", ResidentialArea: "الورقاء", Notes: "n",
	}
	got := NormalizeGrid([][]interface{}{{}, GridRow(1, p)})
	require.Len(t, got, 1)

	np := got[0].NewPerson(KindTeacher, CycleOne)
	back := np.person("acc", p.CreatedAt)
	back.AccountID = ""
	back.Kind = ""
	back.Group = ""
	assert.Equal(t, p, back)
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"  x ", "x"},
		{5.0, "5"},
		{1990.5, "1990.5"},
		{float32(2), "2"},
		{42, "42"},
		{int64(7), "7"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CellText(tt.in), "%#v", tt.in)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := map[string]int{"": 0, "05": 5, "1990.0": 1990, " 12 ": 12, "abc": 0, "-3": -3, "7th": 7}
	for in, want := range tests {
		assert.Equal(t, want, parseLeadingInt(in), in)
	}
}

func TestFormatDateParts(t *testing.T) {
	assert.Equal(t, "1990-03-05", FormatDateParts(5, 3, 1990))
	assert.Equal(t, "0000-00-00", FormatDateParts(0, 0, 0))
	assert.Equal(t, "1990-03-05", DateParts{Day: 5, Month: 3, Year: 1990}.String())
	assert.Equal(t, "1990-03-05", Person{BirthDay: "5", BirthMonth: "3", BirthYear: "1990"}.BirthDate())
}

func TestGroupLabel(t *testing.T) {
	assert.Equal(t, "الحلقة الثانية", GroupLabel(CycleTwo))
	assert.Equal(t, UnsetGroupLabel, GroupLabel("  "))
	assert.Equal(t, "custom", GroupLabel("custom"))
	assert.True(t, ValidGroup(KindManager, DeptIT))
	assert.False(t, ValidGroup(KindTeacher, DeptIT))
	assert.True(t, IsEvaluatorTitle("مدير المدرسة"))
	assert.False(t, IsEvaluatorTitle("معلم"))
}
