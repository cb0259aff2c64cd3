package person

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Grid layout: columns A..V, row 0 is the sheet header.
const (
	GridColumns = 22

	colArabicName       = 1 // B
	colEnglishName      = 2
	colOracle           = 3
	colJobTitle         = 4
	colQualification    = 5
	colGrade            = 6
	colNationality      = 7
	colMaritalStatus    = 8
	colExperienceYears  = 9
	colBirthDay         = 10 // K
	colBirthMonth       = 11
	colBirthYear        = 12
	colAppointmentDay   = 13 // N
	colAppointmentMonth = 14
	colAppointmentYear  = 15
	colNationalID       = 16 // Q
	colEmail            = 17
	colPhone            = 18
	colEmirate          = 19
	colResidentialArea  = 20
	colNotes            = 21 // V
)

// HeaderRow lists the column titles of the import layout, A..V.
var HeaderRow = []string{
	"#", "الاسم بالعربية", "Name (English)", "Oracle", "المسمى الوظيفي", "المؤهل", "الدرجة", "الجنسية",
	"الحالة الاجتماعية", "سنوات الخبرة", "يوم الميلاد", "شهر الميلاد", "سنة الميلاد",
	"يوم التعيين", "شهر التعيين", "سنة التعيين", "رقم الهوية", "البريد الإلكتروني", "الهاتف",
	"الإمارة", "منطقة السكن", "ملاحظات",
}

// DateParts is a day/month/year triple; 0 means unknown.
type DateParts struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (d DateParts) String() string { return FormatDateParts(d.Day, d.Month, d.Year) }

// ImportedPerson is one normalized spreadsheet row.
type ImportedPerson struct {
	Row             int // 0-based grid row it was read from
	ArabicName      string
	EnglishName     string
	Oracle          string
	JobTitle        string
	Qualification   string
	Grade           string
	Nationality     string
	MaritalStatus   string
	ExperienceYears string
	BirthDate       DateParts
	AppointmentDate DateParts
	NationalID      string
	Email           string
	Phone           string
	Emirate         string
	ResidentialArea string
	Notes           string
}

// NewPerson turns the imported row into a creation request for the given kind and group.
func (ip ImportedPerson) NewPerson(kind Kind, group string) NewPerson {
	return NewPerson{
		Kind:             kind,
		ArabicName:       ip.ArabicName,
		EnglishName:      ip.EnglishName,
		Oracle:           ip.Oracle,
		JobTitle:         ip.JobTitle,
		Qualification:    ip.Qualification,
		Grade:            ip.Grade,
		Nationality:      ip.Nationality,
		MaritalStatus:    ip.MaritalStatus,
		ExperienceYears:  ip.ExperienceYears,
		BirthDay:         strconv.Itoa(ip.BirthDate.Day),
		BirthMonth:       strconv.Itoa(ip.BirthDate.Month),
		BirthYear:        strconv.Itoa(ip.BirthDate.Year),
		AppointmentDay:   strconv.Itoa(ip.AppointmentDate.Day),
		AppointmentMonth: strconv.Itoa(ip.AppointmentDate.Month),
		AppointmentYear:  strconv.Itoa(ip.AppointmentDate.Year),
		NationalID:       ip.NationalID,
		Email:            ip.Email,
		Phone:            ip.Phone,
		Emirate:          ip.Emirate,
		ResidentialArea:  ip.ResidentialArea,
		Notes:            ip.Notes,
		Group:            group,
	}
}

// NormalizeGrid converts a raw sheet grid into person rows.
// Row 0 is always dropped. Rows whose Arabic name (column B) is empty are skipped.
// Cells may be strings, numbers or nil; rows may be shorter than the layout.
func NormalizeGrid(grid [][]interface{}) []ImportedPerson {
	out := make([]ImportedPerson, 0, len(grid))
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		cell := func(col int) string {
			if col < len(row) {
				return CellText(row[col])
			}
			return ""
		}

		name := cell(colArabicName)
		if name == "" {
			continue
		}
		out = append(out, ImportedPerson{
			Row:             i,
			ArabicName:      name,
			EnglishName:     cell(colEnglishName),
			Oracle:          cell(colOracle),
			JobTitle:        cell(colJobTitle),
			Qualification:   cell(colQualification),
			Grade:           cell(colGrade),
			Nationality:     cell(colNationality),
			MaritalStatus:   cell(colMaritalStatus),
			ExperienceYears: cell(colExperienceYears),
			BirthDate: DateParts{
				Day:   parseLeadingInt(cell(colBirthDay)),
				Month: parseLeadingInt(cell(colBirthMonth)),
				Year:  parseLeadingInt(cell(colBirthYear)),
			},
			AppointmentDate: DateParts{
				Day:   parseLeadingInt(cell(colAppointmentDay)),
				Month: parseLeadingInt(cell(colAppointmentMonth)),
				Year:  parseLeadingInt(cell(colAppointmentYear)),
			},
			NationalID:      cell(colNationalID),
			Email:           cell(colEmail),
			Phone:           cell(colPhone),
			Emirate:         cell(colEmirate),
			ResidentialArea: cell(colResidentialArea),
			Notes:           cell(colNotes),
		})
	}
	return out
}

// StringGrid lifts a grid of strings, as spreadsheet readers return it, into a cell grid.
func StringGrid(rows [][]string) [][]interface{} {
	grid := make([][]interface{}, len(rows))
	for i, row := range rows {
		grid[i] = make([]interface{}, len(row))
		for j, v := range row {
			grid[i][j] = v
		}
	}
	return grid
}

// CellText coerces a cell value to trimmed text; nil becomes "".
func CellText(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(c)
	case float64:
		return formatFloat(c)
	case float32:
		return formatFloat(float64(c))
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case int32:
		return strconv.FormatInt(int64(c), 10)
	case uint:
		return strconv.FormatUint(uint64(c), 10)
	case uint64:
		return strconv.FormatUint(c, 10)
	case bool:
		return strconv.FormatBool(c)
	case fmt.Stringer:
		return strings.TrimSpace(c.String())
	default:
		return strings.TrimSpace(fmt.Sprint(c))
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseLeadingInt reads the integer prefix of s ("05" -> 5, "1990.0" -> 1990); 0 when there is none.
func parseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// FormatDateParts renders day/month/year as a zero-padded YYYY-MM-DD string.
func FormatDateParts(day, month, year int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// GridRow lays p out as a sheet row in the import layout, numbered n in column A.
// NormalizeGrid reads it back to the same person data.
func GridRow(n int, p Person) []interface{} {
	row := make([]interface{}, GridColumns)
	row[0] = n
	row[colArabicName] = p.ArabicName
	row[colEnglishName] = p.EnglishName
	row[colOracle] = p.Oracle
	row[colJobTitle] = p.JobTitle
	row[colQualification] = p.Qualification
	row[colGrade] = p.Grade
	row[colNationality] = p.Nationality
	row[colMaritalStatus] = p.MaritalStatus
	row[colExperienceYears] = p.ExperienceYears
	row[colBirthDay] = p.BirthDay
	row[colBirthMonth] = p.BirthMonth
	row[colBirthYear] = p.BirthYear
	row[colAppointmentDay] = p.AppointmentDay
	row[colAppointmentMonth] = p.AppointmentMonth
	row[colAppointmentYear] = p.AppointmentYear
	row[colNationalID] = p.NationalID
	row[colEmail] = p.Email
	row[colPhone] = p.Phone
	row[colEmirate] = p.Emirate
	row[colResidentialArea] = p.ResidentialArea
	row[colNotes] = p.Notes
	return row
}
