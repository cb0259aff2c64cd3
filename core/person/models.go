package person

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/taqyeem/core"
)

// Person is a teacher or a manager owned by one account.
// Date parts are kept unbundled, as entered or imported.
type Person struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"-"`
	Kind             Kind      `json:"kind"`
	ArabicName       string    `json:"arabicName"`
	EnglishName      string    `json:"englishName"`
	Oracle           string    `json:"oracle"`
	JobTitle         string    `json:"jobTitle"`
	Qualification    string    `json:"qualification"`
	Grade            string    `json:"grade"`
	Nationality      string    `json:"nationality"`
	MaritalStatus    string    `json:"maritalStatus"`
	ExperienceYears  string    `json:"experienceYears"`
	BirthDay         string    `json:"birthDay"`
	BirthMonth       string    `json:"birthMonth"`
	BirthYear        string    `json:"birthYear"`
	AppointmentDay   string    `json:"appointmentDay"`
	AppointmentMonth string    `json:"appointmentMonth"`
	AppointmentYear  string    `json:"appointmentYear"`
	NationalID       string    `json:"nationalId"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Emirate          string    `json:"emirate"`
	ResidentialArea  string    `json:"residentialArea"`
	Notes            string    `json:"notes"`
	Group            string    `json:"group"`
	Responsibilities []string  `json:"responsibilities,omitempty"`
	CreatedAt        time.Time `json:"createdAt"` // UTC
}

// BirthDate renders the birth date parts as YYYY-MM-DD.
func (p Person) BirthDate() string {
	return FormatDateParts(atoi(p.BirthDay), atoi(p.BirthMonth), atoi(p.BirthYear))
}

// AppointmentDate renders the appointment date parts as YYYY-MM-DD.
func (p Person) AppointmentDate() string {
	return FormatDateParts(atoi(p.AppointmentDay), atoi(p.AppointmentMonth), atoi(p.AppointmentYear))
}

func (p Person) GroupLabel() string { return GroupLabel(p.Group) }

// NewPerson contains information needed to create a new Person.
type NewPerson struct {
	Kind             Kind   `json:"kind" validate:"required"`
	ArabicName       string `json:"arabicName" validate:"required"`
	EnglishName      string `json:"englishName"`
	Oracle           string `json:"oracle"`
	JobTitle         string `json:"jobTitle"`
	Qualification    string `json:"qualification"`
	Grade            string `json:"grade"`
	Nationality      string `json:"nationality"`
	MaritalStatus    string `json:"maritalStatus"`
	ExperienceYears  string `json:"experienceYears"`
	BirthDay         string `json:"birthDay"`
	BirthMonth       string `json:"birthMonth"`
	BirthYear        string `json:"birthYear"`
	AppointmentDay   string `json:"appointmentDay"`
	AppointmentMonth string `json:"appointmentMonth"`
	AppointmentYear  string `json:"appointmentYear"`
	NationalID       string `json:"nationalId"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Emirate          string `json:"emirate"`
	ResidentialArea  string `json:"residentialArea"`
	Notes            string `json:"notes"`
	Group            string `json:"group" validate:"required"`
}

func (np *NewPerson) Validate(validate *validator.Validate) error {
	np.Kind = Kind(core.CleanString(string(np.Kind), true /* lower */))
	np.ArabicName = core.CleanString(np.ArabicName)
	np.EnglishName = core.CleanString(np.EnglishName)
	np.Group = core.CleanString(np.Group, true /* lower */)
	np.Email = core.CleanString(np.Email, true /* lower */)
	return validate.Struct(np)
}

func (np NewPerson) person(accountID string, now time.Time) Person {
	p := Person{
		AccountID:        accountID,
		Kind:             np.Kind,
		ArabicName:       np.ArabicName,
		EnglishName:      np.EnglishName,
		Oracle:           np.Oracle,
		JobTitle:         np.JobTitle,
		Qualification:    np.Qualification,
		Grade:            np.Grade,
		Nationality:      np.Nationality,
		MaritalStatus:    np.MaritalStatus,
		ExperienceYears:  np.ExperienceYears,
		BirthDay:         np.BirthDay,
		BirthMonth:       np.BirthMonth,
		BirthYear:        np.BirthYear,
		AppointmentDay:   np.AppointmentDay,
		AppointmentMonth: np.AppointmentMonth,
		AppointmentYear:  np.AppointmentYear,
		NationalID:       np.NationalID,
		Email:            np.Email,
		Phone:            np.Phone,
		Emirate:          np.Emirate,
		ResidentialArea:  np.ResidentialArea,
		Notes:            np.Notes,
		Group:            np.Group,
		CreatedAt:        now,
	}
	if np.Kind == KindManager {
		p.Responsibilities = []string{}
	}
	return p
}

type QueryFilter struct {
	Kind  Kind   `query:"kind"`
	Group string `query:"group"`
}

func (qf *QueryFilter) Clean() {
	qf.Kind = Kind(core.CleanString(string(qf.Kind), true /* lower */))
	qf.Group = core.CleanString(qf.Group, true /* lower */)
}

// Match reports whether p satisfies the filter; empty fields match everything.
func (qf QueryFilter) Match(p Person) bool {
	if qf.Kind != "" && p.Kind != qf.Kind {
		return false
	}
	if qf.Group != "" && p.Group != qf.Group {
		return false
	}
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
