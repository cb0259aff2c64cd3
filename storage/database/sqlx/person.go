package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/taqyeem/core/person"
)

type personRow struct {
	ID               string      `db:"id"`
	AccountID        string      `db:"account_id"`
	Kind             string      `db:"kind"`
	ArabicName       string      `db:"arabic_name"`
	EnglishName      null.String `db:"english_name"`
	Oracle           null.String `db:"oracle"`
	JobTitle         null.String `db:"job_title"`
	Qualification    null.String `db:"qualification"`
	Grade            null.String `db:"grade"`
	Nationality      null.String `db:"nationality"`
	MaritalStatus    null.String `db:"marital_status"`
	ExperienceYears  null.String `db:"experience_years"`
	BirthDay         null.String `db:"birth_day"`
	BirthMonth       null.String `db:"birth_month"`
	BirthYear        null.String `db:"birth_year"`
	AppointmentDay   null.String `db:"appointment_day"`
	AppointmentMonth null.String `db:"appointment_month"`
	AppointmentYear  null.String `db:"appointment_year"`
	NationalID       null.String `db:"national_id"`
	Email            null.String `db:"email"`
	Phone            null.String `db:"phone"`
	Emirate          null.String `db:"emirate"`
	ResidentialArea  null.String `db:"residential_area"`
	Notes            null.String `db:"notes"`
	Group            string      `db:"group"`
	Responsibilities null.JSON   `db:"responsibilities"`
	CreatedAt        time.Time   `db:"created_at"`
}

const personColumns = `id, account_id, kind, arabic_name, english_name, oracle, job_title, qualification, grade,
	nationality, marital_status, experience_years, birth_day, birth_month, birth_year, appointment_day,
	appointment_month, appointment_year, national_id, email, phone, emirate, residential_area, notes, "group",
	responsibilities, created_at`

type personRepository struct {
	db *sqlx.DB
}

var _ person.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository(db *sqlx.DB) *personRepository {
	return &personRepository{db: db}
}

func (repo personRepository) row(p person.Person) (personRow, error) {
	r := personRow{
		ID:               p.ID,
		AccountID:        p.AccountID,
		Kind:             string(p.Kind),
		ArabicName:       p.ArabicName,
		EnglishName:      nullString(p.EnglishName),
		Oracle:           nullString(p.Oracle),
		JobTitle:         nullString(p.JobTitle),
		Qualification:    nullString(p.Qualification),
		Grade:            nullString(p.Grade),
		Nationality:      nullString(p.Nationality),
		MaritalStatus:    nullString(p.MaritalStatus),
		ExperienceYears:  nullString(p.ExperienceYears),
		BirthDay:         nullString(p.BirthDay),
		BirthMonth:       nullString(p.BirthMonth),
		BirthYear:        nullString(p.BirthYear),
		AppointmentDay:   nullString(p.AppointmentDay),
		AppointmentMonth: nullString(p.AppointmentMonth),
		AppointmentYear:  nullString(p.AppointmentYear),
		NationalID:       nullString(p.NationalID),
		Email:            nullString(p.Email),
		Phone:            nullString(p.Phone),
		Emirate:          nullString(p.Emirate),
		ResidentialArea:  nullString(p.ResidentialArea),
		Notes:            nullString(p.Notes),
		Group:            p.Group,
		CreatedAt:        p.CreatedAt.UTC(),
	}
	if p.Responsibilities != nil {
		resp, err := toJSON(p.Responsibilities)
		if err != nil {
			return personRow{}, err
		}
		r.Responsibilities = resp
	}
	return r, nil
}

func (repo personRepository) person(r personRow) (person.Person, error) {
	p := person.Person{
		ID:               r.ID,
		AccountID:        r.AccountID,
		Kind:             person.Kind(r.Kind),
		ArabicName:       r.ArabicName,
		EnglishName:      r.EnglishName.String,
		Oracle:           r.Oracle.String,
		JobTitle:         r.JobTitle.String,
		Qualification:    r.Qualification.String,
		Grade:            r.Grade.String,
		Nationality:      r.Nationality.String,
		MaritalStatus:    r.MaritalStatus.String,
		ExperienceYears:  r.ExperienceYears.String,
		BirthDay:         r.BirthDay.String,
		BirthMonth:       r.BirthMonth.String,
		BirthYear:        r.BirthYear.String,
		AppointmentDay:   r.AppointmentDay.String,
		AppointmentMonth: r.AppointmentMonth.String,
		AppointmentYear:  r.AppointmentYear.String,
		NationalID:       r.NationalID.String,
		Email:            r.Email.String,
		Phone:            r.Phone.String,
		Emirate:          r.Emirate.String,
		ResidentialArea:  r.ResidentialArea.String,
		Notes:            r.Notes.String,
		Group:            r.Group,
		CreatedAt:        r.CreatedAt.UTC(),
	}
	if err := fromJSON(r.Responsibilities, &p.Responsibilities); err != nil {
		return person.Person{}, errors.Wrap(err, "decoding responsibilities")
	}
	return p, nil
}

func (repo personRepository) CreatePerson(ctx context.Context, p person.Person) (person.Person, error) {
	p.ID = uuid.New().String()
	r, err := repo.row(p)
	if err != nil {
		return person.Person{}, errors.Wrap(err, "encoding person")
	}
	q := `INSERT INTO persons (` + personColumns + `) VALUES (:id, :account_id, :kind, :arabic_name, :english_name,
		:oracle, :job_title, :qualification, :grade, :nationality, :marital_status, :experience_years, :birth_day,
		:birth_month, :birth_year, :appointment_day, :appointment_month, :appointment_year, :national_id, :email,
		:phone, :emirate, :residential_area, :notes, :group, :responsibilities, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, r); err != nil {
		return person.Person{}, errors.Wrap(err, "inserting person")
	}
	return p, nil
}

func (repo personRepository) GetPerson(ctx context.Context, accountID string, kind person.Kind, id string) (person.Person, error) {
	if _, err := uuid.Parse(id); err != nil {
		return person.Person{}, person.ErrNotFound
	}
	var r personRow
	q := `SELECT ` + personColumns + ` FROM persons WHERE id = $1 AND account_id = $2 AND kind = $3`
	if err := repo.db.GetContext(ctx, &r, q, id, accountID, string(kind)); err != nil {
		return person.Person{}, trapNoRowsErr(err, person.ErrNotFound, "selecting person")
	}
	return repo.person(r)
}

func (repo personRepository) QueryPersons(ctx context.Context, accountID string, filter person.QueryFilter) ([]person.Person, error) {
	q := `SELECT ` + personColumns + ` FROM persons WHERE account_id = $1`
	args := []interface{}{accountID}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		q += ` AND kind = $2`
	}
	var rows []personRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting persons")
	}

	persons := make([]person.Person, 0, len(rows))
	for _, r := range rows {
		p, err := repo.person(r)
		if err != nil {
			return nil, err
		}
		if filter.Match(p) {
			persons = append(persons, p)
		}
	}
	return persons, nil
}

func (repo personRepository) DeletePerson(ctx context.Context, accountID string, kind person.Kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return person.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1 AND account_id = $2 AND kind = $3`, id, accountID, string(kind))
	if err != nil {
		return errors.Wrap(err, "deleting person")
	}
	return checkAffected(res, person.ErrNotFound, "deleting person")
}
