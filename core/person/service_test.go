package person_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	inmemdb "github.com/trezcool/taqyeem/storage/database/inmem"
	testutil "github.com/trezcool/taqyeem/tests"
)

var (
	ctx  = context.Background()
	sess = core.NewSession("acc-1", "supervisor@school.ae")
)

// flakyRepository fails to create persons with the given Arabic names.
type flakyRepository struct {
	person.Repository
	fail map[string]bool
}

func (r flakyRepository) CreatePerson(ctx context.Context, p person.Person) (person.Person, error) {
	if r.fail[p.ArabicName] {
		return person.Person{}, errors.New("write rejected")
	}
	return r.Repository.CreatePerson(ctx, p)
}

func newService(t *testing.T, failing ...string) (*person.Service, person.Repository) {
	t.Helper()
	repo := inmemdb.NewPersonRepository(inmemdb.Open())
	fail := make(map[string]bool)
	for _, name := range failing {
		fail[name] = true
	}
	validate, _ := testutil.Validator()
	return person.NewService(flakyRepository{Repository: repo, fail: fail}, validate, testutil.Logger()), repo
}

func TestService_Create(t *testing.T) {
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.FixedZone("GST", 4*3600))
	person.NowFunc = func() time.Time { return now }
	defer func() { person.NowFunc = time.Now }()

	svc, _ := newService(t)

	tests := []struct {
		name    string
		sess    core.Session
		np      person.NewPerson
		wantErr bool
	}{
		{name: "no session", sess: core.Session{}, np: person.NewPerson{Kind: "teacher", ArabicName: "أحمد", Group: "cycle1"}, wantErr: true},
		{name: "missing name", sess: sess, np: person.NewPerson{Kind: "teacher", ArabicName: "  ", Group: "cycle1"}, wantErr: true},
		{name: "invalid kind", sess: sess, np: person.NewPerson{Kind: "student", ArabicName: "أحمد", Group: "cycle1"}, wantErr: true},
		{name: "group of the other kind", sess: sess, np: person.NewPerson{Kind: "teacher", ArabicName: "أحمد", Group: "finance"}, wantErr: true},
		{name: "teacher", sess: sess, np: person.NewPerson{Kind: " Teacher ", ArabicName: " أحمد ", Group: "CYCLE1", Email: "Ahmed@School.ae"}},
		{name: "manager", sess: sess, np: person.NewPerson{Kind: "manager", ArabicName: "مريم", Group: "academic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Create(ctx, tt.sess, tt.np)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, "acc-1", p.AccountID)
			assert.Equal(t, now.UTC(), p.CreatedAt)
			assert.Equal(t, time.UTC, p.CreatedAt.Location())
			if p.Kind == person.KindManager {
				assert.NotNil(t, p.Responsibilities)
			} else {
				assert.Equal(t, person.KindTeacher, p.Kind)
				assert.Equal(t, "أحمد", p.ArabicName)
				assert.Equal(t, "cycle1", p.Group)
				assert.Equal(t, "ahmed@school.ae", p.Email)
				assert.Nil(t, p.Responsibilities)
			}
		})
	}

	_, err := svc.Create(ctx, core.Session{}, person.NewPerson{})
	assert.Equal(t, core.ErrNoSession, err)
}

func TestService_Import(t *testing.T) {
	svc, repo := newService(t, "سارة")

	grid := [][]interface{}{
		{"#", "الاسم"},
		{1, "أحمد", "Ahmed", nil, "معلم", nil, nil, nil, nil, nil, 5.0, "3", "1990"},
		{2, ""},
		{3, "سارة"},
		{4, "منى"},
	}

	t.Run("invalid kind", func(t *testing.T) {
		_, err := svc.Import(ctx, sess, "student", person.CycleOne, grid)
		assert.True(t, core.IsValidationError(err))
	})
	t.Run("invalid group", func(t *testing.T) {
		_, err := svc.Import(ctx, sess, person.KindTeacher, person.DeptIT, grid)
		assert.True(t, core.IsValidationError(err))
	})
	t.Run("no session", func(t *testing.T) {
		_, err := svc.Import(ctx, core.Session{}, person.KindTeacher, person.CycleOne, grid)
		assert.Equal(t, core.ErrNoSession, err)
	})

	t.Run("partial success", func(t *testing.T) {
		report, err := svc.Import(ctx, sess, person.KindTeacher, person.CycleOne, grid)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Succeeded)
		require.Len(t, report.Rows, 3)

		assert.Equal(t, 2, report.Rows[0].Row)
		assert.NotEmpty(t, report.Rows[0].PersonID)
		assert.Equal(t, "سارة", report.Rows[1].Name)
		assert.Equal(t, 4, report.Rows[1].Row)
		assert.Contains(t, report.Rows[1].Error, "write rejected")
		assert.Empty(t, report.Rows[1].PersonID)

		p, err := repo.GetPerson(ctx, "acc-1", person.KindTeacher, report.Rows[0].PersonID)
		require.NoError(t, err)
		assert.Equal(t, "1990-03-05", p.BirthDate())
		assert.Equal(t, "0000-00-00", p.AppointmentDate())
		assert.Equal(t, person.CycleOne, p.Group)
	})
}

func TestService_Query(t *testing.T) {
	svc, repo := newService(t)
	for _, p := range []person.Person{
		{ArabicName: "يوسف", Group: person.CycleTwo},
		{ArabicName: "باسل", Group: person.CycleOne},
		{ArabicName: "أمل", Group: person.CycleOne},
		{ArabicName: "مدير", Kind: person.KindManager, Group: person.DeptAcademic, JobTitle: "مدير المدرسة"},
		{ArabicName: "محاسب", Kind: person.KindManager, Group: person.DeptFinance, JobTitle: "محاسب"},
	} {
		testutil.CreatePerson(t, repo, "acc-1", p)
	}
	testutil.CreatePerson(t, repo, "acc-2", person.Person{ArabicName: "آخر"})

	names := func(persons []person.Person) []string {
		out := make([]string, len(persons))
		for i, p := range persons {
			out[i] = p.ArabicName
		}
		return out
	}

	tests := []struct {
		name   string
		filter person.QueryFilter
		want   []string
	}{
		{name: "all", want: []string{"أمل", "باسل", "محاسب", "مدير", "يوسف"}},
		{name: "teachers", filter: person.QueryFilter{Kind: "Teacher"}, want: []string{"أمل", "باسل", "يوسف"}},
		{name: "by group", filter: person.QueryFilter{Kind: "teacher", Group: " cycle1 "}, want: []string{"أمل", "باسل"}},
		{name: "nothing", filter: person.QueryFilter{Group: person.CycleKG}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, sess, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("evaluators", func(t *testing.T) {
		got, err := svc.Evaluators(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, []string{"مدير"}, names(got))
	})

	t.Run("no session", func(t *testing.T) {
		_, err := svc.Query(ctx, core.Session{}, person.QueryFilter{})
		assert.Equal(t, core.ErrNoSession, err)
	})
}

func TestService_GetDelete(t *testing.T) {
	svc, repo := newService(t)
	p := testutil.CreatePerson(t, repo, "acc-1", person.Person{ArabicName: "أحمد", Group: person.CycleOne})
	other := testutil.CreatePerson(t, repo, "acc-2", person.Person{ArabicName: "آخر"})

	got, err := svc.Get(ctx, sess, person.KindTeacher, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = svc.Get(ctx, sess, person.KindManager, p.ID)
	assert.Equal(t, person.ErrNotFound, err)
	_, err = svc.Get(ctx, sess, person.KindTeacher, other.ID)
	assert.Equal(t, person.ErrNotFound, err)

	err = svc.Delete(ctx, sess, person.KindTeacher, other.ID)
	assert.Equal(t, person.ErrNotFound, errors.Cause(err))

	require.NoError(t, svc.Delete(ctx, sess, person.KindTeacher, p.ID))
	_, err = svc.Get(ctx, sess, person.KindTeacher, p.ID)
	assert.Equal(t, person.ErrNotFound, err)

	assert.Equal(t, core.ErrNoSession, svc.Delete(ctx, core.Session{}, person.KindTeacher, p.ID))
}
