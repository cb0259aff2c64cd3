package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/rubric"
	testutil "github.com/trezcool/taqyeem/tests"
)

var fixedNow = time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

func newTestAssembler(t *testing.T, opts ...Option) *Assembler {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	a, err := NewAssembler(core.ReportConfig{}, time.UTC, testutil.Logger(), opts...)
	require.NoError(t, err)
	return a
}

func TestAssembler_Layout(t *testing.T) {
	a := newTestAssembler(t)

	t.Run("blank information", func(t *testing.T) {
		l := a.Layout(Input{TeacherName: "Ahmed", Date: "2024-03-11"})
		for key, want := range map[string]string{
			KeySchool:    Unspecified,
			KeyTeacher:   "Ahmed",
			KeyDate:      "2024-03-11",
			KeyOracle:    Unspecified,
			KeyEvaluator: Unspecified,
			KeyGroup:     person.UnsetGroupLabel,
		} {
			got, ok := l.Value(key)
			assert.True(t, ok, key)
			assert.Equal(t, want, got, key)
		}
		_, ok := l.Value(KeyOverall)
		assert.False(t, ok)
		assert.Empty(t, l.Scores)
		assert.Equal(t, "تاريخ الإنشاء: ١ رمضان ١٤٤٥ هـ", l.FooterAr)
		assert.Equal(t, "Creation Date: 3/11/2024", l.FooterEn)
	})

	t.Run("feedback and scores", func(t *testing.T) {
		scores := rubric.Scores{Planning: 22, Assessment: 4, Overall: 26}
		l := a.Layout(Input{
			Group:    person.CycleTwo,
			Feedback: Feedback{Strengths: "clear goals", Improvements: "", TeacherFeedback: "thanks"},
			Scores:   &scores,
		})
		v, _ := l.Value(KeyStrengths)
		assert.Equal(t, "clear goals", v)
		v, _ = l.Value(KeyImprovements)
		assert.Equal(t, "", v)
		v, _ = l.Value(KeyGroup)
		assert.Equal(t, "الحلقة الثانية", v)

		require.Len(t, l.Scores, len(rubric.Categories)+2)
		v, _ = l.Value(string(rubric.Planning))
		assert.Equal(t, "22 / 25", v)
		v, _ = l.Value(KeyOverall)
		assert.Equal(t, "26 / 150", v)
		v, _ = l.Value(KeyFourPoint)
		assert.Equal(t, "0.69 / 4", v)
	})
}

func TestAssembler_Assemble(t *testing.T) {
	a := newTestAssembler(t)

	t.Run("short report", func(t *testing.T) {
		doc, err := a.Assemble(Input{
			SchoolName:  "Al Noor School",
			TeacherName: "Ahmed Ali",
			Feedback:    Feedback{Strengths: "well prepared lesson plan"},
		})
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(doc.Bytes(), []byte("%PDF")))
		assert.Equal(t, len(doc.Bytes()), doc.Size())
		assert.Equal(t, 1, doc.PageCount())
		assert.Equal(t, "well prepared lesson plan", doc.RenderedText(KeyStrengths))
		assert.Equal(t, []string{""}, doc.RenderedLines(KeyImprovements))

		var buf bytes.Buffer
		_, err = buf.ReadFrom(doc.Reader())
		require.NoError(t, err)
		assert.Equal(t, doc.Bytes(), buf.Bytes())
	})

	t.Run("long feedback flows onto more pages", func(t *testing.T) {
		long := strings.TrimSpace(strings.Repeat("the lesson objectives were shared with students ", 400))
		scores := rubric.Scores{Planning: 25, Overall: 25}
		doc, err := a.Assemble(Input{
			TeacherName: "Ahmed Ali",
			Feedback:    Feedback{Strengths: long, TeacherFeedback: "ok"},
			Scores:      &scores,
		})
		require.NoError(t, err)
		assert.Greater(t, doc.PageCount(), 1)
		assert.Greater(t, len(doc.RenderedLines(KeyStrengths)), 1)
		assert.Equal(t, long, doc.RenderedText(KeyStrengths), "no text is lost or duplicated")
		assert.Equal(t, "25 / 150", doc.RenderedText(KeyOverall))
	})

	t.Run("paragraph breaks are kept", func(t *testing.T) {
		doc, err := a.Assemble(Input{Feedback: Feedback{Improvements: "first\n\nsecond   line"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "", "second   line"}, doc.RenderedLines(KeyImprovements))
		assert.Equal(t, "first\n\nsecond   line", doc.RenderedText(KeyImprovements))
	})

	t.Run("read back is exact", func(t *testing.T) {
		token := strings.Repeat("x", 200)
		multi := "line one\nline two\r\n\n  indented  line \nlast "
		long := strings.TrimSpace(strings.Repeat("observed  group work, ", 60))
		doc, err := a.Assemble(Input{Feedback: Feedback{Strengths: token, Improvements: multi, TeacherFeedback: long}})
		require.NoError(t, err)

		lines := doc.RenderedLines(KeyStrengths)
		assert.Greater(t, len(lines), 1, "a word wider than the cell is cut")
		for _, l := range lines {
			assert.NotContains(t, l, " ")
		}
		assert.Equal(t, token, doc.RenderedText(KeyStrengths))
		assert.Equal(t, multi, doc.RenderedText(KeyImprovements))
		assert.Equal(t, []string{"line one", "line two", "", "  indented  line ", "last "}, doc.RenderedLines(KeyImprovements))
		assert.Greater(t, len(doc.RenderedLines(KeyTeacherFeedback)), 1)
		assert.Equal(t, long, doc.RenderedText(KeyTeacherFeedback))
	})
}

func TestAssembler_shaping(t *testing.T) {
	var shaped []string
	a := newTestAssembler(t, WithShaper(func(s string) string {
		shaped = append(shaped, s)
		return ArabicShaper(s)
	}))

	strengths := strings.TrimSpace(strings.Repeat("خطة الدرس واضحة والأهداف محددة ", 30))
	scores := rubric.Scores{Planning: 20, Overall: 20}
	in := Input{
		SchoolName:    "مدرسة النور",
		TeacherName:   "أحمد علي",
		Date:          "2024-03-11",
		Oracle:        "1001",
		EvaluatorName: "مريم",
		Group:         person.CycleTwo,
		Feedback:      Feedback{Strengths: strengths, Improvements: "إدارة الوقت"},
		Scores:        &scores,
	}
	doc, err := a.Assemble(in)
	require.NoError(t, err)

	l := doc.Layout
	drawn := []string{l.TitleAr, l.FooterAr}
	for _, f := range append(append([]Field(nil), l.Info...), l.Evaluator...) {
		drawn = append(drawn, f.Label+" "+f.Value)
	}
	drawn = append(drawn, doc.RenderedLines(KeyStrengths)...)
	for _, s := range drawn {
		assert.Contains(t, shaped, s)
	}

	assert.Greater(t, len(doc.RenderedLines(KeyStrengths)), 1, "shaped text is measured when wrapping")
	assert.Equal(t, strengths, doc.RenderedText(KeyStrengths))
	assert.Equal(t, "اسم المعلم: أحمد علي", doc.RenderedText(KeyTeacher))
}

func TestNewAssembler(t *testing.T) {
	t.Run("embedded fonts by default", func(t *testing.T) {
		a, err := NewAssembler(core.ReportConfig{LogoPath: "/nonexistent/logo.png"}, nil, testutil.Logger())
		require.NoError(t, err)
		assert.Equal(t, defaultRegular, a.regular)
		assert.Equal(t, defaultBold, a.bold)
		assert.Nil(t, a.logo, "a missing logo is skipped")
		assert.Equal(t, time.Local, a.loc)

		doc, err := a.Assemble(Input{TeacherName: "أحمد"})
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(doc.Bytes(), []byte("%PDF")))
	})

	t.Run("default configuration shapes Arabic", func(t *testing.T) {
		conf := core.NewConfig()
		calls := 0
		a, err := NewAssembler(conf.Report, conf.Location, testutil.Logger(), WithShaper(func(s string) string {
			calls++
			return ArabicShaper(s)
		}))
		require.NoError(t, err)
		assert.Equal(t, defaultRegular, a.regular)

		_, err = a.Assemble(Input{TeacherName: "أحمد"})
		require.NoError(t, err)
		assert.Greater(t, calls, 0)
	})

	t.Run("configured font", func(t *testing.T) {
		a, err := NewAssembler(core.ReportConfig{FontPath: "fonts/DejaVuSansCondensed-Bold.ttf"}, time.UTC, testutil.Logger())
		require.NoError(t, err)
		assert.Equal(t, defaultBold, a.regular)
		assert.Nil(t, a.bold)

		_, err = a.Assemble(Input{TeacherName: "أحمد"})
		assert.NoError(t, err)
	})

	tests := []struct {
		name string
		conf core.ReportConfig
		opts []Option
	}{
		{name: "missing font file", conf: core.ReportConfig{FontPath: "/nonexistent/font.ttf"}},
		{name: "missing bold font file", conf: core.ReportConfig{BoldFontPath: "/nonexistent/bold.ttf"}},
		{name: "not a font", opts: []Option{WithFonts([]byte("not a font"), nil)}},
		{name: "bad bold font", opts: []Option{WithFonts(defaultRegular, []byte("not a font"))}},
		{name: "no font", opts: []Option{WithFonts(nil, nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAssembler(tt.conf, time.UTC, testutil.Logger(), tt.opts...)
			assert.Error(t, err)
			assert.Nil(t, a)
		})
	}

	_, err := NewAssembler(core.ReportConfig{}, time.UTC, testutil.Logger(), WithFonts(nil, nil))
	assert.Equal(t, ErrNoFont, errors.Cause(err))
}
