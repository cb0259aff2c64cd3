// Package report assembles evaluation reports as PDF documents and publishes them to object storage.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/rubric"
)

const (
	fontFamily = "Body"
	logoName   = "logo"

	titleAr = "تقرير تقييم المعلم"
	titleEn = "Teacher Evaluation Report"
)

//go:embed fonts/DejaVuSansCondensed.ttf
var defaultRegular []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var defaultBold []byte

var (
	ErrNoFont = errors.New("no UTF-8 font")

	bannerColor = [3]int{0, 102, 204}
	panelColor  = [3]int{243, 246, 251}
	rowColor    = [3]int{250, 251, 253}
)

type (
	// Feedback is the free-text part of an evaluation.
	Feedback struct {
		Strengths       string
		Improvements    string
		TeacherFeedback string
	}

	// Input is everything a report is made of.
	Input struct {
		SchoolName    string
		TeacherName   string
		Date          string
		Oracle        string
		EvaluatorName string
		Group         string
		Feedback      Feedback
		Scores        *rubric.Scores // optional
	}

	Assembler struct {
		regular  []byte
		bold     []byte
		logo     []byte
		logoType string
		shape    Shaper
		loc      *time.Location
		nowFunc  func() time.Time
	}

	Option func(*Assembler)
)

// WithShaper replaces the Arabic shaper.
func WithShaper(s Shaper) Option { return func(a *Assembler) { a.shape = s } }

// WithClock replaces the clock used for the generation date.
func WithClock(now func() time.Time) Option { return func(a *Assembler) { a.nowFunc = now } }

// WithFonts sets the UTF-8 TrueType fonts; bold may be nil.
func WithFonts(regular, bold []byte) Option {
	return func(a *Assembler) { a.regular, a.bold = regular, bold }
}

// NewAssembler loads the configured fonts and logo. Without a configured font the embedded
// DejaVu faces are used; a configured font that cannot be loaded fails the construction.
// The logo is optional: a missing one is logged and skipped.
func NewAssembler(conf core.ReportConfig, loc *time.Location, logger core.Logger, opts ...Option) (*Assembler, error) {
	a := &Assembler{regular: defaultRegular, bold: defaultBold, shape: ArabicShaper, loc: loc, nowFunc: time.Now}
	if a.loc == nil {
		a.loc = time.Local
	}

	if conf.FontPath != "" {
		b, err := os.ReadFile(conf.FontPath)
		if err != nil {
			return nil, errors.Wrap(err, "loading report font")
		}
		a.regular, a.bold = b, nil
	}
	if conf.BoldFontPath != "" {
		b, err := os.ReadFile(conf.BoldFontPath)
		if err != nil {
			return nil, errors.Wrap(err, "loading report bold font")
		}
		a.bold = b
	}
	if conf.LogoPath != "" {
		if b, err := os.ReadFile(conf.LogoPath); err != nil {
			logger.Warn(fmt.Sprintf("report logo not loaded: %v", err))
		} else {
			a.logo = b
			a.logoType = strings.ToUpper(strings.TrimPrefix(filepath.Ext(conf.LogoPath), "."))
		}
	}

	for _, opt := range opts {
		opt(a)
	}

	if len(a.regular) == 0 {
		return nil, ErrNoFont
	}
	if err := checkFont(a.regular); err != nil {
		return nil, errors.Wrap(err, "report font")
	}
	if a.bold != nil {
		if err := checkFont(a.bold); err != nil {
			return nil, errors.Wrap(err, "report bold font")
		}
	}
	return a, nil
}

// checkFont registers b on a scratch document; fpdf only reports a bad font once it is selected.
func checkFont(b []byte) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", b)
	pdf.SetFont(fontFamily, "", 12)
	return pdf.Error()
}

// Layout builds the report content without drawing it.
func (a *Assembler) Layout(in Input) Layout {
	now := a.nowFunc().In(a.loc)
	l := Layout{
		TitleAr: titleAr,
		TitleEn: titleEn,
		Info: []Field{
			{Key: KeySchool, Label: "اسم المدرسة:", Value: orUnspecified(in.SchoolName)},
			{Key: KeyTeacher, Label: "اسم المعلم:", Value: orUnspecified(in.TeacherName)},
			{Key: KeyDate, Label: "التاريخ:", Value: orUnspecified(in.Date)},
			{Key: KeyOracle, Label: "رقم الأوراكل:", Value: orUnspecified(in.Oracle)},
		},
		Feedback: []Field{
			{Key: KeyStrengths, Label: "نقاط القوة / Strengths", Value: in.Feedback.Strengths},
			{Key: KeyImprovements, Label: "نقاط التحسين / Areas for Improvement", Value: in.Feedback.Improvements},
			{Key: KeyTeacherFeedback, Label: "ملاحظات المعلم / Teacher Feedback", Value: in.Feedback.TeacherFeedback},
		},
		Evaluator: []Field{
			{Key: KeyEvaluator, Label: "اسم المقيّم:", Value: orUnspecified(in.EvaluatorName)},
			{Key: KeyGroup, Label: "الحلقة:", Value: person.GroupLabel(in.Group)},
		},
		FooterAr: "تاريخ الإنشاء: " + ArabicDate(now),
		FooterEn: "Creation Date: " + EnglishDate(now),
	}

	if in.Scores != nil {
		s := *in.Scores
		for _, c := range rubric.Categories {
			ar, en := c.Titles()
			l.Scores = append(l.Scores, Field{
				Key:   string(c),
				Label: ar + " / " + en,
				Value: fmt.Sprintf("%d / %d", s.Subtotal(c), rubric.MaxCategoryScore),
			})
		}
		l.Scores = append(l.Scores,
			Field{Key: KeyOverall, Label: "الدرجة الكلية / Overall", Value: fmt.Sprintf("%d / %d", s.Overall, rubric.MaxOverall)},
			Field{Key: KeyFourPoint, Label: "المعدل من 4 / 4-Point Scale", Value: fmt.Sprintf("%.2f / 4", s.FourPoint())},
		)
	}
	return l
}

// Assemble lays out and draws the report in memory.
func (a *Assembler) Assemble(in Input) (*Document, error) {
	l := a.Layout(in)
	r := a.newRenderer(l)
	doc, err := r.render()
	if err != nil {
		return nil, errors.Wrap(err, "rendering report")
	}
	return doc, nil
}

func (a *Assembler) newRenderer(l Layout) *renderer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetCellMargin(cellPad)
	pdf.SetTitle(l.TitleEn, true)
	pdf.SetCreator("Taqyeem", true)
	pdf.SetCreationDate(a.nowFunc())

	r := &renderer{
		pdf:    pdf,
		layout: l,
		family: fontFamily,
		shape:  a.shape,
		lines:  make(map[string][]line),
	}
	bold := a.bold
	if bold == nil {
		bold = a.regular
	}
	pdf.AddUTF8FontFromBytes(fontFamily, "", a.regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", bold)
	if a.logo != nil {
		opts := fpdf.ImageOptions{ImageType: a.logoType}
		pdf.RegisterImageOptionsReader(logoName, opts, bytes.NewReader(a.logo))
		r.logo = true
		r.logoOpts = opts
	}
	return r
}

func orUnspecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unspecified
	}
	return s
}
