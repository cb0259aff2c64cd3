// Package rubric aggregates per-criterion ratings into category subtotals and an overall score.
package rubric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

type Category string

const (
	Planning             Category = "planning"
	ScientificCompetency Category = "scientificCompetency"
	Strategies           Category = "strategies"
	Management           Category = "management"
	Assessment           Category = "assessment"
	Quality              Category = "quality"
)

const (
	CriteriaPerCategory = 5
	MaxRating           = 5
	MaxCategoryScore    = CriteriaPerCategory * MaxRating
	MaxOverall          = 6 * MaxCategoryScore // 150
)

var (
	// Categories in rubric order.
	Categories = []Category{Planning, ScientificCompetency, Strategies, Management, Assessment, Quality}

	categoryTitles = map[Category][2]string{
		Planning:             {"التخطيط", "Planning"},
		ScientificCompetency: {"الكفاءة العلمية", "Scientific Competency"},
		Strategies:           {"الاستراتيجيات", "Strategies"},
		Management:           {"الإدارة الصفية", "Classroom Management"},
		Assessment:           {"التقويم", "Assessment"},
		Quality:              {"الجودة", "Quality"},
	}

	// errors
	ErrUnknownCategory = errors.New("unknown rubric category")
	ErrCriterionRange  = errors.New("criterion index out of range")
)

func (c Category) IsValid() bool {
	_, ok := categoryTitles[c]
	return ok
}

// Titles returns the Arabic and English names of the category.
func (c Category) Titles() (ar, en string) {
	t := categoryTitles[c]
	return t[0], t[1]
}

// Scores is the persisted aggregate of a rubric.
type Scores struct {
	Planning             int `json:"planningScore"`
	ScientificCompetency int `json:"scientificCompetencyScore"`
	Strategies           int `json:"strategiesScore"`
	Management           int `json:"managementScore"`
	Assessment           int `json:"assessmentScore"`
	Quality              int `json:"qualityScore"`
	Overall              int `json:"overallScore"`
}

// Subtotal returns the score of one category.
func (s Scores) Subtotal(c Category) int {
	switch c {
	case Planning:
		return s.Planning
	case ScientificCompetency:
		return s.ScientificCompetency
	case Strategies:
		return s.Strategies
	case Management:
		return s.Management
	case Assessment:
		return s.Assessment
	case Quality:
		return s.Quality
	}
	return 0
}

func (s *Scores) setSubtotal(c Category, v int) {
	switch c {
	case Planning:
		s.Planning = v
	case ScientificCompetency:
		s.ScientificCompetency = v
	case Strategies:
		s.Strategies = v
	case Management:
		s.Management = v
	case Assessment:
		s.Assessment = v
	case Quality:
		s.Quality = v
	}
}

// SumSubtotals adds up the six category subtotals.
func (s Scores) SumSubtotals() int {
	var sum int
	for _, c := range Categories {
		sum += s.Subtotal(c)
	}
	return sum
}

// FourPoint is the overall score on a 4-point scale.
func (s Scores) FourPoint() float64 { return FourPointScale(s.Overall) }

// FourPointScale converts an overall score out of 150 to the 4-point scale, rounded to 2 decimals.
func FourPointScale(overall int) float64 {
	return math.Round(float64(overall)/MaxOverall*4*100) / 100
}

// Sheet is the form-local rubric state. Every Set returns a consistent snapshot.
type Sheet struct {
	mu      sync.Mutex
	ratings map[Category][CriteriaPerCategory]string
	scores  Scores
}

func NewSheet() *Sheet {
	sh := &Sheet{ratings: make(map[Category][CriteriaPerCategory]string, len(Categories))}
	for _, c := range Categories {
		sh.ratings[c] = [CriteriaPerCategory]string{}
	}
	return sh
}

// Set records a raw rating for the criterion at idx of category c, recomputes and returns the scores.
// Empty or non-numeric values count as 0.
func (sh *Sheet) Set(c Category, idx int, raw string) (Scores, error) {
	if !c.IsValid() {
		return Scores{}, errors.Wrap(ErrUnknownCategory, string(c))
	}
	if idx < 0 || idx >= CriteriaPerCategory {
		return Scores{}, errors.Wrap(ErrCriterionRange, fmt.Sprintf("%s[%d]", c, idx))
	}

	sh.mu.Lock()
	slots := sh.ratings[c]
	slots[idx] = raw
	sh.ratings[c] = slots

	var subtotal int
	for _, v := range slots {
		subtotal += Rating(v)
	}
	sh.scores.setSubtotal(c, subtotal)
	sh.scores.Overall = sh.scores.SumSubtotals()
	snapshot := sh.scores
	sh.mu.Unlock()
	return snapshot, nil
}

// Scores returns the current snapshot.
func (sh *Sheet) Scores() Scores {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.scores
}

// Rating parses a raw criterion entry. Any number is accepted ("4", "4.0") and rounded
// to the nearest integer; anything else counts as 0.
func Rating(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

// Ratings maps a category to its (up to five) raw criterion entries, as submitted by a form.
type Ratings map[Category][]string

// Validate reports unknown categories and categories with more than five entries.
func (r Ratings) Validate() error {
	for c, vals := range r {
		if !c.IsValid() {
			return errors.Wrap(ErrUnknownCategory, string(c))
		}
		if len(vals) > CriteriaPerCategory {
			return errors.Wrap(ErrCriterionRange, fmt.Sprintf("%s has %d criteria", c, len(vals)))
		}
	}
	return nil
}

// Scores folds the ratings through a Sheet, one criterion at a time.
func (r Ratings) Scores() (Scores, error) {
	if err := r.Validate(); err != nil {
		return Scores{}, err
	}
	sh := NewSheet()
	for _, c := range Categories {
		for i, v := range r[c] {
			if _, err := sh.Set(c, i, v); err != nil {
				return Scores{}, err
			}
		}
	}
	return sh.Scores(), nil
}
