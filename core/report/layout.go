package report

// Field keys of the layout.
const (
	KeySchool          = "schoolName"
	KeyTeacher         = "teacherName"
	KeyDate            = "date"
	KeyOracle          = "oracle"
	KeyStrengths       = "strengths"
	KeyImprovements    = "improvements"
	KeyTeacherFeedback = "teacherFeedback"
	KeyEvaluator       = "evaluatorName"
	KeyGroup           = "group"
	KeyOverall         = "overallScore"
	KeyFourPoint       = "fourPointScore"
)

// Unspecified is drawn for a blank information value.
const Unspecified = "غير محدد"

// Field is one labelled value placed on the document.
type Field struct {
	Key   string
	Label string
	Value string
}

// Layout is the content of a report, top to bottom, before it is drawn.
type Layout struct {
	TitleAr   string
	TitleEn   string
	Info      []Field
	Feedback  []Field
	Scores    []Field
	Evaluator []Field
	FooterAr  string
	FooterEn  string
}

// Value finds a field by key in any section.
func (l Layout) Value(key string) (string, bool) {
	for _, section := range [][]Field{l.Info, l.Feedback, l.Scores, l.Evaluator} {
		for _, f := range section {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return "", false
}
