package evaluation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/report"
	"github.com/trezcool/taqyeem/core/rubric"
)

type (
	// MainInformation identifies the observed lesson.
	MainInformation struct {
		SchoolName           string `json:"schoolName" validate:"required"`
		ClusterManager       string `json:"clusterManager"`
		EvaluatorJobTitle    string `json:"evaluatorJobTitle"`
		SchoolNumber         string `json:"schoolNumber"`
		TeacherName          string `json:"teacherName"`
		Oracle               string `json:"oracle"`
		GradeAndSection      string `json:"gradeAndSection"`
		Period               string `json:"period"`
		Subject              string `json:"subject"`
		Day                  string `json:"day"`
		Lesson               string `json:"lesson"`
		Date                 string `json:"date" validate:"required,date_ymd"`
		AttendanceNumber     string `json:"attendanceNumber"`
		AbsentNumber         string `json:"absentNumber"`
		SpecialNeedsStudents string `json:"specialNeedsStudents"`
	}

	// CoreForm holds the free-text feedback.
	CoreForm struct {
		Strengths       string `json:"strengths"`
		Improvements    string `json:"improvements"`
		TeacherFeedback string `json:"teacherFeedback"`
	}

	Evaluation struct {
		ID              string          `json:"id"`
		AccountID       string          `json:"-"`
		PersonID        string          `json:"teacherId"`
		EvaluatorID     string          `json:"evaluatorId"`
		EvaluatorName   string          `json:"evaluatorName"`
		MainInformation MainInformation `json:"mainInformation"`
		CoreForm        CoreForm        `json:"coreForm"`
		Scores          rubric.Scores   `json:"evaluationScores"`
		PDFURL          string          `json:"pdfURL"`
		PDFKey          string          `json:"pdfKey"`
		Group           string          `json:"cycle"`
		CreatedBy       string          `json:"createdBy"`
		Date            time.Time       `json:"date"`      // recording date, used for sorting and filtering
		CreatedAt       time.Time       `json:"createdAt"` // UTC
	}

	// NewEvaluation is what the evaluation form submits.
	NewEvaluation struct {
		PersonID        string          `json:"teacherId" validate:"required"`
		EvaluatorID     string          `json:"evaluatorId" validate:"required"`
		Group           string          `json:"cycle" validate:"required"`
		MainInformation MainInformation `json:"mainInformation"`
		CoreForm        CoreForm        `json:"coreForm"`
		Ratings         rubric.Ratings  `json:"ratings"`
	}
)

// FourPoint is the overall score on the 4-point scale, computed on every read.
func (ev Evaluation) FourPoint() float64 { return ev.Scores.FourPoint() }

func (ne *NewEvaluation) Validate(validate *validator.Validate) error {
	ne.PersonID = core.CleanString(ne.PersonID)
	ne.EvaluatorID = core.CleanString(ne.EvaluatorID)
	ne.Group = core.CleanString(ne.Group, true /* lower */)
	ne.MainInformation.SchoolName = core.CleanString(ne.MainInformation.SchoolName)
	ne.MainInformation.Date = core.CleanString(ne.MainInformation.Date)

	if err := validate.Struct(ne); err != nil {
		return err
	}
	if err := ne.Ratings.Validate(); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "ratings", Error: err.Error()})
	}
	return nil
}

// reportInput passes the grouping tag through raw; the assembler labels it.
func (ne NewEvaluation) reportInput(info MainInformation, evaluatorName string, scores rubric.Scores) report.Input {
	return report.Input{
		SchoolName:    info.SchoolName,
		TeacherName:   info.TeacherName,
		Date:          info.Date,
		Oracle:        info.Oracle,
		EvaluatorName: evaluatorName,
		Group:         ne.Group,
		Feedback: report.Feedback{
			Strengths:       ne.CoreForm.Strengths,
			Improvements:    ne.CoreForm.Improvements,
			TeacherFeedback: ne.CoreForm.TeacherFeedback,
		},
		Scores: &scores,
	}
}
