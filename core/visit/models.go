package visit

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/taqyeem/core"
)

type Kind string

const (
	KindNonClass Kind = "non-class"
	KindClass    Kind = "class"
)

func (k Kind) IsValid() bool { return k == KindNonClass || k == KindClass }

// Area statuses of a class visit.
const (
	StatusAchieved          = "محقق"
	StatusPartiallyAchieved = "محقق جزئياً"
	StatusNotAchieved       = "غير محقق"
)

// Assessed areas of a class visit.
const (
	AreaPlanningCoverage = "planningCoverage"
	AreaLessonPlanning   = "lessonPlanning"
)

func validStatus(s string) bool {
	switch s {
	case "", StatusAchieved, StatusPartiallyAchieved, StatusNotAchieved:
		return true
	}
	return false
}

type (
	VisitAims struct {
		ContinuousAssessment bool `json:"continuousAssessment"`
		CurriculumFollowUp   bool `json:"curriculumFollowUp"`
	}

	// NonClass is a school-level supervisory visit.
	NonClass struct {
		VisitNumber          string    `json:"visitNumber"`
		ClusterManager       string    `json:"clusterManager"`
		School               string    `json:"school"`
		SchoolNumber         string    `json:"schoolNo"`
		TargetedByVisit      string    `json:"targetedByVisit"`
		TeachingSubject      string    `json:"teachingSubject"`
		NoOfAttendees        string    `json:"noOfAttendees"`
		Absentees            string    `json:"absentees"`
		Visitor1             string    `json:"visitor1"`
		Visitor2             string    `json:"visitor2"`
		NamesOfAttendees     []string  `json:"namesOfAttendees"`
		VisitAims            VisitAims `json:"visitAims"`
		Notes                string    `json:"notes"`
		Recommendations      string    `json:"recommendations"`
		FollowUpParty        string    `json:"followUpParty"`
		ExpectedFollowUpDate string    `json:"expectedFollowUpDate" validate:"date_ymd"`
	}

	AreaAssessment struct {
		Status            string `json:"status"`
		Notes             string `json:"notes"`
		Recommendations   string `json:"recommendations"`
		SupportProcedures string `json:"supportProcedures"`
	}

	// Class is a special-aim class visit of one teacher.
	Class struct {
		VisitNumber          string                    `json:"visitNumber"`
		School               string                    `json:"school"`
		TeacherName          string                    `json:"teacherName"`
		Subject              string                    `json:"subject"`
		GradeAndSection      string                    `json:"gradeAndSection"`
		Stream               string                    `json:"stream"`
		PresentStudents      string                    `json:"presentStudents"`
		AbsentStudents       string                    `json:"absentStudents"`
		SpecialNeedsStudents string                    `json:"specialNeedsStudents"`
		Period               string                    `json:"period"`
		LessonTitle          string                    `json:"lessonTitle"`
		WasTeacherTrained    bool                      `json:"wasTeacherTrained"`
		TrainingType         string                    `json:"trainingType"`
		Areas                map[string]AreaAssessment `json:"areas"`
	}

	Visit struct {
		ID            string            `json:"id"`
		AccountID     string            `json:"-"`
		Kind          Kind              `json:"type"`
		PersonID      string            `json:"teacherId,omitempty"`
		EvaluatorName string            `json:"evaluatorName,omitempty"`
		NonClass      *NonClass         `json:"nonClass,omitempty"`
		Class         *Class            `json:"class,omitempty"`
		Extra         map[string]string `json:"extra,omitempty"` // fields no form knows about
		CreatedBy     string            `json:"createdBy"`
		Date          time.Time         `json:"date"` // UTC
	}

	NewVisit struct {
		Kind          Kind              `json:"type" validate:"required"`
		PersonID      string            `json:"teacherId"`
		EvaluatorName string            `json:"evaluatorName"`
		NonClass      *NonClass         `json:"nonClass"`
		Class         *Class            `json:"class"`
		Extra         map[string]string `json:"extra"`
	}

	// Field is one labelled value of a visit, for generic display.
	Field struct {
		Key   string `json:"key"`
		Label string `json:"label"`
		Value string `json:"value"`
	}
)

func (nv *NewVisit) Validate(validate *validator.Validate) error {
	nv.Kind = Kind(core.CleanString(string(nv.Kind), true /* lower */))
	nv.PersonID = core.CleanString(nv.PersonID)
	nv.EvaluatorName = core.CleanString(nv.EvaluatorName)
	return validate.Struct(nv)
}

func (nv NewVisit) visit(accountID, createdBy string, now time.Time) Visit {
	v := Visit{
		AccountID:     accountID,
		Kind:          nv.Kind,
		PersonID:      nv.PersonID,
		EvaluatorName: nv.EvaluatorName,
		NonClass:      nv.NonClass,
		Class:         nv.Class,
		CreatedBy:     createdBy,
		Date:          now,
	}
	if len(nv.Extra) > 0 {
		v.Extra = make(map[string]string, len(nv.Extra))
		for k, val := range nv.Extra {
			if k = core.CleanString(k); k != "" {
				v.Extra[k] = val
			}
		}
	}
	return v
}

var labels = map[string]string{
	"visitNumber":          "رقم الزيارة",
	"clusterManager":       "مدير النطاق",
	"school":               "المدرسة",
	"schoolNo":             "رقم المدرسة",
	"targetedByVisit":      "المستهدف بالزيارة",
	"teachingSubject":      "المادة",
	"noOfAttendees":        "عدد الحضور",
	"absentees":            "الغياب",
	"visitor1":             "اسم الزائر",
	"visitor2":             "الزائر الثاني",
	"namesOfAttendees":     "أسماء الحضور",
	"visitAims":            "أهداف الزيارة",
	"notes":                "ملاحظات",
	"recommendations":      "التوصيات",
	"followUpParty":        "جهة المتابعة",
	"expectedFollowUpDate": "تاريخ المتابعة المتوقع",
	"evaluatorName":        "المقيّم",
	"teacherName":          "اسم المعلم",
	"subject":              "المادة",
	"gradeAndSection":      "الصف والشعبة",
	"stream":               "المسار",
	"presentStudents":      "عدد الحضور",
	"absentStudents":       "عدد الغياب",
	"specialNeedsStudents": "أصحاب الهمم",
	"period":               "الحصة",
	"lessonTitle":          "عنوان الدرس",
	"wasTeacherTrained":    "هل تم تدريب المعلم",
	"trainingType":         "نوع التدريب",
	AreaPlanningCoverage:   "تغطية التخطيط",
	AreaLessonPlanning:     "تخطيط الدرس",
}

// Label returns the Arabic label of a field key, or the key itself when unknown.
func Label(key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

// Fields lists the visit's non-empty values, known fields first, then extras sorted by key.
func (v Visit) Fields() []Field {
	var fields []Field
	add := func(key, value string) {
		if value = core.CleanString(value); value != "" {
			fields = append(fields, Field{Key: key, Label: Label(key), Value: value})
		}
	}

	add("evaluatorName", v.EvaluatorName)
	if nc := v.NonClass; nc != nil {
		add("visitNumber", nc.VisitNumber)
		add("clusterManager", nc.ClusterManager)
		add("school", nc.School)
		add("schoolNo", nc.SchoolNumber)
		add("targetedByVisit", nc.TargetedByVisit)
		add("teachingSubject", nc.TeachingSubject)
		add("noOfAttendees", nc.NoOfAttendees)
		add("absentees", nc.Absentees)
		add("visitor1", nc.Visitor1)
		add("visitor2", nc.Visitor2)
		add("namesOfAttendees", joinNonEmpty(nc.NamesOfAttendees))
		add("visitAims", nc.VisitAims.String())
		add("notes", nc.Notes)
		add("recommendations", nc.Recommendations)
		add("followUpParty", nc.FollowUpParty)
		add("expectedFollowUpDate", nc.ExpectedFollowUpDate)
	}
	if c := v.Class; c != nil {
		add("visitNumber", c.VisitNumber)
		add("school", c.School)
		add("teacherName", c.TeacherName)
		add("subject", c.Subject)
		add("gradeAndSection", c.GradeAndSection)
		add("stream", c.Stream)
		add("presentStudents", c.PresentStudents)
		add("absentStudents", c.AbsentStudents)
		add("specialNeedsStudents", c.SpecialNeedsStudents)
		add("period", c.Period)
		add("lessonTitle", c.LessonTitle)
		if c.WasTeacherTrained {
			add("wasTeacherTrained", "نعم")
		} else {
			add("wasTeacherTrained", "لا")
		}
		add("trainingType", c.TrainingType)
		for _, key := range sortedKeys(c.Areas) {
			add(key, c.Areas[key].String())
		}
	}

	extras := make([]string, 0, len(v.Extra))
	for k := range v.Extra {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	for _, k := range extras {
		add(k, v.Extra[k])
	}
	return fields
}

func (a VisitAims) String() string {
	var aims []string
	if a.ContinuousAssessment {
		aims = append(aims, "التقييم المستمر")
	}
	if a.CurriculumFollowUp {
		aims = append(aims, "متابعة المنهج")
	}
	return joinNonEmpty(aims)
}

func (a AreaAssessment) String() string {
	return joinNonEmpty([]string{a.Status, a.Notes, a.Recommendations, a.SupportProcedures})
}

func joinNonEmpty(ss []string) string {
	var out string
	for _, s := range ss {
		if s = core.CleanString(s); s == "" {
			continue
		}
		if out != "" {
			out += "، "
		}
		out += s
	}
	return out
}

func sortedKeys(m map[string]AreaAssessment) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Filter narrows a visit listing; empty fields match everything.
type Filter struct {
	Kind     Kind   `query:"kind"`
	PersonID string `query:"person"`
	Date     string `query:"date"` // local calendar day, YYYY-MM-DD
}

func (f *Filter) Clean() {
	f.Kind = Kind(core.CleanString(string(f.Kind), true /* lower */))
	f.PersonID = core.CleanString(f.PersonID)
	f.Date = core.CleanString(f.Date)
}

func (f Filter) Match(v Visit, loc *time.Location) bool {
	if f.Kind != "" && v.Kind != f.Kind {
		return false
	}
	if f.PersonID != "" && v.PersonID != f.PersonID {
		return false
	}
	if f.Date != "" && !core.SameDay(v.Date, f.Date, loc) {
		return false
	}
	return true
}
