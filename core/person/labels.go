package person

import "strings"

// Kind partitions persons into teachers and managers.
type Kind string

const (
	KindTeacher Kind = "teacher"
	KindManager Kind = "manager"
)

// Cycles (teachers)
const (
	CycleOne   = "cycle1"
	CycleTwo   = "cycle2"
	CycleThree = "cycle3"
	CycleKG    = "kg"
)

// Departments (managers)
const (
	DeptAcademic       = "academic"
	DeptAdministrative = "administrative"
	DeptFinance        = "finance"
	DeptStudentAffairs = "student-affairs"
	DeptIT             = "it"
)

// UnsetGroupLabel is rendered wherever a grouping tag is missing.
const UnsetGroupLabel = "غير محدد"

var (
	Kinds = []Kind{KindTeacher, KindManager}

	groupLabels = map[string]string{
		CycleThree: "الحلقة الثالثة",
		CycleTwo:   "الحلقة الثانية",
		CycleOne:   "الحلقة الأولى",
		CycleKG:    "رياض الأطفال",

		DeptAcademic:       "القسم الأكاديمي",
		DeptAdministrative: "القسم الإداري",
		DeptFinance:        "القسم المالي",
		DeptStudentAffairs: "شؤون الطلاب",
		DeptIT:             "تكنولوجيا المعلومات",
	}

	kindGroups = map[Kind][]string{
		KindTeacher: {CycleThree, CycleTwo, CycleOne, CycleKG},
		KindManager: {DeptAcademic, DeptAdministrative, DeptFinance, DeptStudentAffairs, DeptIT},
	}

	// evaluatorTitleKeywords select the managers allowed to evaluate: directors and supervisors.
	evaluatorTitleKeywords = []string{"مدير", "مشرف"}
)

func (k Kind) IsValid() bool {
	_, ok := kindGroups[k]
	return ok
}

// Collection is the record-store collection holding persons of this kind.
func (k Kind) Collection() string {
	if k == KindManager {
		return "managers"
	}
	return "teachers"
}

// Groups lists the grouping tags allowed for the kind.
func (k Kind) Groups() []string {
	return kindGroups[k]
}

// ValidGroup reports whether group is one of the kind's grouping tags.
func ValidGroup(kind Kind, group string) bool {
	for _, g := range kindGroups[kind] {
		if g == group {
			return true
		}
	}
	return false
}

// GroupLabel renders a grouping tag in Arabic. Unknown tags are returned as-is.
func GroupLabel(group string) string {
	group = strings.TrimSpace(group)
	if group == "" {
		return UnsetGroupLabel
	}
	if label, ok := groupLabels[group]; ok {
		return label
	}
	return group
}

// IsEvaluatorTitle reports whether a job title qualifies a manager as an evaluator.
func IsEvaluatorTitle(jobTitle string) bool {
	for _, kw := range evaluatorTitleKeywords {
		if strings.Contains(jobTitle, kw) {
			return true
		}
	}
	return false
}
