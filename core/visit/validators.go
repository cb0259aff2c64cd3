package visit

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/taqyeem/core"
)

var (
	kindTag  = "visitkind"
	kindText = "must be one of: non-class, class"

	statusTag  = "areastatus"
	statusText = "must be one of: محقق, محقق جزئياً, غير محقق"

	requiredTag = "required"
)

// InitValidators registers the visit validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newVisitStructValidation, NewVisit{})
	core.RegisterCustomTranslation(validate, translator, kindTag, kindText)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// newVisitStructValidation checks that the details match the kind of visit.
func newVisitStructValidation(sl validator.StructLevel) {
	nv, ok := sl.Current().Interface().(NewVisit)
	if !ok || nv.Kind == "" {
		return
	}
	switch nv.Kind {
	case KindNonClass:
		if nv.NonClass == nil {
			sl.ReportError(nv.NonClass, "nonClass", "NonClass", requiredTag, "")
		}
	case KindClass:
		if nv.PersonID == "" {
			sl.ReportError(nv.PersonID, "teacherId", "PersonID", requiredTag, "")
		}
		if nv.EvaluatorName == "" {
			sl.ReportError(nv.EvaluatorName, "evaluatorName", "EvaluatorName", requiredTag, "")
		}
		if nv.Class == nil {
			sl.ReportError(nv.Class, "class", "Class", requiredTag, "")
			return
		}
		for key, area := range nv.Class.Areas {
			if !validStatus(area.Status) {
				sl.ReportError(area.Status, "areas."+key, "Areas", statusTag, "")
			}
		}
	default:
		sl.ReportError(nv.Kind, "type", "Kind", kindTag, "")
	}
}
