package person

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/taqyeem/core"
)

var (
	kindTag  = "personkind"
	kindText = "must be one of: teacher, manager"

	groupTag  = "persongroup"
	groupText = "invalid cycle or department for this kind of person"
)

// InitValidators registers the person validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newPersonStructValidation, NewPerson{})
	core.RegisterCustomTranslation(validate, translator, kindTag, kindText)
	core.RegisterCustomTranslation(validate, translator, groupTag, groupText)
}

// newPersonStructValidation checks the kind and that the group belongs to it.
func newPersonStructValidation(sl validator.StructLevel) {
	np, ok := sl.Current().Interface().(NewPerson)
	if !ok || np.Kind == "" {
		return
	}
	if !np.Kind.IsValid() {
		sl.ReportError(np.Kind, "kind", "Kind", kindTag, "")
		return
	}
	if np.Group != "" && !ValidGroup(np.Kind, np.Group) {
		sl.ReportError(np.Group, "group", "Group", groupTag, "")
	}
}
