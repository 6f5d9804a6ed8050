package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/skillflow360/skillflow/core"
)

var (
	competenceRefTag  = "competence_ref"
	competenceRefText = "select a competence"

	distinctTag  = "distinct_competences"
	distinctText = "a competence cannot be its own prerequisite"
)

// InitValidators registers the catalog rules on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(prerequisiteStructValidation, NewPrerequisite{})
	core.RegisterCustomTranslation(validate, translator, competenceRefTag, competenceRefText)
	core.RegisterCustomTranslation(validate, translator, distinctTag, distinctText)
}

// prerequisiteStructValidation requires both ends of the relation, and distinct ones.
func prerequisiteStructValidation(sl validator.StructLevel) {
	np, ok := sl.Current().Interface().(NewPrerequisite)
	if !ok {
		return
	}
	if np.Source.ID <= 0 {
		sl.ReportError(np.Source, "source", "Source", competenceRefTag, "")
	}
	if np.Target.ID <= 0 {
		sl.ReportError(np.Target, "target", "Target", competenceRefTag, "")
	}
	if np.Source.ID > 0 && np.Source.ID == np.Target.ID {
		sl.ReportError(np.Target, "target", "Target", distinctTag, "")
	}
}
