package evaluation

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/skillflow360/skillflow/core"
)

var (
	correctInOptionsTag  = "correct_in_options"
	correctInOptionsText = "the correct answer must be one of the options"
)

// InitValidators registers the evaluation rules on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(questionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, correctInOptionsTag, correctInOptionsText)
}

// questionStructValidation checks that the designated correct answer is a member of the options.
func questionStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuestion)
	if !ok || nq.CorrectAnswer == "" {
		return
	}
	for _, opt := range nq.Options {
		if opt == nq.CorrectAnswer {
			return
		}
	}
	sl.ReportError(nq.CorrectAnswer, "correctAnswer", "CorrectAnswer", correctInOptionsTag, "")
}
