package utils

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const MaxNoteTextLength = 50000

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
	Validate.RegisterValidation("notetext", ValidateNoteTextRule)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("notetext", ValidateNoteTextRule)
	}
}

func ValidateNoteTextRule(fl validator.FieldLevel) bool {
	return ValidateNoteText(fl.Field().String())
}

// ValidateNoteText rejects whitespace-only and oversized note bodies.
func ValidateNoteText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return len(text) <= MaxNoteTextLength
}
