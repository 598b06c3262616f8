// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("quality_grade", validateQualityGrade)
	validate.RegisterValidation("crop_unit", validateCropUnit)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	// 3-100 characters, letters, digits, spaces and underscores
	if len(username) < 3 || len(username) > 100 {
		return false
	}

	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_ ]+$`, username)
	return matched
}

func validateQualityGrade(fl validator.FieldLevel) bool {
	switch strings.ToUpper(fl.Field().String()) {
	case "A", "B", "C":
		return true
	}
	return false
}

func validateCropUnit(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "kg", "quintal", "ton", "dozen", "litre", "piece":
		return true
	}
	return false
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "username":
		return "Username must be 3-100 characters and contain only letters, numbers, spaces, and underscores"
	case "quality_grade":
		return "Quality grade must be A, B, or C"
	case "crop_unit":
		return "Unit must be one of kg, quintal, ton, dozen, litre, piece"
	default:
		return e.Field() + " is invalid"
	}
}
