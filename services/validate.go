package services

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// dùng tên json trong thông báo lỗi
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct chạy validator.v10 và chuyển kết quả sang ValidationErrors.
func validateStruct(s interface{}) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{fieldError("", "invalid", err.Error())}
	}

	out := make(ValidationErrors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ValidationError{
			Field:   stripRoot(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: messageFor(fe),
		})
	}
	return out
}

// "CreateSurveyRequest.questions[0].text" -> "questions[0].text"
func stripRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "must be a valid email address"
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}
