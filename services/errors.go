package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	ErrSurveyNotFound   = fmt.Errorf("survey %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrChoiceNotFound   = fmt.Errorf("choice %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("session %w", ErrNotFound)
	ErrResponseNotFound = fmt.Errorf("response %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	// ErrSurveyNotAccessible: khảo sát tồn tại nhưng người xem không có quyền (không public/inactive).
	ErrSurveyNotAccessible = errors.New("this survey is not accessible")

	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError mô tả một lỗi ở mức field.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil tránh trả về typed-nil khi không có lỗi.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) HasRule(rule string) bool {
	for _, e := range v {
		if e.Rule == rule {
			return true
		}
	}
	return false
}

// prefixed gắn tiền tố field, ví dụ "answers[2]".
func (v ValidationErrors) prefixed(prefix string) ValidationErrors {
	out := make(ValidationErrors, 0, len(v))
	for _, e := range v {
		if e.Field == "" {
			e.Field = prefix
		} else {
			e.Field = prefix + "." + e.Field
		}
		out = append(out, e)
	}
	return out
}

func fieldError(field, rule, message string) ValidationError {
	return ValidationError{Field: field, Rule: rule, Message: message}
}

// AsValidationErrors lấy danh sách lỗi nếu err là ValidationErrors.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
