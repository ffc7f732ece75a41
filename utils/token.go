package utils

import (
	"strings"

	"github.com/google/uuid"
)

// SurveyTokenLength: token công khai của khảo sát là 32 ký tự hex.
const SurveyTokenLength = 32

func GenerateSurveyToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func IsSurveyToken(s string) bool {
	if len(s) != SurveyTokenLength {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
