package services

import (
	"fmt"
	"strings"

	"github.com/vnkhanh/survey-collector/models"
)

// Answer là phần trả lời của một Response, dùng chung cho API và form submit.
type Answer struct {
	ChoiceIDs []uint  `json:"choice_answer"`
	Scale     *int    `json:"scale_answer"`
	Text      *string `json:"text_answer"`
}

// IsEmpty: không chọn gì, không có scale, text rỗng.
func (a Answer) IsEmpty() bool {
	return len(a.ChoiceIDs) == 0 && a.Scale == nil && (a.Text == nil || strings.TrimSpace(*a.Text) == "")
}

// ValidateAnswer kiểm tra câu trả lời theo loại câu hỏi.
// choiceIDs là tập lựa chọn hợp lệ của question.
func ValidateAnswer(q *models.Question, choiceIDs []uint, a Answer) ValidationErrors {
	var errs ValidationErrors

	switch q.Type {
	case models.QuestionSingleChoice:
		if len(a.ChoiceIDs) != 1 {
			errs = append(errs, fieldError("choice_answer", "exactly_one_choice",
				"single choice question requires exactly one selected choice"))
		}
		errs = append(errs, checkChoiceMembership(choiceIDs, a.ChoiceIDs)...)
		errs = append(errs, notAllowed(a.Scale != nil, "scale_answer")...)
		errs = append(errs, notAllowed(hasText(a.Text), "text_answer")...)

	case models.QuestionMultipleChoice:
		if len(a.ChoiceIDs) == 0 {
			errs = append(errs, fieldError("choice_answer", "at_least_one_choice",
				"multiple choice question requires at least one selected choice"))
		}
		errs = append(errs, checkChoiceMembership(choiceIDs, a.ChoiceIDs)...)
		errs = append(errs, notAllowed(a.Scale != nil, "scale_answer")...)
		errs = append(errs, notAllowed(hasText(a.Text), "text_answer")...)

	case models.QuestionScale:
		if a.Scale == nil {
			errs = append(errs, fieldError("scale_answer", "scale_required",
				"scale question requires a scale value"))
		}
		errs = append(errs, notAllowed(len(a.ChoiceIDs) > 0, "choice_answer")...)
		errs = append(errs, notAllowed(hasText(a.Text), "text_answer")...)

	case models.QuestionText:
		if q.IsRequired && (a.Text == nil || strings.TrimSpace(*a.Text) == "") {
			errs = append(errs, fieldError("text_answer", "text_required",
				"required text question needs a non-empty answer"))
		}
		errs = append(errs, notAllowed(len(a.ChoiceIDs) > 0, "choice_answer")...)
		errs = append(errs, notAllowed(a.Scale != nil, "scale_answer")...)

	default:
		errs = append(errs, fieldError("question", "unknown_question_type",
			fmt.Sprintf("unknown question type %q", q.Type)))
	}
	return errs
}

func checkChoiceMembership(allowed, selected []uint) ValidationErrors {
	valid := make(map[uint]struct{}, len(allowed))
	for _, id := range allowed {
		valid[id] = struct{}{}
	}

	var errs ValidationErrors
	seen := make(map[uint]struct{}, len(selected))
	for i, id := range selected {
		field := fmt.Sprintf("choice_answer[%d]", i)
		if _, ok := valid[id]; !ok {
			errs = append(errs, fieldError(field, "choice_not_in_question",
				fmt.Sprintf("choice %d does not belong to this question", id)))
			continue
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, fieldError(field, "duplicate_choice",
				fmt.Sprintf("choice %d selected more than once", id)))
			continue
		}
		seen[id] = struct{}{}
	}
	return errs
}

func notAllowed(present bool, field string) ValidationErrors {
	if !present {
		return nil
	}
	return ValidationErrors{fieldError(field, "field_not_allowed",
		"this field is not allowed for the question type")}
}

func hasText(t *string) bool {
	return t != nil && *t != ""
}

func choiceIDsOf(q *models.Question) []uint {
	ids := make([]uint, 0, len(q.Choices))
	for _, c := range q.Choices {
		ids = append(ids, c.ID)
	}
	return ids
}
