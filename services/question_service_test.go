package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vnkhanh/survey-collector/models"
)

func TestQuestionCreateAppendsAtEnd(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	cache := newMemoryCache()
	s := mustCreateSurvey(t, NewSurveyService(db, nil), alice.ID, sampleSurvey(true))
	svc := NewQuestionService(db, cache)
	ctx := context.Background()

	q, err := svc.Create(ctx, alice.ID, AddQuestionRequest{
		SurveyID: s.ID,
		Text:     "Pick one",
		Type:     models.QuestionSingleChoice,
		Choices:  []string{"yes", "no"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Order != 4 || len(q.Choices) != 2 {
		t.Fatalf("got order %d with %d choices, want 4 with 2", q.Order, len(q.Choices))
	}
	if len(cache.invalidated) != 1 {
		t.Fatalf("got %v invalidations, want 1", cache.invalidated)
	}

	_, err = svc.Create(ctx, alice.ID, AddQuestionRequest{SurveyID: s.ID, Text: "Rate", Type: models.QuestionScale, Choices: []string{"1"}})
	if !hasRule(err, "choices_not_allowed") {
		t.Fatalf("got %v, want choices_not_allowed", err)
	}
}

func TestQuestionOwnerScoping(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	s := mustCreateSurvey(t, NewSurveyService(db, nil), alice.ID, sampleSurvey(true))
	svc := NewQuestionService(db, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, bob.ID, AddQuestionRequest{SurveyID: s.ID, Text: "x", Type: models.QuestionText}); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("create in foreign survey: got %v, want ErrSurveyNotFound", err)
	}
	if _, err := svc.Get(ctx, s.Questions[0].ID, bob.ID); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("get foreign question: got %v, want ErrQuestionNotFound", err)
	}
	list, err := svc.List(ctx, bob.ID, 0)
	if err != nil || len(list) != 0 {
		t.Fatalf("bob list: got %d (%v), want 0", len(list), err)
	}
	list, err = svc.List(ctx, alice.ID, s.ID)
	if err != nil || len(list) != 4 {
		t.Fatalf("alice list: got %d (%v), want 4", len(list), err)
	}
}

func TestQuestionTypeChange(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	svc := NewQuestionService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	single := s.Questions[0]
	got, err := svc.Update(ctx, single.ID, alice.ID, UpdateQuestionRequest{Type: strPtr(models.QuestionText), IsRequired: boolPtr(false)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Type != models.QuestionText || got.IsRequired || len(got.Choices) != 0 {
		t.Fatalf("got %+v, want optional text without choices", got)
	}

	answered := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	submitAll(t, NewResponseService(db, nil), answered)
	_, err = svc.Update(ctx, answered.Questions[0].ID, alice.ID, UpdateQuestionRequest{Type: strPtr(models.QuestionScale)})
	if !hasRule(err, "type_locked") {
		t.Fatalf("got %v, want type_locked", err)
	}

	_, err = svc.Update(ctx, answered.Questions[0].ID, alice.ID, UpdateQuestionRequest{Text: strPtr(""), Type: strPtr("matrix")})
	if !hasRule(err, "required") || !hasRule(err, "oneof") {
		t.Fatalf("got %v, want required and oneof", err)
	}
}

func TestQuestionDeleteShiftsOrder(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	svc := NewQuestionService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	submitAll(t, NewResponseService(db, nil), s)

	if err := svc.Delete(ctx, s.Questions[1].ID, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := svc.List(ctx, alice.ID, s.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d questions, want 3", len(list))
	}
	for i, q := range list {
		if q.Order != i {
			t.Fatalf("question %d: got order %d, want %d", q.ID, q.Order, i)
		}
	}
	// câu multiple choice có 2 liên kết lựa chọn; còn lại 1 của câu single
	if n := countRows(t, db, "response_choices"); n != 1 {
		t.Fatalf("got %d join rows, want 1", n)
	}
	if n := countRows(t, db, "responses"); n != 3 {
		t.Fatalf("got %d responses, want 3", n)
	}
}

func TestChoiceService(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	s := mustCreateSurvey(t, NewSurveyService(db, nil), alice.ID, sampleSurvey(true))
	svc := NewChoiceService(db, nil)
	ctx := context.Background()

	ch, err := svc.Create(ctx, alice.ID, CreateChoiceRequest{QuestionID: s.Questions[0].ID, Text: " Yellow "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ch.Text != "Yellow" {
		t.Fatalf("got %q, want trimmed text", ch.Text)
	}

	_, err = svc.Create(ctx, alice.ID, CreateChoiceRequest{QuestionID: s.Questions[2].ID, Text: "nope"})
	if !hasRule(err, "question_not_choice_type") {
		t.Fatalf("got %v, want question_not_choice_type", err)
	}
	if _, err := svc.Create(ctx, bob.ID, CreateChoiceRequest{QuestionID: s.Questions[0].ID, Text: "x"}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("foreign question: got %v, want ErrQuestionNotFound", err)
	}

	updated, err := svc.Update(ctx, ch.ID, alice.ID, UpdateChoiceRequest{Text: "Gold"})
	if err != nil || updated.Text != "Gold" {
		t.Fatalf("update: got %+v (%v)", updated, err)
	}
	if _, err := svc.Update(ctx, ch.ID, bob.ID, UpdateChoiceRequest{Text: "x"}); !errors.Is(err, ErrChoiceNotFound) {
		t.Fatalf("foreign update: got %v, want ErrChoiceNotFound", err)
	}

	list, err := svc.List(ctx, alice.ID, s.Questions[0].ID)
	if err != nil || len(list) != 4 {
		t.Fatalf("list: got %d (%v), want 4", len(list), err)
	}
	if err := svc.Delete(ctx, ch.ID, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, ch.ID, alice.ID); !errors.Is(err, ErrChoiceNotFound) {
		t.Fatalf("got %v, want ErrChoiceNotFound", err)
	}
}

func TestChoiceDeleteDropsEmptyResponses(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	s := mustCreateSurvey(t, NewSurveyService(db, nil), alice.ID, sampleSurvey(true))
	responses := NewResponseService(db, nil)
	svc := NewChoiceService(db, nil)
	ctx := context.Background()
	single, multi := s.Questions[0], s.Questions[1]

	submitAll(t, responses, s)
	if _, err := responses.Submit(ctx, s.Token, 0, "10.0.0.2", SubmitRequest{Answers: []SubmitAnswer{
		{QuestionID: single.ID, ChoiceIDs: []uint{single.Choices[1].ID}},
		{QuestionID: multi.ID, ChoiceIDs: []uint{multi.Choices[0].ID}},
		{QuestionID: s.Questions[2].ID, Scale: intPtr(2)},
	}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.Delete(ctx, single.Choices[0].ID, alice.ID); err != nil {
		t.Fatalf("delete single choice: %v", err)
	}
	if err := svc.Delete(ctx, multi.Choices[1].ID, alice.ID); err != nil {
		t.Fatalf("delete multiple choice: %v", err)
	}

	countFor := func(questionID uint) int64 {
		var n int64
		if err := db.Model(&models.Response{}).Where("question_id = ?", questionID).Count(&n).Error; err != nil {
			t.Fatalf("count responses: %v", err)
		}
		return n
	}
	if got := countFor(single.ID); got != 1 {
		t.Fatalf("single_choice responses: got %d, want 1", got)
	}
	// multiple_choice vẫn còn ít nhất một lựa chọn nên giữ nguyên
	if got := countFor(multi.ID); got != 2 {
		t.Fatalf("multiple_choice responses: got %d, want 2", got)
	}

	stats, err := NewStatsService(db, nil).SurveyStats(ctx, s.ID, alice.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var sum int64
	for _, c := range stats[0].Answers.([]ChoiceCount) {
		sum += c.Count
	}
	if sum != 1 {
		t.Fatalf("single_choice counts sum to %d, want 1", sum)
	}
}
