package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vnkhanh/survey-collector/models"
)

// submitAll trả lời cả 4 câu của sampleSurvey: 1 + 2 lựa chọn, scale 4, text.
func submitAll(t *testing.T, svc *ResponseService, s *models.Survey) *SubmitResult {
	t.Helper()
	q := s.Questions
	res, err := svc.Submit(context.Background(), s.Token, 0, "10.0.0.1", SubmitRequest{Answers: []SubmitAnswer{
		{QuestionID: q[0].ID, ChoiceIDs: []uint{q[0].Choices[0].ID}},
		{QuestionID: q[1].ID, ChoiceIDs: []uint{q[1].Choices[0].ID, q[1].Choices[1].ID}},
		{QuestionID: q[2].ID, Scale: intPtr(4)},
		{QuestionID: q[3].ID, Text: strPtr("Nice")},
	}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return res
}

func TestCreateSessionAndResponse(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	svc := NewResponseService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	sess, err := svc.CreateSession(ctx, CreateSessionRequest{SurveyID: s.ID}, "192.0.2.7")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.IPAddress != "192.0.2.7" {
		t.Fatalf("got ip %q, want 192.0.2.7", sess.IPAddress)
	}

	multi := s.Questions[1]
	view, err := svc.CreateResponse(ctx, CreateResponseRequest{
		SessionID:  sess.ID,
		QuestionID: multi.ID,
		ChoiceIDs:  []uint{multi.Choices[1].ID, multi.Choices[0].ID},
	})
	if err != nil {
		t.Fatalf("create response: %v", err)
	}
	if len(view.ChoiceAnswer) != 2 {
		t.Fatalf("got %v, want two choices", view.ChoiceAnswer)
	}
	if n := countRows(t, db, "response_choices"); n != 2 {
		t.Fatalf("got %d join rows, want 2", n)
	}

	_, err = svc.CreateResponse(ctx, CreateResponseRequest{SessionID: sess.ID, QuestionID: multi.ID, ChoiceIDs: []uint{multi.Choices[0].ID}})
	if !hasRule(err, "already_answered") {
		t.Fatalf("got %v, want already_answered", err)
	}
}

func TestCreateResponseRejectsInvalidAnswers(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	svc := NewResponseService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	other := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	sess, err := svc.CreateSession(ctx, CreateSessionRequest{SurveyID: s.ID}, "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	single, scale, text := s.Questions[0], s.Questions[2], s.Questions[3]

	tests := []struct {
		name string
		req  CreateResponseRequest
		rule string
	}{
		{"single with two", CreateResponseRequest{QuestionID: single.ID, ChoiceIDs: []uint{single.Choices[0].ID, single.Choices[1].ID}}, "exactly_one_choice"},
		{"choice of other question", CreateResponseRequest{QuestionID: single.ID, ChoiceIDs: []uint{s.Questions[1].Choices[0].ID}}, "choice_not_in_question"},
		{"scale missing", CreateResponseRequest{QuestionID: scale.ID}, "scale_required"},
		{"scale with choice", CreateResponseRequest{QuestionID: scale.ID, Scale: intPtr(2), ChoiceIDs: []uint{single.Choices[0].ID}}, "field_not_allowed"},
		{"question of other survey", CreateResponseRequest{QuestionID: other.Questions[3].ID, Text: strPtr("x")}, "question_not_in_survey"},
		{"missing question", CreateResponseRequest{}, "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.SessionID = sess.ID
			_, err := svc.CreateResponse(ctx, tt.req)
			if !hasRule(err, tt.rule) {
				t.Fatalf("got %v, want rule %q", err, tt.rule)
			}
		})
	}
	if n := countRows(t, db, "responses"); n != 0 {
		t.Fatalf("got %d responses, want 0", n)
	}

	// text không bắt buộc, chuỗi rỗng vẫn hợp lệ
	if _, err := svc.CreateResponse(ctx, CreateResponseRequest{SessionID: sess.ID, QuestionID: text.ID, Text: strPtr("")}); err != nil {
		t.Fatalf("optional empty text: %v", err)
	}
}

func TestCreateSessionUnknownSurvey(t *testing.T) {
	svc := NewResponseService(newTestDB(t), nil)
	_, err := svc.CreateSession(context.Background(), CreateSessionRequest{SurveyID: 99}, "")
	if !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("got %v, want ErrSurveyNotFound", err)
	}
}

func TestSubmit(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	cache := newMemoryCache()
	svc := NewResponseService(db, cache)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	res := submitAll(t, svc, s)
	if res.Responses != 4 || res.SessionID == 0 {
		t.Fatalf("got %+v, want 4 responses in a session", res)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != s.ID {
		t.Fatalf("got invalidations %v, want [%d]", cache.invalidated, s.ID)
	}

	// câu không bắt buộc bỏ trống thì bỏ qua
	q := s.Questions
	res, err := svc.Submit(ctx, s.Token, 0, "", SubmitRequest{Answers: []SubmitAnswer{
		{QuestionID: q[0].ID, ChoiceIDs: []uint{q[0].Choices[2].ID}},
		{QuestionID: q[2].ID, Scale: intPtr(1)},
		{QuestionID: q[3].ID, Text: strPtr("  ")},
	}})
	if err != nil {
		t.Fatalf("submit partial: %v", err)
	}
	if res.Responses != 2 {
		t.Fatalf("got %d responses, want 2", res.Responses)
	}
}

func TestSubmitValidationIsAtomic(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	svc := NewResponseService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	other := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	q := s.Questions

	_, err := svc.Submit(ctx, s.Token, 0, "", SubmitRequest{Answers: []SubmitAnswer{
		{QuestionID: q[1].ID, ChoiceIDs: []uint{q[1].Choices[0].ID}},
		{QuestionID: other.Questions[0].ID, ChoiceIDs: []uint{other.Questions[0].Choices[0].ID}},
		{QuestionID: q[1].ID, ChoiceIDs: []uint{q[1].Choices[1].ID}},
	}})
	ve, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("got %v, want ValidationErrors", err)
	}
	for _, rule := range []string{"answer_required", "question_not_in_survey", "duplicate_answer"} {
		if !ve.HasRule(rule) {
			t.Errorf("missing rule %q in %v", rule, ve)
		}
	}
	if n := countRows(t, db, "survey_sessions"); n != 0 {
		t.Fatalf("got %d sessions, want 0", n)
	}
	if n := countRows(t, db, "responses"); n != 0 {
		t.Fatalf("got %d responses, want 0", n)
	}
}

func TestSubmitRespectsVisibility(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	svc := NewResponseService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(false))
	if _, err := svc.Submit(ctx, s.Token, 0, "", SubmitRequest{}); !errors.Is(err, ErrSurveyNotAccessible) {
		t.Fatalf("anonymous: got %v, want ErrSurveyNotAccessible", err)
	}
	if _, err := svc.Submit(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", 0, "", SubmitRequest{}); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("unknown token: got %v, want ErrSurveyNotFound", err)
	}
	// chủ sở hữu vẫn nộp được (test trước khi mở public)
	if _, err := svc.Submit(ctx, s.Token, alice.ID, "", SubmitRequest{}); !hasRule(err, "answer_required") {
		t.Fatalf("owner: got %v, want answer_required", err)
	}
}

func TestOwnerScopedSessionsAndResponses(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	surveys := NewSurveyService(db, nil)
	svc := NewResponseService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	res := submitAll(t, svc, s)

	sessions, err := svc.ListSessions(ctx, alice.ID, 0)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("alice sessions: got %d (%v), want 1", len(sessions), err)
	}
	sessions, err = svc.ListSessions(ctx, bob.ID, 0)
	if err != nil || len(sessions) != 0 {
		t.Fatalf("bob sessions: got %d (%v), want 0", len(sessions), err)
	}
	if _, err := svc.GetSession(ctx, res.SessionID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bob get session: got %v, want not found", err)
	}

	views, err := svc.ListResponses(ctx, alice.ID, ResponseFilter{SessionID: res.SessionID})
	if err != nil || len(views) != 4 {
		t.Fatalf("alice responses: got %d (%v), want 4", len(views), err)
	}
	views, err = svc.ListResponses(ctx, bob.ID, ResponseFilter{})
	if err != nil || len(views) != 0 {
		t.Fatalf("bob responses: got %d (%v), want 0", len(views), err)
	}
	if err := svc.DeleteResponse(ctx, firstResponseID(t, svc, alice.ID), bob.ID); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("bob delete: got %v, want ErrResponseNotFound", err)
	}

	if err := svc.DeleteSession(ctx, res.SessionID, alice.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if n := countRows(t, db, "responses"); n != 0 {
		t.Fatalf("got %d responses, want 0", n)
	}
	if n := countRows(t, db, "response_choices"); n != 0 {
		t.Fatalf("got %d join rows, want 0", n)
	}
}

func firstResponseID(t *testing.T, svc *ResponseService, ownerID uint) uint {
	t.Helper()
	views, err := svc.ListResponses(context.Background(), ownerID, ResponseFilter{})
	if err != nil || len(views) == 0 {
		t.Fatalf("list responses: %d (%v)", len(views), err)
	}
	return views[0].ID
}

func TestUpdateResponseReplacesChoices(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	surveys := NewSurveyService(db, nil)
	svc := NewResponseService(db, nil)
	ctx := context.Background()

	s := mustCreateSurvey(t, surveys, alice.ID, sampleSurvey(true))
	submitAll(t, svc, s)
	multi := s.Questions[1]

	views, err := svc.ListResponses(ctx, alice.ID, ResponseFilter{QuestionID: multi.ID})
	if err != nil || len(views) != 1 {
		t.Fatalf("list: got %d (%v), want 1", len(views), err)
	}

	got, err := svc.UpdateResponse(ctx, views[0].ID, alice.ID, Answer{ChoiceIDs: []uint{multi.Choices[1].ID}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(got.ChoiceAnswer) != 1 || got.ChoiceAnswer[0] != multi.Choices[1].ID {
		t.Fatalf("got %v, want [%d]", got.ChoiceAnswer, multi.Choices[1].ID)
	}

	_, err = svc.UpdateResponse(ctx, views[0].ID, alice.ID, Answer{})
	if !hasRule(err, "at_least_one_choice") {
		t.Fatalf("got %v, want at_least_one_choice", err)
	}
}
