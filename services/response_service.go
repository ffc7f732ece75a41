package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/survey-collector/models"
)

/* ========== DTO ========== */

type CreateSessionRequest struct {
	SurveyID uint `json:"survey" validate:"required"`
}

type CreateResponseRequest struct {
	SessionID  uint    `json:"session" validate:"required"`
	QuestionID uint    `json:"question" validate:"required"`
	ChoiceIDs  []uint  `json:"choice_answer"`
	Scale      *int    `json:"scale_answer"`
	Text       *string `json:"text_answer"`
}

func (r *CreateResponseRequest) Answer() Answer {
	return Answer{ChoiceIDs: r.ChoiceIDs, Scale: r.Scale, Text: r.Text}
}

type SubmitAnswer struct {
	QuestionID uint    `json:"question" validate:"required"`
	ChoiceIDs  []uint  `json:"choice_answer"`
	Scale      *int    `json:"scale_answer"`
	Text       *string `json:"text_answer"`
}

// SubmitRequest: toàn bộ câu trả lời của một lượt làm khảo sát.
type SubmitRequest struct {
	Answers []SubmitAnswer `json:"answers" validate:"dive"`
}

type SubmitResult struct {
	SessionID uint `json:"session"`
	Responses int  `json:"responses"`
}

type ResponseFilter struct {
	SurveyID   uint
	SessionID  uint
	QuestionID uint
}

// ResponseView là Response kèm danh sách id lựa chọn để trả JSON.
type ResponseView struct {
	models.Response
	ChoiceAnswer []uint `json:"choice_answer"`
}

func newResponseView(r models.Response) ResponseView {
	return ResponseView{Response: r, ChoiceAnswer: r.ChoiceIDs()}
}

/* ========== Service ========== */

type ResponseService struct {
	db    *gorm.DB
	cache StatsCache
}

func NewResponseService(db *gorm.DB, cache StatsCache) *ResponseService {
	return &ResponseService{db: db, cache: cache}
}

// CreateSession mở một lượt trả lời ẩn danh; survey chỉ cần tồn tại.
func (s *ResponseService) CreateSession(ctx context.Context, req CreateSessionRequest, ip string) (*models.SurveySession, error) {
	if err := validateStruct(&req).OrNil(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var survey models.Survey
	if err := db.Select("id").First(&survey, req.SurveyID).Error; err != nil {
		return nil, notFound(err, ErrSurveyNotFound)
	}

	sess := models.SurveySession{SurveyID: survey.ID, IPAddress: ip}
	if err := db.Omit(clause.Associations).Create(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

// CreateResponse lưu một câu trả lời sau khi validate theo loại câu hỏi.
func (s *ResponseService) CreateResponse(ctx context.Context, req CreateResponseRequest) (*ResponseView, error) {
	if err := validateStruct(&req).OrNil(); err != nil {
		return nil, err
	}

	var resp models.Response
	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sess models.SurveySession
		if err := tx.First(&sess, req.SessionID).Error; err != nil {
			return notFound(err, ErrSessionNotFound)
		}
		var q models.Question
		if err := tx.Preload("Choices", orderByID).First(&q, req.QuestionID).Error; err != nil {
			return notFound(err, ErrQuestionNotFound)
		}
		if q.SurveyID != sess.SurveyID {
			return ValidationErrors{fieldError("question", "question_not_in_survey",
				"question does not belong to the session's survey")}
		}

		var answered int64
		if err := tx.Model(&models.Response{}).
			Where("session_id = ? AND question_id = ?", sess.ID, q.ID).
			Count(&answered).Error; err != nil {
			return err
		}
		if answered > 0 {
			return ValidationErrors{fieldError("question", "already_answered",
				"this question was already answered in the session")}
		}

		answer := req.Answer()
		if errs := ValidateAnswer(&q, choiceIDsOf(&q), answer); len(errs) > 0 {
			return errs
		}

		created, err := insertResponse(tx, sess.ID, &q, answer)
		if err != nil {
			return err
		}
		resp = *created
		surveyID = sess.SurveyID
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, surveyID)
	view := newResponseView(resp)
	return &view, nil
}

// Submit tạo session và toàn bộ response của một survey trong một transaction.
func (s *ResponseService) Submit(ctx context.Context, token string, viewerID uint, ip string, req SubmitRequest) (*SubmitResult, error) {
	db := s.db.WithContext(ctx)

	var survey models.Survey
	err := db.Preload("Questions", orderQuestions).
		Preload("Questions.Choices", orderByID).
		Where("token = ?", token).
		First(&survey).Error
	if err != nil {
		return nil, notFound(err, ErrSurveyNotFound)
	}
	if !CanView(&survey, viewerID) {
		return nil, ErrSurveyNotAccessible
	}

	errs := validateStruct(&req)
	byQuestion := make(map[uint]Answer, len(req.Answers))
	known := make(map[uint]struct{}, len(survey.Questions))
	for _, q := range survey.Questions {
		known[q.ID] = struct{}{}
	}
	for i, a := range req.Answers {
		field := fmt.Sprintf("answers[%d].question", i)
		if _, ok := known[a.QuestionID]; !ok {
			if a.QuestionID != 0 {
				errs = append(errs, fieldError(field, "question_not_in_survey",
					fmt.Sprintf("question %d does not belong to this survey", a.QuestionID)))
			}
			continue
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			errs = append(errs, fieldError(field, "duplicate_answer",
				fmt.Sprintf("question %d answered more than once", a.QuestionID)))
			continue
		}
		byQuestion[a.QuestionID] = Answer{ChoiceIDs: a.ChoiceIDs, Scale: a.Scale, Text: a.Text}
	}

	type pending struct {
		question *models.Question
		answer   Answer
	}
	toSave := make([]pending, 0, len(byQuestion))
	for i := range survey.Questions {
		q := &survey.Questions[i]
		prefix := fmt.Sprintf("question_%d", q.ID)
		a, ok := byQuestion[q.ID]
		if !ok || a.IsEmpty() {
			if q.IsRequired {
				errs = append(errs, fieldError(prefix, "answer_required", "this question requires an answer"))
			}
			continue
		}
		if ve := ValidateAnswer(q, choiceIDsOf(q), a); len(ve) > 0 {
			errs = append(errs, ve.prefixed(prefix)...)
			continue
		}
		toSave = append(toSave, pending{question: q, answer: a})
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	result := SubmitResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		sess := models.SurveySession{SurveyID: survey.ID, IPAddress: ip}
		if err := tx.Omit(clause.Associations).Create(&sess).Error; err != nil {
			return err
		}
		for _, p := range toSave {
			if _, err := insertResponse(tx, sess.ID, p.question, p.answer); err != nil {
				return err
			}
		}
		result.SessionID = sess.ID
		result.Responses = len(toSave)
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, survey.ID)
	return &result, nil
}

// insertResponse ghi response và các liên kết lựa chọn. answer đã được validate.
func insertResponse(tx *gorm.DB, sessionID uint, q *models.Question, a Answer) (*models.Response, error) {
	resp := models.Response{SessionID: sessionID, QuestionID: q.ID}
	switch q.Type {
	case models.QuestionScale:
		resp.ScaleAnswer = a.Scale
	case models.QuestionText:
		if a.Text != nil {
			text := *a.Text
			resp.TextAnswer = &text
		}
	}
	if err := tx.Omit(clause.Associations).Create(&resp).Error; err != nil {
		return nil, err
	}
	if q.HasChoices() {
		if err := setResponseChoices(tx, resp.ID, a.ChoiceIDs); err != nil {
			return nil, err
		}
		resp.Choices = pickChoices(q.Choices, a.ChoiceIDs)
	}
	return &resp, nil
}

func pickChoices(all []models.Choice, ids []uint) []models.Choice {
	byID := make(map[uint]models.Choice, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]models.Choice, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

/* ========== Owner-only: sessions ========== */

func (s *ResponseService) ListSessions(ctx context.Context, ownerID, surveyID uint) ([]models.SurveySession, error) {
	sessions := []models.SurveySession{}
	if ownerID == 0 {
		return sessions, nil
	}
	db := s.db.WithContext(ctx)
	q := db.Where("survey_id IN (?)", ownedSurveyIDs(db, ownerID))
	if surveyID != 0 {
		q = q.Where("survey_id = ?", surveyID)
	}
	err := q.Order("id ASC").Find(&sessions).Error
	return sessions, err
}

func (s *ResponseService) GetSession(ctx context.Context, id, ownerID uint) (*models.SurveySession, error) {
	return loadOwnedSession(s.db.WithContext(ctx), id, ownerID)
}

func (s *ResponseService) DeleteSession(ctx context.Context, id, ownerID uint) error {
	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess, err := loadOwnedSession(tx, id, ownerID)
		if err != nil {
			return err
		}
		surveyID = sess.SurveyID
		return deleteSessionTree(tx, sess.ID)
	})
	if err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, surveyID)
	return nil
}

func loadOwnedSession(db *gorm.DB, id, ownerID uint) (*models.SurveySession, error) {
	if ownerID == 0 {
		return nil, ErrSessionNotFound
	}
	var sess models.SurveySession
	err := db.Where("id = ? AND survey_id IN (?)", id, ownedSurveyIDs(db, ownerID)).First(&sess).Error
	if err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return &sess, nil
}

/* ========== Owner-only: responses ========== */

func (s *ResponseService) ListResponses(ctx context.Context, ownerID uint, f ResponseFilter) ([]ResponseView, error) {
	views := []ResponseView{}
	if ownerID == 0 {
		return views, nil
	}
	db := s.db.WithContext(ctx)
	q := db.Preload("Choices", orderByID).
		Where("question_id IN (?)", ownedQuestionIDs(db, ownerID))
	if f.SessionID != 0 {
		q = q.Where("session_id = ?", f.SessionID)
	}
	if f.QuestionID != 0 {
		q = q.Where("question_id = ?", f.QuestionID)
	}
	if f.SurveyID != 0 {
		q = q.Where("session_id IN (?)", db.Model(&models.SurveySession{}).Select("id").Where("survey_id = ?", f.SurveyID))
	}

	var rows []models.Response
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		views = append(views, newResponseView(r))
	}
	return views, nil
}

func (s *ResponseService) GetResponse(ctx context.Context, id, ownerID uint) (*ResponseView, error) {
	resp, err := loadOwnedResponse(s.db.WithContext(ctx), id, ownerID)
	if err != nil {
		return nil, err
	}
	view := newResponseView(*resp)
	return &view, nil
}

// UpdateResponse thay toàn bộ phần trả lời; session/question giữ nguyên.
func (s *ResponseService) UpdateResponse(ctx context.Context, id, ownerID uint, a Answer) (*ResponseView, error) {
	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resp, err := loadOwnedResponse(tx, id, ownerID)
		if err != nil {
			return err
		}
		var q models.Question
		if err := tx.Preload("Choices", orderByID).First(&q, resp.QuestionID).Error; err != nil {
			return err
		}
		if errs := ValidateAnswer(&q, choiceIDsOf(&q), a); len(errs) > 0 {
			return errs
		}
		surveyID = q.SurveyID

		updates := map[string]interface{}{"scale_answer": nil, "text_answer": nil}
		switch q.Type {
		case models.QuestionScale:
			updates["scale_answer"] = *a.Scale
		case models.QuestionText:
			if a.Text != nil {
				updates["text_answer"] = *a.Text
			}
		}
		if err := tx.Model(&models.Response{}).Where("id = ?", resp.ID).Updates(updates).Error; err != nil {
			return err
		}
		if q.HasChoices() {
			return setResponseChoices(tx, resp.ID, a.ChoiceIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, surveyID)
	return s.GetResponse(ctx, id, ownerID)
}

func (s *ResponseService) DeleteResponse(ctx context.Context, id, ownerID uint) error {
	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resp, err := loadOwnedResponse(tx, id, ownerID)
		if err != nil {
			return err
		}
		var q models.Question
		if err := tx.Select("id", "survey_id").First(&q, resp.QuestionID).Error; err != nil {
			return err
		}
		surveyID = q.SurveyID
		return deleteResponseTree(tx, resp.ID)
	})
	if err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, surveyID)
	return nil
}

func loadOwnedResponse(db *gorm.DB, id, ownerID uint) (*models.Response, error) {
	if ownerID == 0 {
		return nil, ErrResponseNotFound
	}
	var resp models.Response
	err := db.Preload("Choices", orderByID).
		Where("id = ? AND question_id IN (?)", id, ownedQuestionIDs(db, ownerID)).
		First(&resp).Error
	if err != nil {
		return nil, notFound(err, ErrResponseNotFound)
	}
	return &resp, nil
}
