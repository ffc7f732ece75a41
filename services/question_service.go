package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/survey-collector/models"
)

type AddQuestionRequest struct {
	SurveyID   uint     `json:"survey" validate:"required"`
	Text       string   `json:"text" validate:"required,max=255"`
	Type       string   `json:"question_type" validate:"required,oneof=single_choice multiple_choice scale text"`
	IsRequired bool     `json:"is_required"`
	Order      *int     `json:"order" validate:"omitempty,min=0"`
	Choices    []string `json:"choices" validate:"dive,required,max=255"`
}

type UpdateQuestionRequest struct {
	Text       *string `json:"text"`
	Type       *string `json:"question_type"`
	IsRequired *bool   `json:"is_required"`
	Order      *int    `json:"order"`
}

type QuestionService struct {
	db    *gorm.DB
	cache StatsCache
}

func NewQuestionService(db *gorm.DB, cache StatsCache) *QuestionService {
	return &QuestionService{db: db, cache: cache}
}

// List: câu hỏi thuộc các survey của owner, lọc theo survey nếu surveyID != 0.
func (s *QuestionService) List(ctx context.Context, ownerID, surveyID uint) ([]models.Question, error) {
	questions := []models.Question{}
	if ownerID == 0 {
		return questions, nil
	}
	db := s.db.WithContext(ctx)
	q := db.Preload("Choices", orderByID).
		Where("survey_id IN (?)", ownedSurveyIDs(db, ownerID))
	if surveyID != 0 {
		q = q.Where("survey_id = ?", surveyID)
	}
	err := q.Order("survey_id ASC, display_order ASC, id ASC").Find(&questions).Error
	return questions, err
}

func (s *QuestionService) Get(ctx context.Context, id, ownerID uint) (*models.Question, error) {
	return loadOwnedQuestion(s.db.WithContext(ctx), id, ownerID)
}

// Create thêm câu hỏi vào survey; không truyền order thì xếp cuối.
func (s *QuestionService) Create(ctx context.Context, ownerID uint, req AddQuestionRequest) (*models.Question, error) {
	req.Text = strings.TrimSpace(req.Text)
	req.Type = strings.TrimSpace(req.Type)
	for i := range req.Choices {
		req.Choices[i] = strings.TrimSpace(req.Choices[i])
	}
	errs := validateStruct(&req)
	errs = append(errs, checkQuestionChoices("choices", req.Type, len(req.Choices), false)...)
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	var q models.Question
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := loadOwnedSurvey(tx, req.SurveyID, ownerID)
		if err != nil {
			return err
		}

		order := 0
		if req.Order != nil {
			order = *req.Order
		} else {
			// index kế tiếp = MAX(display_order)+1
			var r struct{ Next int }
			if err := tx.Model(&models.Question{}).
				Where("survey_id = ?", survey.ID).
				Select("COALESCE(MAX(display_order), -1) + 1 AS next").
				Scan(&r).Error; err != nil {
				return err
			}
			order = r.Next
		}

		q = models.Question{
			SurveyID:   survey.ID,
			Text:       req.Text,
			Type:       req.Type,
			IsRequired: req.IsRequired,
			Order:      order,
		}
		if err := tx.Omit(clause.Associations).Create(&q).Error; err != nil {
			return err
		}
		q.Choices = make([]models.Choice, 0, len(req.Choices))
		for _, text := range req.Choices {
			ch := models.Choice{QuestionID: q.ID, Text: text}
			if err := tx.Create(&ch).Error; err != nil {
				return err
			}
			q.Choices = append(q.Choices, ch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, q.SurveyID)
	return &q, nil
}

// Update sửa text/type/is_required/order. Đổi type chỉ khi chưa có response;
// đổi sang scale/text thì bỏ các lựa chọn cũ.
func (s *QuestionService) Update(ctx context.Context, id, ownerID uint, req UpdateQuestionRequest) (*models.Question, error) {
	var errs ValidationErrors
	updates := map[string]interface{}{}

	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		switch {
		case text == "":
			errs = append(errs, fieldError("text", "required", "this field is required"))
		case len([]rune(text)) > 255:
			errs = append(errs, fieldError("text", "max", "must be at most 255 characters"))
		default:
			updates["text"] = text
		}
	}
	if req.Type != nil && !models.IsQuestionType(strings.TrimSpace(*req.Type)) {
		errs = append(errs, fieldError("question_type", "oneof",
			"must be one of: single_choice, multiple_choice, scale, text"))
	}
	if req.IsRequired != nil {
		updates["is_required"] = *req.IsRequired
	}
	if req.Order != nil {
		if *req.Order < 0 {
			errs = append(errs, fieldError("order", "min", "must be at least 0"))
		} else {
			updates["display_order"] = *req.Order
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadOwnedQuestion(tx, id, ownerID)
		if err != nil {
			return err
		}
		surveyID = q.SurveyID

		if req.Type != nil {
			newType := strings.TrimSpace(*req.Type)
			if newType != q.Type {
				var answered int64
				if err := tx.Model(&models.Response{}).Where("question_id = ?", q.ID).Count(&answered).Error; err != nil {
					return err
				}
				if answered > 0 {
					return ValidationErrors{fieldError("question_type", "type_locked",
						"question type cannot change once responses exist")}
				}
				if !models.IsChoiceType(newType) {
					if err := tx.Where("question_id = ?", q.ID).Delete(&models.Choice{}).Error; err != nil {
						return err
					}
				}
				updates["question_type"] = newType
			}
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Question{}).Where("id = ?", q.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, surveyID)
	return s.Get(ctx, id, ownerID)
}

// Delete xoá câu hỏi kèm choices/responses và dồn thứ tự.
func (s *QuestionService) Delete(ctx context.Context, id, ownerID uint) error {
	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadOwnedQuestion(tx, id, ownerID)
		if err != nil {
			return err
		}
		surveyID = q.SurveyID
		return deleteQuestionTree(tx, q)
	})
	if err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, surveyID)
	return nil
}
