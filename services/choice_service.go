package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-collector/models"
)

type CreateChoiceRequest struct {
	QuestionID uint   `json:"question" validate:"required"`
	Text       string `json:"text" validate:"required,max=255"`
}

type UpdateChoiceRequest struct {
	Text string `json:"text" validate:"required,max=255"`
}

type ChoiceService struct {
	db    *gorm.DB
	cache StatsCache
}

func NewChoiceService(db *gorm.DB, cache StatsCache) *ChoiceService {
	return &ChoiceService{db: db, cache: cache}
}

func (s *ChoiceService) List(ctx context.Context, ownerID, questionID uint) ([]models.Choice, error) {
	choices := []models.Choice{}
	if ownerID == 0 {
		return choices, nil
	}
	db := s.db.WithContext(ctx)
	q := db.Where("question_id IN (?)", ownedQuestionIDs(db, ownerID))
	if questionID != 0 {
		q = q.Where("question_id = ?", questionID)
	}
	err := q.Order("question_id ASC, id ASC").Find(&choices).Error
	return choices, err
}

func (s *ChoiceService) Get(ctx context.Context, id, ownerID uint) (*models.Choice, error) {
	ch, _, err := s.load(s.db.WithContext(ctx), id, ownerID)
	return ch, err
}

// load trả choice và survey_id của nó.
func (s *ChoiceService) load(db *gorm.DB, id, ownerID uint) (*models.Choice, uint, error) {
	if ownerID == 0 {
		return nil, 0, ErrChoiceNotFound
	}
	var ch models.Choice
	err := db.Where("id = ? AND question_id IN (?)", id, ownedQuestionIDs(db, ownerID)).First(&ch).Error
	if err != nil {
		return nil, 0, notFound(err, ErrChoiceNotFound)
	}
	var q models.Question
	if err := db.Select("id", "survey_id").First(&q, ch.QuestionID).Error; err != nil {
		return nil, 0, err
	}
	return &ch, q.SurveyID, nil
}

// Create chỉ cho câu hỏi dạng lựa chọn.
func (s *ChoiceService) Create(ctx context.Context, ownerID uint, req CreateChoiceRequest) (*models.Choice, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := validateStruct(&req).OrNil(); err != nil {
		return nil, err
	}

	var ch models.Choice
	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadOwnedQuestion(tx, req.QuestionID, ownerID)
		if err != nil {
			return err
		}
		if !q.HasChoices() {
			return ValidationErrors{fieldError("question", "question_not_choice_type",
				fmt.Sprintf("%s questions cannot have choices", q.Type))}
		}
		surveyID = q.SurveyID
		ch = models.Choice{QuestionID: q.ID, Text: req.Text}
		return tx.Create(&ch).Error
	})
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, surveyID)
	return &ch, nil
}

func (s *ChoiceService) Update(ctx context.Context, id, ownerID uint, req UpdateChoiceRequest) (*models.Choice, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := validateStruct(&req).OrNil(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	ch, surveyID, err := s.load(db, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(ch).Update("text", req.Text).Error; err != nil {
		return nil, err
	}
	ch.Text = req.Text
	invalidateStats(ctx, s.cache, surveyID)
	return ch, nil
}

func (s *ChoiceService) Delete(ctx context.Context, id, ownerID uint) error {
	var surveyID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, sid, err := s.load(tx, id, ownerID)
		if err != nil {
			return err
		}
		surveyID = sid
		return deleteChoiceTree(tx, ch.ID)
	})
	if err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, surveyID)
	return nil
}
