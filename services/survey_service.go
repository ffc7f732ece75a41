package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/survey-collector/models"
	"github.com/vnkhanh/survey-collector/utils"
)

// Số lần thử lại khi token bị trùng unique index.
const maxTokenAttempts = 3

/* ========== DTO ========== */

type CreateQuestionRequest struct {
	Text       string   `json:"text" validate:"required,max=255"`
	Type       string   `json:"question_type" validate:"required,oneof=single_choice multiple_choice scale text"`
	IsRequired bool     `json:"is_required"`
	Choices    []string `json:"choices" validate:"dive,required,max=255"`
}

type CreateSurveyRequest struct {
	Title     string                  `json:"title" validate:"required,max=255"`
	IsPublic  bool                    `json:"is_public"`
	Status    string                  `json:"status" validate:"oneof=active inactive"`
	Questions []CreateQuestionRequest `json:"questions" validate:"dive"`
}

func (r *CreateSurveyRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		r.Status = models.SurveyStatusActive
	}
	for i := range r.Questions {
		q := &r.Questions[i]
		q.Text = strings.TrimSpace(q.Text)
		q.Type = strings.TrimSpace(q.Type)
		for j := range q.Choices {
			q.Choices[j] = strings.TrimSpace(q.Choices[j])
		}
	}
}

// Validate kiểm tra toàn bộ request trước khi ghi bất cứ thứ gì.
func (r *CreateSurveyRequest) Validate() error {
	errs := validateStruct(r)
	for i, q := range r.Questions {
		errs = append(errs, checkQuestionChoices(fmt.Sprintf("questions[%d].choices", i), q.Type, len(q.Choices), true)...)
	}
	return errs.OrNil()
}

// checkQuestionChoices: câu chọn cần >=1 lựa chọn (nếu requireChoices), scale/text không có lựa chọn.
func checkQuestionChoices(field, qType string, n int, requireChoices bool) ValidationErrors {
	if !models.IsQuestionType(qType) {
		return nil
	}
	if models.IsChoiceType(qType) {
		if requireChoices && n == 0 {
			return ValidationErrors{fieldError(field, "choices_required",
				"choice questions need at least one choice")}
		}
		return nil
	}
	if n > 0 {
		return ValidationErrors{fieldError(field, "choices_not_allowed",
			"scale and text questions cannot have choices")}
	}
	return nil
}

type UpdateSurveyRequest struct {
	Title    *string `json:"title"`
	IsPublic *bool   `json:"is_public"`
	Status   *string `json:"status"`
}

func (r *UpdateSurveyRequest) updates() (map[string]interface{}, error) {
	var errs ValidationErrors
	updates := map[string]interface{}{}

	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		switch {
		case title == "":
			errs = append(errs, fieldError("title", "required", "this field is required"))
		case len([]rune(title)) > 255:
			errs = append(errs, fieldError("title", "max", "must be at most 255 characters"))
		default:
			updates["title"] = title
		}
	}
	if r.IsPublic != nil {
		updates["is_public"] = *r.IsPublic
	}
	if r.Status != nil {
		status := strings.TrimSpace(*r.Status)
		if status != models.SurveyStatusActive && status != models.SurveyStatusInactive {
			errs = append(errs, fieldError("status", "oneof", "must be one of: active, inactive"))
		} else {
			updates["status"] = status
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return updates, nil
}

type ReorderRequest struct {
	Order []uint `json:"order" validate:"required,min=1,dive,required"`
}

/* ========== Service ========== */

type SurveyService struct {
	db       *gorm.DB
	cache    StatsCache
	newToken func() string
}

func NewSurveyService(db *gorm.DB, cache StatsCache) *SurveyService {
	return &SurveyService{db: db, cache: cache, newToken: utils.GenerateSurveyToken}
}

// Create dựng survey + questions + choices trong một transaction.
// Token trùng thì làm lại cả transaction với token mới.
func (s *SurveyService) Create(ctx context.Context, ownerID uint, req CreateSurveyRequest) (*models.Survey, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		survey, err := s.create(ctx, ownerID, &req, s.newToken())
		if err == nil {
			return survey, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		log.Printf("survey token collision (attempt %d/%d)", attempt, maxTokenAttempts)
		lastErr = err
	}
	return nil, fmt.Errorf("could not allocate a unique survey token: %w", lastErr)
}

func (s *SurveyService) create(ctx context.Context, ownerID uint, req *CreateSurveyRequest, token string) (*models.Survey, error) {
	survey := models.Survey{
		Title:       req.Title,
		IsPublic:    req.IsPublic,
		Status:      req.Status,
		CreatedByID: ownerID,
		Token:       token,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&survey).Error; err != nil {
			return err
		}
		survey.Questions = make([]models.Question, 0, len(req.Questions))
		for idx, qr := range req.Questions {
			q := models.Question{
				SurveyID:   survey.ID,
				Text:       qr.Text,
				Type:       qr.Type,
				IsRequired: qr.IsRequired,
				Order:      idx,
			}
			if err := tx.Omit(clause.Associations).Create(&q).Error; err != nil {
				return err
			}
			q.Choices = make([]models.Choice, 0, len(qr.Choices))
			for _, text := range qr.Choices {
				ch := models.Choice{QuestionID: q.ID, Text: text}
				if err := tx.Create(&ch).Error; err != nil {
					return err
				}
				q.Choices = append(q.Choices, ch)
			}
			survey.Questions = append(survey.Questions, q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// List: survey của owner, mới nhất trước.
func (s *SurveyService) List(ctx context.Context, ownerID uint) ([]models.Survey, error) {
	surveys := []models.Survey{}
	if ownerID == 0 {
		return surveys, nil
	}
	err := s.db.WithContext(ctx).
		Where("created_by_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&surveys).Error
	return surveys, err
}

// ListPublic: survey public + active của mọi người.
func (s *SurveyService) ListPublic(ctx context.Context) ([]models.Survey, error) {
	surveys := []models.Survey{}
	err := s.db.WithContext(ctx).
		Where("is_public = ? AND status = ?", true, models.SurveyStatusActive).
		Order("created_at DESC, id DESC").
		Find(&surveys).Error
	return surveys, err
}

// GetOwned trả survey đầy đủ câu hỏi/lựa chọn cho chủ sở hữu.
func (s *SurveyService) GetOwned(ctx context.Context, id, ownerID uint) (*models.Survey, error) {
	if ownerID == 0 {
		return nil, ErrSurveyNotFound
	}
	var survey models.Survey
	err := s.withTree(s.db.WithContext(ctx)).
		Where("id = ? AND created_by_id = ?", id, ownerID).
		First(&survey).Error
	if err != nil {
		return nil, notFound(err, ErrSurveyNotFound)
	}
	return &survey, nil
}

// GetByToken áp dụng luật xem: public+active hoặc chủ sở hữu.
func (s *SurveyService) GetByToken(ctx context.Context, token string, viewerID uint) (*models.Survey, error) {
	if !utils.IsSurveyToken(token) {
		return nil, ErrSurveyNotFound
	}
	var survey models.Survey
	err := s.withTree(s.db.WithContext(ctx)).
		Where("token = ?", token).
		First(&survey).Error
	if err != nil {
		return nil, notFound(err, ErrSurveyNotFound)
	}
	if !CanView(&survey, viewerID) {
		return nil, ErrSurveyNotAccessible
	}
	return &survey, nil
}

func (s *SurveyService) withTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", orderQuestions).
		Preload("Questions.Choices", orderByID)
}

// Update chỉ sửa title / is_public / status. Token không đổi.
func (s *SurveyService) Update(ctx context.Context, id, ownerID uint, req UpdateSurveyRequest) (*models.Survey, error) {
	updates, err := req.updates()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	survey, err := loadOwnedSurvey(db, id, ownerID)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := db.Model(&models.Survey{}).Where("id = ?", survey.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetOwned(ctx, id, ownerID)
}

// Delete xoá survey cùng toàn bộ question/choice/session/response.
func (s *SurveyService) Delete(ctx context.Context, id, ownerID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := loadOwnedSurvey(tx, id, ownerID)
		if err != nil {
			return err
		}
		return deleteSurveyTree(tx, survey.ID)
	})
	if err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, id)
	return nil
}

// ReorderQuestions gán display_order theo vị trí trong danh sách id;
// các câu còn lại được đánh số tiếp theo.
func (s *SurveyService) ReorderQuestions(ctx context.Context, id, ownerID uint, req ReorderRequest) error {
	if err := validateStruct(&req).OrNil(); err != nil {
		return err
	}
	seen := make(map[uint]struct{}, len(req.Order))
	for i, qID := range req.Order {
		if _, dup := seen[qID]; dup {
			return ValidationErrors{fieldError(fmt.Sprintf("order[%d]", i), "duplicate_question",
				fmt.Sprintf("question %d listed more than once", qID))}
		}
		seen[qID] = struct{}{}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := loadOwnedSurvey(tx, id, ownerID)
		if err != nil {
			return err
		}

		// tất cả id phải thuộc survey
		var count int64
		if err := tx.Model(&models.Question{}).
			Where("survey_id = ? AND id IN ?", survey.ID, req.Order).
			Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(req.Order)) {
			return ValidationErrors{fieldError("order", "question_not_in_survey",
				"order contains questions that do not belong to this survey")}
		}

		// câu không có trong danh sách giữ thứ tự cũ, xếp sau các câu được liệt kê
		var rest []uint
		if err := tx.Model(&models.Question{}).
			Where("survey_id = ? AND id NOT IN ?", survey.ID, req.Order).
			Scopes(orderQuestions).
			Pluck("id", &rest).Error; err != nil {
			return err
		}

		for idx, qID := range append(append([]uint{}, req.Order...), rest...) {
			if err := tx.Model(&models.Question{}).
				Where("id = ? AND survey_id = ?", qID, survey.ID).
				Update("display_order", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, id)
	return nil
}
