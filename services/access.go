package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-collector/models"
)

// CanManage: chỉ người tạo survey được sửa/xoá/xem thống kê.
func CanManage(s *models.Survey, userID uint) bool {
	return s != nil && userID != 0 && s.CreatedByID == userID
}

// CanView: survey public + active, hoặc là chủ sở hữu.
func CanView(s *models.Survey, userID uint) bool {
	if s == nil {
		return false
	}
	return s.IsOpen() || CanManage(s, userID)
}

/* ===== Subquery theo chuỗi sở hữu: survey -> question -> choice / session -> response ===== */

func ownedSurveyIDs(db *gorm.DB, ownerID uint) *gorm.DB {
	return db.Model(&models.Survey{}).Select("id").Where("created_by_id = ?", ownerID)
}

func ownedQuestionIDs(db *gorm.DB, ownerID uint) *gorm.DB {
	return db.Model(&models.Question{}).Select("id").Where("survey_id IN (?)", ownedSurveyIDs(db, ownerID))
}

func ownedSessionIDs(db *gorm.DB, ownerID uint) *gorm.DB {
	return db.Model(&models.SurveySession{}).Select("id").Where("survey_id IN (?)", ownedSurveyIDs(db, ownerID))
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC, id ASC")
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// loadOwnedSurvey trả ErrSurveyNotFound cho cả "không tồn tại" lẫn "không phải chủ".
func loadOwnedSurvey(db *gorm.DB, id, ownerID uint) (*models.Survey, error) {
	if ownerID == 0 {
		return nil, ErrSurveyNotFound
	}
	var s models.Survey
	err := db.Where("id = ? AND created_by_id = ?", id, ownerID).First(&s).Error
	if err != nil {
		return nil, notFound(err, ErrSurveyNotFound)
	}
	return &s, nil
}

func loadOwnedQuestion(db *gorm.DB, id, ownerID uint) (*models.Question, error) {
	if ownerID == 0 {
		return nil, ErrQuestionNotFound
	}
	var q models.Question
	err := db.Preload("Choices", orderByID).
		Where("id = ? AND survey_id IN (?)", id, ownedSurveyIDs(db, ownerID)).
		First(&q).Error
	if err != nil {
		return nil, notFound(err, ErrQuestionNotFound)
	}
	return &q, nil
}

// notFound đổi gorm.ErrRecordNotFound thành sentinel của domain.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
