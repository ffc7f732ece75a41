package services

import (
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-collector/models"
)

// Xoá theo thứ tự: response_choices -> responses -> sessions -> choices -> questions -> survey.
// FK đã có ON DELETE CASCADE nhưng vẫn dọn tường minh trong cùng transaction.

func deleteResponseChoices(tx *gorm.DB, responseIDs interface{}) error {
	return tx.Exec("DELETE FROM response_choices WHERE response_id IN (?)", responseIDs).Error
}

func deleteSurveyTree(tx *gorm.DB, surveyID uint) error {
	questionIDs := tx.Model(&models.Question{}).Select("id").Where("survey_id = ?", surveyID)
	sessionIDs := tx.Model(&models.SurveySession{}).Select("id").Where("survey_id = ?", surveyID)
	responseIDs := tx.Model(&models.Response{}).Select("id").
		Where("question_id IN (?) OR session_id IN (?)", questionIDs, sessionIDs)

	if err := deleteResponseChoices(tx, responseIDs); err != nil {
		return err
	}
	if err := tx.Where("question_id IN (?) OR session_id IN (?)", questionIDs, sessionIDs).
		Delete(&models.Response{}).Error; err != nil {
		return err
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&models.SurveySession{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Choice{}).Error; err != nil {
		return err
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&models.Question{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Survey{}, surveyID).Error
}

// deleteQuestionTree xoá question và dồn display_order của các câu phía sau.
func deleteQuestionTree(tx *gorm.DB, q *models.Question) error {
	responseIDs := tx.Model(&models.Response{}).Select("id").Where("question_id = ?", q.ID)
	if err := deleteResponseChoices(tx, responseIDs); err != nil {
		return err
	}
	if err := tx.Where("question_id = ?", q.ID).Delete(&models.Response{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id = ?", q.ID).Delete(&models.Choice{}).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.Question{}, q.ID).Error; err != nil {
		return err
	}
	// Dồn thứ tự: các câu phía sau lùi 1
	return tx.Model(&models.Question{}).
		Where("survey_id = ? AND display_order > ?", q.SurveyID, q.Order).
		Update("display_order", gorm.Expr("display_order - 1")).Error
}

// deleteChoiceTree: response chỉ còn lại 0 lựa chọn thì bị xoá theo.
func deleteChoiceTree(tx *gorm.DB, choiceID uint) error {
	var affected []uint
	if err := tx.Table("response_choices").Where("choice_id = ?", choiceID).Pluck("response_id", &affected).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM response_choices WHERE choice_id = ?", choiceID).Error; err != nil {
		return err
	}
	if len(affected) > 0 {
		stillLinked := tx.Table("response_choices").Select("response_id").Where("response_id IN ?", affected)
		if err := tx.Where("id IN ? AND id NOT IN (?)", affected, stillLinked).Delete(&models.Response{}).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.Choice{}, choiceID).Error
}

func deleteSessionTree(tx *gorm.DB, sessionID uint) error {
	responseIDs := tx.Model(&models.Response{}).Select("id").Where("session_id = ?", sessionID)
	if err := deleteResponseChoices(tx, responseIDs); err != nil {
		return err
	}
	if err := tx.Where("session_id = ?", sessionID).Delete(&models.Response{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.SurveySession{}, sessionID).Error
}

func deleteResponseTree(tx *gorm.DB, responseID uint) error {
	if err := tx.Exec("DELETE FROM response_choices WHERE response_id = ?", responseID).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Response{}, responseID).Error
}

// setResponseChoices ghi lại toàn bộ liên kết response <-> choice.
func setResponseChoices(tx *gorm.DB, responseID uint, choiceIDs []uint) error {
	if err := tx.Exec("DELETE FROM response_choices WHERE response_id = ?", responseID).Error; err != nil {
		return err
	}
	for _, id := range choiceIDs {
		if err := tx.Exec("INSERT INTO response_choices (response_id, choice_id) VALUES (?, ?)", responseID, id).Error; err != nil {
			return err
		}
	}
	return nil
}
