package services

import (
	"context"
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-collector/models"
)

// Số câu trả lời text mẫu trả về cho mỗi câu hỏi.
const textSampleSize = 5

// StatsCache lưu snapshot thống kê theo survey. Get trả (nil, nil) khi miss.
type StatsCache interface {
	Get(ctx context.Context, surveyID uint) ([]QuestionStats, error)
	Set(ctx context.Context, surveyID uint, stats []QuestionStats) error
	Invalidate(ctx context.Context, surveyID uint) error
}

type ChoiceCount struct {
	ChoiceID uint   `json:"choice_id"`
	Text     string `json:"text"`
	Count    int64  `json:"count"`
}

// ScaleSummary: Average = 0 khi chưa có dữ liệu, Count phân biệt hai trường hợp.
type ScaleSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// QuestionStats.Answers là []ChoiceCount, []ScaleSummary hoặc []string tuỳ Type.
type QuestionStats struct {
	QuestionID uint        `json:"question_id"`
	Text       string      `json:"text"`
	Type       string      `json:"type"`
	Answers    interface{} `json:"answers"`
}

func (qs *QuestionStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		QuestionID uint            `json:"question_id"`
		Text       string          `json:"text"`
		Type       string          `json:"type"`
		Answers    json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	qs.QuestionID, qs.Text, qs.Type = raw.QuestionID, raw.Text, raw.Type

	switch raw.Type {
	case models.QuestionSingleChoice, models.QuestionMultipleChoice:
		var v []ChoiceCount
		if err := json.Unmarshal(raw.Answers, &v); err != nil {
			return err
		}
		qs.Answers = v
	case models.QuestionScale:
		var v []ScaleSummary
		if err := json.Unmarshal(raw.Answers, &v); err != nil {
			return err
		}
		qs.Answers = v
	default:
		var v []string
		if err := json.Unmarshal(raw.Answers, &v); err != nil {
			return err
		}
		qs.Answers = v
	}
	return nil
}

type StatsService struct {
	db    *gorm.DB
	cache StatsCache
}

// cache có thể nil: luôn tính lại từ DB.
func NewStatsService(db *gorm.DB, cache StatsCache) *StatsService {
	return &StatsService{db: db, cache: cache}
}

// SurveyStats tổng hợp thống kê cho chủ survey.
func (s *StatsService) SurveyStats(ctx context.Context, surveyID, ownerID uint) ([]QuestionStats, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOwnedSurvey(db, surveyID, ownerID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, surveyID)
		if err != nil {
			log.Printf("stats cache get survey=%d: %v", surveyID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.compute(db, surveyID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, surveyID, stats); err != nil {
			log.Printf("stats cache set survey=%d: %v", surveyID, err)
		}
	}
	return stats, nil
}

func (s *StatsService) compute(db *gorm.DB, surveyID uint) ([]QuestionStats, error) {
	var questions []models.Question
	if err := db.Preload("Choices", orderByID).
		Scopes(orderQuestions).
		Where("survey_id = ?", surveyID).
		Find(&questions).Error; err != nil {
		return nil, err
	}

	out := make([]QuestionStats, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		item := QuestionStats{QuestionID: q.ID, Text: q.Text, Type: q.Type}

		var err error
		switch q.Type {
		case models.QuestionSingleChoice, models.QuestionMultipleChoice:
			item.Answers, err = choiceCounts(db, q)
		case models.QuestionScale:
			item.Answers, err = scaleSummary(db, q.ID)
		case models.QuestionText:
			item.Answers, err = textSample(db, q.ID)
		default:
			item.Answers = []string{}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func choiceCounts(db *gorm.DB, q *models.Question) ([]ChoiceCount, error) {
	var rows []struct {
		ChoiceID uint
		Count    int64
	}
	err := db.Table("response_choices").
		Select("response_choices.choice_id AS choice_id, COUNT(*) AS count").
		Joins("JOIN responses ON responses.id = response_choices.response_id").
		Where("responses.question_id = ?", q.ID).
		Group("response_choices.choice_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ChoiceID] = r.Count
	}

	out := make([]ChoiceCount, 0, len(q.Choices))
	for _, c := range q.Choices {
		out = append(out, ChoiceCount{ChoiceID: c.ID, Text: c.Text, Count: counts[c.ID]})
	}
	return out, nil
}

func scaleSummary(db *gorm.DB, questionID uint) ([]ScaleSummary, error) {
	var row struct {
		Average *float64
		Count   int64
	}
	err := db.Model(&models.Response{}).
		Select("AVG(CAST(scale_answer AS FLOAT)) AS average, COUNT(scale_answer) AS count").
		Where("question_id = ?", questionID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	summary := ScaleSummary{Count: row.Count}
	if row.Average != nil && row.Count > 0 {
		summary.Average = *row.Average
	}
	return []ScaleSummary{summary}, nil
}

func textSample(db *gorm.DB, questionID uint) ([]string, error) {
	texts := []string{}
	err := db.Model(&models.Response{}).
		Where("question_id = ? AND text_answer IS NOT NULL AND text_answer <> ''", questionID).
		Order("id ASC").
		Limit(textSampleSize).
		Pluck("text_answer", &texts).Error
	if err != nil {
		return nil, err
	}
	return texts, nil
}

// invalidateStats được gọi sau mọi thay đổi dưới một survey; lỗi cache chỉ log.
func invalidateStats(ctx context.Context, cache StatsCache, surveyID uint) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, surveyID); err != nil {
		log.Printf("stats cache invalidate survey=%d: %v", surveyID, err)
	}
}
