package models

import "time"

const (
	SurveyStatusActive   = "active"
	SurveyStatusInactive = "inactive"
)

type Survey struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	IsPublic    bool      `gorm:"column:is_public;not null" json:"is_public"`
	Status      string    `gorm:"column:status;size:20;not null" json:"status"` // active | inactive
	CreatedByID uint      `gorm:"column:created_by_id;not null;index" json:"created_by"`
	Token       string    `gorm:"column:token;size:32;not null;uniqueIndex" json:"token"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Quan hệ
	Questions []Question      `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions"`
	Sessions  []SurveySession `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

// IsOpen: public và đang active, ai cũng xem được.
func (s *Survey) IsOpen() bool {
	return s.IsPublic && s.Status == SurveyStatusActive
}
