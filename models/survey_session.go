package models

import "time"

// SurveySession là một lượt trả lời ẩn danh.
type SurveySession struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID  uint      `gorm:"column:survey_id;not null;index" json:"survey"`
	IPAddress string    `gorm:"column:ip_address;size:45" json:"ip_address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Responses []Response `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SurveySession) TableName() string {
	return "survey_sessions"
}
