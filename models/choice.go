package models

type Choice struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"column:question_id;not null;index" json:"question"`
	Text       string `gorm:"column:text;size:255;not null" json:"text"`
}

func (Choice) TableName() string {
	return "choices"
}
