package models

const (
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
	QuestionScale          = "scale"
	QuestionText           = "text"
)

type Question struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID   uint   `gorm:"column:survey_id;not null;index" json:"survey"`
	Text       string `gorm:"column:text;size:255;not null" json:"text"`
	Type       string `gorm:"column:question_type;size:20;not null" json:"question_type"`
	IsRequired bool   `gorm:"column:is_required;not null" json:"is_required"`
	Order      int    `gorm:"column:display_order;not null" json:"order"`

	Choices   []Choice   `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices"`
	Responses []Response `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) HasChoices() bool {
	return IsChoiceType(q.Type)
}

func IsChoiceType(t string) bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice
}

func IsQuestionType(t string) bool {
	switch t {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionScale, QuestionText:
		return true
	}
	return false
}
