package models

// Response: một câu trả lời cho một câu hỏi trong một session.
// Chỉ một trong Choices / ScaleAnswer / TextAnswer có giá trị, tuỳ loại câu hỏi.
type Response struct {
	ID          uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID   uint    `gorm:"column:session_id;not null;index" json:"session"`
	QuestionID  uint    `gorm:"column:question_id;not null;index" json:"question"`
	ScaleAnswer *int    `gorm:"column:scale_answer" json:"scale_answer"`
	TextAnswer  *string `gorm:"column:text_answer;type:text" json:"text_answer"`

	Choices []Choice `gorm:"many2many:response_choices;constraint:OnDelete:CASCADE" json:"-"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) ChoiceIDs() []uint {
	ids := make([]uint, 0, len(r.Choices))
	for _, c := range r.Choices {
		ids = append(ids, c.ID)
	}
	return ids
}
