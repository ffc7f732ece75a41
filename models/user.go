package models

import "time"

type User struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"column:email;size:254" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"` // bcrypt, không trả JSON
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Surveys []Survey `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}
