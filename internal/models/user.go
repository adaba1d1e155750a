package models

import "gorm.io/gorm"

// User represents a registered buyer or seller.
type User struct {
	ID           string `json:"user_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Nama         string `json:"nama" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Email        string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	PasswordHash string `json:"-" gorm:"column:password_hash;type:varchar(255)"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// TableName keeps the table name aligned with the original schema.
func (User) TableName() string {
	return "users"
}
