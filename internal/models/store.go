package models

import "gorm.io/gorm"

// Store represents a seller's store. A user owns at most one store,
// enforced by the unique index on UserID.
type Store struct {
	ID               string `json:"toko_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID           string `json:"user_id" gorm:"column:user_id;uniqueIndex;type:varchar(36)" validate:"required"`
	NamaToko         string `json:"nama_toko" gorm:"column:nama_toko;type:varchar(100)" validate:"required,min=3,max=100"`
	Deskripsi        string `json:"deskripsi" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	StatusVerifikasi string `json:"status_verifikasi" gorm:"column:status_verifikasi;type:varchar(20)"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

func (Store) TableName() string {
	return "toko"
}
