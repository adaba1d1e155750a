package models

import "gorm.io/gorm"

// Category groups products for catalog browsing.
type Category struct {
	ID           string `json:"kategori_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	NamaKategori string `json:"nama_kategori" gorm:"column:nama_kategori;uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

func (Category) TableName() string {
	return "kategori"
}
