package models

import "gorm.io/gorm"

// Product represents a product listed by a store.
// Stock is only ever decremented by the order placement transaction.
type Product struct {
	ID         string  `json:"produk_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	TokoID     string  `json:"toko_id" gorm:"column:toko_id;type:varchar(36);index" validate:"required"`
	KategoriID string  `json:"kategori_id" gorm:"column:kategori_id;type:varchar(36)" validate:"omitempty"`
	NamaProduk string  `json:"nama_produk" gorm:"column:nama_produk;type:varchar(100)" validate:"required,min=3,max=100"`
	Deskripsi  string  `json:"deskripsi" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Harga      float64 `json:"harga" validate:"required,gt=0"`
	Satuan     string  `json:"satuan" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Stok       int     `json:"stok" validate:"gte=0"`
	URLGambar  string  `json:"url_gambar" gorm:"column:url_gambar;type:varchar(500)" validate:"omitempty,url"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

func (Product) TableName() string {
	return "produk"
}
