package models

import "time"

// Order statuses. An order is always created as StatusBaru; later
// transitions are applied by the status-update operation only.
const (
	StatusBaru       = "Baru"
	StatusDiproses   = "Diproses"
	StatusDikirim    = "Dikirim"
	StatusSelesai    = "Selesai"
	StatusDibatalkan = "Dibatalkan"
)

// OrderItem is one product line belonging to exactly one order.
// HargaSaatPesan is the product price read under the row lock at
// placement time; it is never taken from the caller.
type OrderItem struct {
	PesananID      string  `json:"pesanan_id" gorm:"column:pesanan_id;primaryKey;type:varchar(36)"`
	ProdukID       string  `json:"produk_id" gorm:"column:produk_id;primaryKey;type:varchar(36)"`
	Jumlah         int     `json:"jumlah" gorm:"column:jumlah"`
	HargaSaatPesan float64 `json:"harga_saat_pesan" gorm:"column:harga_saat_pesan"`
}

func (OrderItem) TableName() string {
	return "detail_pesanan"
}

// Order is the header record for one checkout.
type Order struct {
	ID               string      `json:"pesanan_id" gorm:"primaryKey;type:varchar(36)"`
	UserID           string      `json:"user_id" gorm:"column:user_id;type:varchar(36);index"`
	TotalHarga       float64     `json:"total_harga" gorm:"column:total_harga"`
	AlamatPengiriman string      `json:"alamat_pengiriman" gorm:"column:alamat_pengiriman;type:varchar(500)"`
	StatusPesanan    string      `json:"status_pesanan" gorm:"column:status_pesanan;type:varchar(20)"`
	Items            []OrderItem `json:"items" gorm:"foreignKey:PesananID"`
	TanggalPesanan   time.Time   `json:"tanggal_pesanan" gorm:"column:tanggal_pesanan"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "pesanan"
}

// CheckoutItem is one requested line in a checkout. Any price the client
// might send is deliberately absent here.
type CheckoutItem struct {
	ProdukID string `json:"id" validate:"required"`
	Jumlah   int    `json:"quantity"`
}

// CheckoutRequest is the inbound body for order placement.
type CheckoutRequest struct {
	UserID           string         `json:"user_id" validate:"required"`
	TotalHarga       float64        `json:"total_harga" validate:"required,gt=0"`
	AlamatPengiriman string         `json:"alamat_pengiriman" validate:"required"`
	Items            []CheckoutItem `json:"items"`
}

// StoreOrderSummary is one row of the orders-by-store listing: every
// distinct order containing at least one product of the store, joined
// with the buyer's name.
type StoreOrderSummary struct {
	PesananID      string    `json:"pesanan_id"`
	TanggalPesanan time.Time `json:"tanggal_pesanan"`
	TotalHarga     float64   `json:"total_harga"`
	StatusPesanan  string    `json:"status_pesanan"`
	NamaPembeli    string    `json:"nama_pembeli"`
}
