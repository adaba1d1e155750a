package repositories

import (
	"context"
	"errors"

	"panganlink/internal/models"
)

// Business failures of the order placement transaction. Implementations
// wrap these with product-identifying detail; callers classify with
// errors.Is. Anything else coming out of PlaceOrder is a storage failure.
var (
	ErrProductNotFound   = errors.New("produk tidak ditemukan")
	ErrInsufficientStock = errors.New("stok tidak mencukupi")
	ErrTotalMismatch     = errors.New("total harga tidak sesuai dengan item pesanan")
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// PlaceOrder atomically creates the order header and its lines while
	// verifying and decrementing stock. On any failure the store is left
	// exactly as it was. The order's Items must carry ProdukID and Jumlah;
	// HargaSaatPesan is filled in from the locked product rows. The context
	// bounds the whole transaction.
	PlaceOrder(ctx context.Context, order *models.Order) error

	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	ListByStore(tokoID string) ([]models.StoreOrderSummary, error)
	UpdateStatus(id string, status string) error
}
