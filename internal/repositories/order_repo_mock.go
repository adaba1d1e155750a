package repositories

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"panganlink/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Its mutex plays the role the database row locks play in the GORM
// implementation: placements are fully serialized, so the stage-then-apply
// shape below is atomic.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products ProductRepository
	users    UserRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
// The product and user repositories back stock checks and the
// orders-by-store listing.
func NewMockOrderRepository(products ProductRepository, users UserRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
		users:    users,
	}
}

// PlaceOrder verifies every line before applying any mutation, so a
// failing line leaves products and orders untouched.
func (r *MockOrderRepository) PlaceOrder(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	sort.Slice(order.Items, func(i, j int) bool {
		return order.Items[i].ProdukID < order.Items[j].ProdukID
	})

	// Stage stock decrements per product. A second line for the same
	// product fails the same way the composite key on detail_pesanan does;
	// the service has already collapsed duplicates by then.
	staged := make(map[string]*models.Product)
	var computed float64
	for i := range order.Items {
		item := &order.Items[i]
		if _, dup := staged[item.ProdukID]; dup {
			return fmt.Errorf("duplicate detail_pesanan line for produk %s", item.ProdukID)
		}
		product, err := r.products.GetByID(item.ProdukID)
		if err != nil {
			return fmt.Errorf("produk %s: %w", item.ProdukID, ErrProductNotFound)
		}
		staged[item.ProdukID] = product
		if product.Stok < item.Jumlah {
			return fmt.Errorf("%s (diminta %d, tersisa %d): %w",
				product.NamaProduk, item.Jumlah, product.Stok, ErrInsufficientStock)
		}
		product.Stok -= item.Jumlah
		item.HargaSaatPesan = product.Harga
		computed += float64(item.Jumlah) * product.Harga
	}
	if math.Abs(computed-order.TotalHarga) > totalTolerance {
		return fmt.Errorf("total_harga %.2f, jumlah item %.2f: %w",
			order.TotalHarga, computed, ErrTotalMismatch)
	}

	for _, product := range staged {
		if err := r.products.Update(product); err != nil {
			return fmt.Errorf("failed to apply stock decrement: %w", err)
		}
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.StatusPesanan = models.StatusBaru
	order.TanggalPesanan = time.Now()
	order.UpdatedAt = order.TanggalPesanan
	for i := range order.Items {
		order.Items[i].PesananID = order.ID
	}
	r.orders[order.ID] = *order
	return nil
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return &order, nil
}

// ListByStore returns orders containing at least one product of the store.
func (r *MockOrderRepository) ListByStore(tokoID string) ([]models.StoreOrderSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]models.StoreOrderSummary, 0)
	for _, order := range r.orders {
		belongs := false
		for _, item := range order.Items {
			p, err := r.products.GetByID(item.ProdukID)
			if err == nil && p.TokoID == tokoID {
				belongs = true
				break
			}
		}
		if !belongs {
			continue
		}
		nama := ""
		if u, err := r.users.GetByID(order.UserID); err == nil {
			nama = u.Nama
		}
		summaries = append(summaries, models.StoreOrderSummary{
			PesananID:      order.ID,
			TanggalPesanan: order.TanggalPesanan,
			TotalHarga:     order.TotalHarga,
			StatusPesanan:  order.StatusPesanan,
			NamaPembeli:    nama,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TanggalPesanan.After(summaries[j].TanggalPesanan)
	})
	return summaries, nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for status update", id)
	}
	order.StatusPesanan = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
