package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"panganlink/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// totalTolerance absorbs float rounding when reconciling the declared
// total against the sum of line totals.
const totalTolerance = 0.005

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// lockForUpdate makes the next query take a row-level exclusive lock, so
// concurrent placements touching the same product serialize on the store
// rather than race. SQLite has no FOR UPDATE clause; its single-writer
// transaction lock already serializes the same case.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// PlaceOrder runs the whole placement as one transaction: insert the
// header, then per line lock the product row, verify stock, decrement it
// and insert the detail row with the just-read price. The closure
// returning an error rolls everything back; returning nil commits.
// Connection acquisition and release on every path is owned by
// gorm/database/sql.
func (r *GORMOrderRepository) PlaceOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.StatusPesanan = models.StatusBaru
	order.TanggalPesanan = time.Now()

	// Lock products in a deterministic order across all calls so two
	// orders touching the same pair of products cannot deadlock.
	sort.Slice(order.Items, func(i, j int) bool {
		return order.Items[i].ProdukID < order.Items[j].ProdukID
	})

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert pesanan: %w", err)
		}

		var computed float64
		for i := range order.Items {
			item := &order.Items[i]
			item.PesananID = order.ID

			var product models.Product
			if err := lockForUpdate(tx).First(&product, "id = ?", item.ProdukID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("produk %s: %w", item.ProdukID, ErrProductNotFound)
				}
				return fmt.Errorf("failed to lock produk %s: %w", item.ProdukID, err)
			}

			if product.Stok < item.Jumlah {
				return fmt.Errorf("%s (diminta %d, tersisa %d): %w",
					product.NamaProduk, item.Jumlah, product.Stok, ErrInsufficientStock)
			}

			if err := tx.Model(&product).Update("stok", product.Stok-item.Jumlah).Error; err != nil {
				return fmt.Errorf("failed to decrement stok for produk %s: %w", item.ProdukID, err)
			}

			// The price stored on the line is the one read under the lock,
			// never anything supplied by the caller.
			item.HargaSaatPesan = product.Harga
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to insert detail_pesanan: %w", err)
			}
			computed += float64(item.Jumlah) * product.Harga
		}

		if math.Abs(computed-order.TotalHarga) > totalTolerance {
			return fmt.Errorf("total_harga %.2f, jumlah item %.2f: %w",
				order.TotalHarga, computed, ErrTotalMismatch)
		}
		return nil
	})
}

// GetAll returns all orders with their lines, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("tanggal_pesanan DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID returns an order and its lines.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByStore returns every distinct order that contains at least one
// product of the given store, joined with the buyer's name.
func (r *GORMOrderRepository) ListByStore(tokoID string) ([]models.StoreOrderSummary, error) {
	var rows []models.StoreOrderSummary
	err := r.db.
		Table("pesanan p").
		Select("DISTINCT p.id AS pesanan_id, p.tanggal_pesanan, p.total_harga, p.status_pesanan, u.nama AS nama_pembeli").
		Joins("JOIN detail_pesanan dp ON p.id = dp.pesanan_id").
		Joins("JOIN produk pr ON dp.produk_id = pr.id").
		Joins("JOIN users u ON p.user_id = u.id").
		Where("pr.toko_id = ?", tokoID).
		Order("p.tanggal_pesanan DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for toko %s: %w", tokoID, err)
	}
	return rows, nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status_pesanan", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update", id)
	}
	return nil
}
