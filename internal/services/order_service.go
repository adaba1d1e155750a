package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"panganlink/internal/models"
	"panganlink/internal/repositories"
	"panganlink/pkg/metrics"
)

// Caller errors rejected before any transaction is opened.
var (
	ErrEmptyOrder      = errors.New("keranjang tidak boleh kosong")
	ErrInvalidQuantity = errors.New("jumlah item harus lebih dari nol")
)

// OrderEventPublisher publishes order events to the message broker.
// *rabbitmq.Client satisfies it; tests substitute a mock.
type OrderEventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher OrderEventPublisher
	metrics   *metrics.OrderMetrics
	txTimeout time.Duration
}

// NewOrderService creates a new OrderService. publisher and m may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, publisher OrderEventPublisher, m *metrics.OrderMetrics, txTimeout time.Duration) *OrderService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		metrics:   m,
		txTimeout: txTimeout,
	}
}

// PlaceOrder validates the checkout request and runs it through the
// placement transaction. The transaction is bounded by txTimeout so a
// stuck lock cannot hold a pooled connection forever.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.CheckoutRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Jumlah <= 0 {
			return nil, fmt.Errorf("produk %s (quantity %d): %w", item.ProdukID, item.Jumlah, ErrInvalidQuantity)
		}
	}

	order := &models.Order{
		UserID:           req.UserID,
		TotalHarga:       req.TotalHarga,
		AlamatPengiriman: req.AlamatPengiriman,
		Items:            make([]models.OrderItem, 0, len(req.Items)),
	}
	// The same product on several request lines collapses into one order
	// line; detail_pesanan holds one row per (pesanan, produk).
	lineIndex := make(map[string]int, len(req.Items))
	for _, item := range req.Items {
		if i, ok := lineIndex[item.ProdukID]; ok {
			order.Items[i].Jumlah += item.Jumlah
			continue
		}
		lineIndex[item.ProdukID] = len(order.Items)
		order.Items = append(order.Items, models.OrderItem{
			ProdukID: item.ProdukID,
			Jumlah:   item.Jumlah,
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	start := time.Now()
	if err := s.orderRepo.PlaceOrder(txCtx, order); err != nil {
		s.metrics.ObserveFailure(failureReason(err))
		return nil, err
	}
	s.metrics.ObserveSuccess(time.Since(start))

	s.publishOrderCreated(order)
	return order, nil
}

// failureReason maps a placement error onto a metric label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, repositories.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, repositories.ErrTotalMismatch):
		return "total_mismatch"
	default:
		return "storage"
	}
}

// publishOrderCreated emits a pesanan.created event. Publish failures are
// logged and swallowed: the order is already committed.
func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.publisher == nil {
		log.Println("Event publisher is not initialized. Skipping message publication.")
		return
	}

	event := map[string]interface{}{
		"pesanan_id":  order.ID,
		"user_id":     order.UserID,
		"total_harga": order.TotalHarga,
		"status":      order.StatusPesanan,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event to JSON: %v", err)
		return
	}
	// The default exchange routes straight to the durable order queue; the
	// event kind travels as the routing key.
	if err := s.publisher.Publish("", "pesanan.created", body); err != nil {
		log.Printf("Warning: Failed to publish created event for order %s: %v", order.ID, err)
		return
	}
	log.Printf("Published created event for order %s", order.ID)
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrdersByStore lists orders containing products of one store.
func (s *OrderService) GetOrdersByStore(tokoID string) ([]models.StoreOrderSummary, error) {
	return s.orderRepo.ListByStore(tokoID)
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	validStatuses := map[string]bool{
		models.StatusBaru:       true,
		models.StatusDiproses:   true,
		models.StatusDikirim:    true,
		models.StatusSelesai:    true,
		models.StatusDibatalkan: true,
	}
	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("invalid order status: %s", status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}
