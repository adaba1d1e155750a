package repositories

import (
	"fmt"
	"sync"

	"panganlink/internal/models"

	"github.com/google/uuid"
)

// MockStoreRepository is an in-memory implementation of StoreRepository.
type MockStoreRepository struct {
	stores map[string]models.Store
	mu     sync.RWMutex
}

// NewMockStoreRepository creates a new instance of MockStoreRepository.
func NewMockStoreRepository() *MockStoreRepository {
	return &MockStoreRepository{
		stores: make(map[string]models.Store),
	}
}

// Create adds a new store, enforcing one store per user like the unique
// index does in the database.
func (r *MockStoreRepository) Create(store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stores {
		if s.UserID == store.UserID {
			return fmt.Errorf("toko for user %s already exists", store.UserID)
		}
	}
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	r.stores[store.ID] = *store
	return nil
}

// GetByID returns a store by its ID.
func (r *MockStoreRepository) GetByID(id string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("toko with ID %s not found", id)
	}
	return &store, nil
}

// GetByUserID returns the store owned by a user.
func (r *MockStoreRepository) GetByUserID(userID string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stores {
		if s.UserID == userID {
			store := s
			return &store, nil
		}
	}
	return nil, fmt.Errorf("toko for user %s not found", userID)
}
