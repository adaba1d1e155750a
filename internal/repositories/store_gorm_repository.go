package repositories

import (
	"fmt"

	"panganlink/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// Create creates a new store in the database.
func (r *GORMStoreRepository) Create(store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	if err := r.db.Create(store).Error; err != nil {
		return fmt.Errorf("failed to create toko: %w", err)
	}
	return nil
}

// GetByID retrieves a store by its ID.
func (r *GORMStoreRepository) GetByID(id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("toko with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get toko by ID %s: %w", id, err)
	}
	return &store, nil
}

// GetByUserID retrieves the store owned by a user.
func (r *GORMStoreRepository) GetByUserID(userID string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("toko for user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get toko for user %s: %w", userID, err)
	}
	return &store, nil
}
