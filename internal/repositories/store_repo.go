package repositories

import "panganlink/internal/models"

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	Create(store *models.Store) error
	GetByID(id string) (*models.Store, error)
	GetByUserID(userID string) (*models.Store, error)
}
