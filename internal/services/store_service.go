package services

import (
	"errors"
	"fmt"

	"panganlink/internal/models"
	"panganlink/internal/repositories"
)

// ErrStoreExists signals that the user already owns a store.
var ErrStoreExists = errors.New("pengguna sudah memiliki toko")

// StoreService handles business logic related to stores.
type StoreService struct {
	repo repositories.StoreRepository
}

// NewStoreService creates a new StoreService.
func NewStoreService(repo repositories.StoreRepository) *StoreService {
	return &StoreService{
		repo: repo,
	}
}

// CreateStore creates the user's store. New stores are marked verified
// straight away; a moderation flow would set this differently.
func (s *StoreService) CreateStore(store *models.Store) error {
	if existing, err := s.repo.GetByUserID(store.UserID); err == nil && existing != nil {
		return fmt.Errorf("user %s: %w", store.UserID, ErrStoreExists)
	}
	if store.StatusVerifikasi == "" {
		store.StatusVerifikasi = "terverifikasi"
	}
	if err := s.repo.Create(store); err != nil {
		return fmt.Errorf("failed to create toko: %w", err)
	}
	return nil
}

// GetStoreByUser retrieves the store owned by a user.
func (s *StoreService) GetStoreByUser(userID string) (*models.Store, error) {
	return s.repo.GetByUserID(userID)
}
