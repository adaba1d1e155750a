package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"panganlink/internal/models"
	"panganlink/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StoreHandler handles HTTP requests for stores.
type StoreHandler struct {
	storeService   *services.StoreService
	productService *services.ProductService
	validate       *validator.Validate
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(storeService *services.StoreService, productService *services.ProductService) *StoreHandler {
	return &StoreHandler{
		storeService:   storeService,
		productService: productService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers store routes. Store lookups are public;
// creating a store requires auth.
func (h *StoreHandler) RegisterRoutes(public fiber.Router, protected fiber.Router) {
	public.Get("/toko/by-user/:userId", h.HandleGetStoreByUser)
	public.Get("/toko/:tokoId/produk", h.HandleGetStoreProducts)
	protected.Post("/toko", h.HandleCreateStore)
}

// HandleCreateStore creates the caller's store.
func (h *StoreHandler) HandleCreateStore(c *fiber.Ctx) error {
	var store models.Store
	if err := c.BodyParser(&store); err != nil {
		log.Printf("Error parsing create toko body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(store); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.storeService.CreateStore(&store); err != nil {
		if errors.Is(err, services.ErrStoreExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Anda sudah memiliki toko.",
			})
		}
		log.Printf("Error creating toko: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create toko",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// HandleGetStoreByUser retrieves the store owned by a user.
func (h *StoreHandler) HandleGetStoreByUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	store, err := h.storeService.GetStoreByUser(userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Toko untuk pengguna ini tidak ditemukan.",
			})
		}
		log.Printf("Error getting toko for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve toko",
			"error":   err.Error(),
		})
	}
	return c.JSON(store)
}

// HandleGetStoreProducts retrieves all products of one store.
func (h *StoreHandler) HandleGetStoreProducts(c *fiber.Ctx) error {
	tokoID := c.Params("tokoId")
	products, err := h.productService.GetProductsByStore(tokoID)
	if err != nil {
		log.Printf("Error getting products for toko %s: %v", tokoID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}
