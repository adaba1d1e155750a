package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"panganlink/internal/handlers"
	"panganlink/internal/middleware"
	"panganlink/internal/models"
	"panganlink/internal/repositories"
	"panganlink/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired the way main does it.
func setupApp() (*fiber.App, *services.AuthService, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Each app gets its own named in-memory database.
	dsn := fmt.Sprintf("file:handlers%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Store{},
		&models.Category{}, &models.Order{}, &models.OrderItem{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	productService := services.NewProductService(productRepo)
	storeService := services.NewStoreService(storeRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	orderService := services.NewOrderService(orderRepo, nil, nil, 0) // no broker, no metrics

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	storeHandler := handlers.NewStoreHandler(storeService, productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	protected := apiV1.Group("", middleware.AuthRequired(authService))

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, protected)
	storeHandler.RegisterRoutes(apiV1, protected)
	categoryHandler.RegisterRoutes(apiV1, protected)
	orderHandler.RegisterRoutes(protected)

	return app, authService, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		// Listing endpoints return arrays; those tests decode raw themselves.
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// registerAndLogin creates a user and returns its id and a bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, nama, email string) (string, string) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"nama":     nama,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	userID := user["user_id"].(string)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)
	require.NotEmpty(t, token)
	return userID, token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp()
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"nama":     "Budi Santoso",
		"email":    "budi@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Pengguna berhasil terdaftar", body["message"])

	// Duplicate email
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"nama":     "Budi Kedua",
		"email":    "budi@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "budi@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "budi@example.com", claims["email"])
	assert.Contains(t, claims, "user_id")

	// Wrong password gets the same generic message as unknown email.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "budi@example.com",
		"password": "salah",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Email atau password salah", body["message"])
}

func TestProductCRUDAndStoreEndpoints(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	userID, token := registerAndLogin(t, app, "Siti", "siti@example.com")

	// Create a store for the seller.
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/toko", token, map[string]string{
		"user_id":   userID,
		"nama_toko": "Toko Siti",
		"deskripsi": "Sayur dan sembako",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tokoID := body["toko_id"].(string)
	assert.Equal(t, "terverifikasi", body["status_verifikasi"])

	// A second store for the same user is rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/toko", token, map[string]string{
		"user_id":   userID,
		"nama_toko": "Toko Kedua",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Store lookup by user is public.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/toko/by-user/"+userID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tokoID, body["toko_id"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/toko/by-user/no-such-user", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Create a product.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/produk", token, map[string]interface{}{
		"toko_id":     tokoID,
		"nama_produk": "Beras Premium 5kg",
		"deskripsi":   "Beras pulen",
		"harga":       68000,
		"satuan":      "karung",
		"stok":        40,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	produkID := body["produk_id"].(string)

	// Validation failure.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/produk", token, map[string]interface{}{
		"toko_id":     tokoID,
		"nama_produk": "X", // too short
		"harga":       0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Public reads.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/produk/"+produkID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Beras Premium 5kg", body["nama_produk"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/produk/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Products of the store.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/toko/"+tokoID+"/produk", nil)
	restResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, restResp.StatusCode)
	var products []models.Product
	require.NoError(t, json.NewDecoder(restResp.Body).Decode(&products))
	restResp.Body.Close()
	assert.Len(t, products, 1)

	// Update and delete require auth.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/produk/"+produkID, "", map[string]interface{}{"harga": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPut, "/api/v1/produk/"+produkID, token, map[string]interface{}{
		"toko_id":     tokoID,
		"nama_produk": "Beras Premium 10kg",
		"harga":       130000,
		"satuan":      "karung",
		"stok":        20,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Beras Premium 10kg", body["nama_produk"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/produk/"+produkID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/produk/"+produkID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryEndpoints(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	_, token := registerAndLogin(t, app, "Siti", "siti2@example.com")

	for _, nama := range []string{"Sayuran", "Beras"} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/kategori", token, map[string]string{
			"nama_kategori": nama,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kategori", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []models.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	resp.Body.Close()
	require.Len(t, categories, 2)
	// Ordered by name.
	assert.Equal(t, "Beras", categories[0].NamaKategori)
	assert.Equal(t, "Sayuran", categories[1].NamaKategori)
}

func TestOrderPlacementEndToEnd(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	sellerID, sellerToken := registerAndLogin(t, app, "Siti", "penjual@example.com")
	buyerID, buyerToken := registerAndLogin(t, app, "Budi", "pembeli@example.com")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/toko", sellerToken, map[string]string{
		"user_id":   sellerID,
		"nama_toko": "Toko Siti",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tokoID := body["toko_id"].(string)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/produk", sellerToken, map[string]interface{}{
		"toko_id":     tokoID,
		"nama_produk": "Gula Pasir 1kg",
		"harga":       15000,
		"satuan":      "kg",
		"stok":        5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	produkID := body["produk_id"].(string)

	// Orders require auth.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/pesanan", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Empty cart.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/pesanan", buyerToken, map[string]interface{}{
		"user_id":           buyerID,
		"total_harga":       15000,
		"alamat_pengiriman": "Jl. Melati 1",
		"items":             []interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Keranjang tidak boleh kosong.", body["message"])

	// Unknown product.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/pesanan", buyerToken, map[string]interface{}{
		"user_id":           buyerID,
		"total_harga":       15000,
		"alamat_pengiriman": "Jl. Melati 1",
		"items":             []map[string]interface{}{{"id": "no-such-product", "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Tampered total.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/pesanan", buyerToken, map[string]interface{}{
		"user_id":           buyerID,
		"total_harga":       1,
		"alamat_pengiriman": "Jl. Melati 1",
		"items":             []map[string]interface{}{{"id": produkID, "quantity": 3}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Successful checkout.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/pesanan", buyerToken, map[string]interface{}{
		"user_id":           buyerID,
		"total_harga":       45000,
		"alamat_pengiriman": "Jl. Melati 1",
		"items":             []map[string]interface{}{{"id": produkID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Pesanan berhasil dibuat.", body["message"])
	pesananID := body["pesanan_id"].(string)

	// Stock went from 5 to 2.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/produk/"+produkID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["stok"])

	// Ordering more than the remaining stock is a conflict and changes nothing.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/pesanan", buyerToken, map[string]interface{}{
		"user_id":           buyerID,
		"total_harga":       45000,
		"alamat_pengiriman": "Jl. Melati 1",
		"items":             []map[string]interface{}{{"id": produkID, "quantity": 3}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/produk/"+produkID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["stok"])

	// The order carries the captured price.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/pesanan/"+pesananID, buyerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StatusBaru, body["status_pesanan"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.EqualValues(t, 15000, item["harga_saat_pesan"])
	assert.EqualValues(t, 3, item["jumlah"])

	// The seller sees the order under their store.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pesanan/toko/"+tokoID, nil)
	req.Header.Set("Authorization", "Bearer "+sellerToken)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	var summaries []models.StoreOrderSummary
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&summaries))
	listResp.Body.Close()
	require.Len(t, summaries, 1)
	assert.Equal(t, pesananID, summaries[0].PesananID)
	assert.Equal(t, "Budi", summaries[0].NamaPembeli)

	// Status update.
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/pesanan/"+pesananID+"/status", sellerToken, map[string]string{
		"status": models.StatusDiproses,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/pesanan/"+pesananID+"/status", sellerToken, map[string]string{
		"status": "Terbang",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
