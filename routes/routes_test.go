package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/access"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/cart"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/checkout"
	orderControllers "github.com/junaidrashid-git/shop-api/controllers/order"
	resourceControllers "github.com/junaidrashid-git/shop-api/controllers/resource"
	"github.com/junaidrashid-git/shop-api/database"
	"github.com/junaidrashid-git/shop-api/middleware"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/junaidrashid-git/shop-api/resources"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	engine   *gin.Engine
	db       *gorm.DB
	services *Services
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	log, _ := test.NewNullLogger()
	authSvc := auth.NewService(db, auth.NewTokenManager("secret", "shop-api", time.Hour), auth.NewPasswordHasher(bcrypt.MinCost))
	customers := auth.NewCustomerLookup(db)
	products := catalog.NewStore(db)
	carts := cart.NewService(cart.NewMemoryStore(), products)
	hub := orderControllers.NewHub(log)
	t.Cleanup(hub.Close)

	services := &Services{
		Log:        log,
		Policies:   access.DefaultPolicies(),
		Paging:     resourceControllers.Paging{Default: 20, Max: 100},
		CartMaxAge: time.Hour,
		Auth:       authSvc,
		Customers:  customers,
		Catalog:    products,
		Resources:  resources.NewSet(db),
		Carts:      carts,
		Checkout:   checkout.NewOrchestrator(customers, carts, checkout.NewGormTransactor(db), hub, 5*time.Second, log),
		Orders:     checkout.NewOrderService(db),
		Hub:        hub,
	}
	return &testServer{engine: NewEngine(services), db: db, services: services}
}

type call struct {
	method  string
	path    string
	body    interface{}
	token   string
	session string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.session != "" {
		req.Header.Set(middleware.CartSessionHeader, c.session)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) staffToken(t *testing.T, username string, superuser bool, groups ...string) string {
	t.Helper()
	ctx := context.Background()
	_, err := s.services.Auth.CreateAccount(ctx, auth.AccountInput{
		Username: username, Password: "password123", Groups: groups, IsSuperuser: superuser,
	})
	require.NoError(t, err)
	session, err := s.services.Auth.Login(ctx, username, "password123")
	require.NoError(t, err)
	return session.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	w := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCategoryListIsPublicAndPaged(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()
	for _, slug := range []string{"shoes", "hats", "bags"} {
		require.NoError(t, s.services.Catalog.CreateCategory(ctx, &models.Category{Name: slug, Slug: slug}))
	}

	w := s.do(t, call{method: http.MethodGet, path: "/api/categories?page_size=2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 3, body["count"])
	assert.Nil(t, body["previous"])
	assert.Contains(t, body["next"], "page=2")
	assert.Len(t, body["results"], 2)

	w = s.do(t, call{method: http.MethodGet, path: "/api/categories?page=9"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceWritesFollowGroups(t *testing.T) {
	s := setupServer(t)
	admin := s.staffToken(t, "root", true)
	editor := s.staffToken(t, "editor", false, access.GroupViewAndEdit)
	deleter := s.staffToken(t, "deleter", false, access.GroupViewAndDelete)
	category := map[string]string{"name": "Shoes", "slug": "shoes"}

	w := s.do(t, call{method: http.MethodPost, path: "/api/categories", body: category})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/api/categories", body: category, token: deleter})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// editing does not include creating
	w = s.do(t, call{method: http.MethodPost, path: "/api/categories", body: category, token: editor})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/api/categories", body: category, token: admin})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int(decode(t, w)["id"].(float64))

	w = s.do(t, call{method: http.MethodPost, path: "/api/categories", body: category, token: admin})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "slug")

	path := "/api/categories/" + strconv.Itoa(id)
	w = s.do(t, call{method: http.MethodPut, path: path, body: map[string]string{"name": "Sneakers", "slug": "shoes"}, token: editor})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Sneakers", decode(t, w)["name"])

	w = s.do(t, call{method: http.MethodPut, path: path, body: map[string]string{"name": "Sneakers", "slug": "no spaces"}, token: editor})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "slug")

	w = s.do(t, call{method: http.MethodDelete, path: path, token: editor})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, call{method: http.MethodDelete, path: path, token: deleter})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCustomersAreNotPublic(t *testing.T) {
	s := setupServer(t)
	w := s.do(t, call{method: http.MethodGet, path: "/api/customers"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := s.staffToken(t, "root", true)
	w = s.do(t, call{method: http.MethodGet, path: "/api/customers", token: admin})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderWritesAreRestricted(t *testing.T) {
	s := setupServer(t)
	admin := s.staffToken(t, "root", true)

	w := s.do(t, call{method: http.MethodPost, path: "/api/order-items", body: map[string]int{"quantity": 1}, token: admin})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = s.do(t, call{method: http.MethodPut, path: "/api/order-items/1", body: map[string]int{"quantity": 1}, token: admin})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/api/orders", body: map[string]int{"customer_id": 1}, token: admin})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestProductExportIsStaffOnly(t *testing.T) {
	s := setupServer(t)
	w := s.do(t, call{method: http.MethodGet, path: "/api/products/export"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	editor := s.staffToken(t, "editor", false, access.GroupViewAndEdit)
	w = s.do(t, call{method: http.MethodGet, path: "/api/products/export", token: editor})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
}

func TestShopCheckoutFlow(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()
	category := &models.Category{Name: "Shoes", Slug: "shoes"}
	require.NoError(t, s.services.Catalog.CreateCategory(ctx, category))
	product := &models.Product{
		Name: "Runner", Slug: "runner", Description: "Road shoe", MainImage: "products/runner.jpg",
		Price: decimal.RequireFromString("10.00"), Stock: 5, CategoryID: category.ID,
	}
	require.NoError(t, s.services.Catalog.CreateProduct(ctx, product))

	w := s.do(t, call{method: http.MethodPost, path: "/api/auth/register", body: auth.RegisterInput{
		Username: "jane", Password: "password123", FirstName: "Jane", LastName: "Doe",
		Email: "jane@example.com", Phone: "555-0100",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{
		"username": "jane", "password": "password123",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)

	// first request hands out a session id
	w = s.do(t, call{method: http.MethodGet, path: "/shop/cart"})
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get(middleware.CartSessionHeader)
	require.NotEmpty(t, session)

	w = s.do(t, call{method: http.MethodPost, path: "/shop/cart/items", body: map[string]uint{"product_id": product.ID}, session: session})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, call{method: http.MethodPut, path: "/shop/cart/items/" + strconv.Itoa(int(product.ID)), body: map[string]int{"quantity": 2}, session: session})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	total, err := decimal.NewFromString(decode(t, w)["total"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(20)), total.String())

	w = s.do(t, call{method: http.MethodPost, path: "/shop/checkout", session: session})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/shop/checkout", session: session, token: token})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	receipt := decode(t, w)
	assert.Equal(t, "pending", receipt["status"])
	total, err = decimal.NewFromString(receipt["total"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(20)), total.String())

	var stored models.Product
	require.NoError(t, s.db.First(&stored, product.ID).Error)
	assert.Equal(t, 3, stored.Stock)

	// the cart is spent
	w = s.do(t, call{method: http.MethodPost, path: "/shop/checkout", session: session, token: token})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, call{method: http.MethodGet, path: "/shop/orders", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
}

func TestCheckoutWithoutCustomerProfile(t *testing.T) {
	s := setupServer(t)
	staff := s.staffToken(t, "clerk", false, access.GroupViewAndEdit)
	ctx := context.Background()
	category := &models.Category{Name: "Shoes", Slug: "shoes"}
	require.NoError(t, s.services.Catalog.CreateCategory(ctx, category))
	product := &models.Product{
		Name: "Runner", Slug: "runner", Description: "Road shoe", MainImage: "products/runner.jpg",
		Price: decimal.NewFromInt(5), Stock: 1, CategoryID: category.ID,
	}
	require.NoError(t, s.services.Catalog.CreateProduct(ctx, product))

	session := "7d0c3f0e-4a57-4a3e-9f55-0a8f8c1d2b3e"
	w := s.do(t, call{method: http.MethodPost, path: "/shop/cart/items", body: map[string]uint{"product_id": product.ID}, session: session})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, call{method: http.MethodPost, path: "/shop/checkout", session: session, token: staff})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := setupServer(t)
	token := s.staffToken(t, "clerk", false)

	w := s.do(t, call{method: http.MethodGet, path: "/api/auth/me", token: token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode(t, w)["customer"])

	w = s.do(t, call{method: http.MethodPost, path: "/api/auth/logout", token: token})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, call{method: http.MethodGet, path: "/api/auth/me", token: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
