package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/cart"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []*Receipt
}

func (n *recordingNotifier) OrderPlaced(r *Receipt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, r)
}

type fixture struct {
	db       *gorm.DB
	store    *catalog.Store
	carts    *cart.Service
	orch     *Orchestrator
	notifier *recordingNotifier
	category *models.Category
	logHook  *test.Hook
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	store := catalog.NewStore(db)
	carts := cart.NewService(cart.NewMemoryStore(), store)
	notifier := &recordingNotifier{}
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	category := &models.Category{Name: "Tea", Slug: "tea"}
	require.NoError(t, store.CreateCategory(context.Background(), category))

	return &fixture{
		db:       db,
		store:    store,
		carts:    carts,
		orch:     NewOrchestrator(auth.NewCustomerLookup(db), carts, NewGormTransactor(db), notifier, 5*time.Second, log),
		notifier: notifier,
		category: category,
		logHook:  hook,
	}
}

func (f *fixture) product(t *testing.T, slug, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        "Product " + slug,
		Slug:        slug,
		Description: "desc",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CategoryID:  f.category.ID,
		MainImage:   slug + ".jpg",
	}
	require.NoError(t, f.store.CreateProduct(context.Background(), p))
	return p
}

// customer creates a customer linked to a fresh account id and returns its principal.
func (f *fixture) customer(t *testing.T, accountID uint) *auth.Principal {
	t.Helper()
	c := &models.Customer{
		AccountID: &accountID,
		FirstName: "First",
		LastName:  "Last",
		Email:     fmt.Sprintf("c%d@example.com", accountID),
		Phone:     "1",
	}
	require.NoError(t, f.db.Create(c).Error)
	return &auth.Principal{AccountID: accountID, Username: fmt.Sprintf("user%d", accountID)}
}

// fill adds each line to the session cart one unit at a time.
func (f *fixture) fill(t *testing.T, session string, lines ...cart.Line) {
	t.Helper()
	for _, l := range lines {
		for i := 0; i < l.Quantity; i++ {
			_, err := f.carts.Add(context.Background(), session, l.ProductID)
			require.NoError(t, err)
		}
	}
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.store.FindProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (f *fixture) itemCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Count(&n).Error)
	return n
}

func TestCheckoutSingleLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", "10.00", 5)
	who := f.customer(t, 1)
	f.fill(t, "s1", cart.Line{ProductID: a.ID, Quantity: 2})

	receipt, err := f.orch.Checkout(ctx, who, "s1")
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("20.00")), "total %s", receipt.Total)
	assert.Equal(t, models.OrderStatusPending, receipt.Status)

	var order models.Order
	require.NoError(t, f.db.Preload("Items").First(&order, receipt.OrderID).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("20.00")))
	assert.False(t, order.CreatedAt.IsZero())

	assert.Equal(t, 3, f.stock(t, a.ID))

	c, err := f.carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.Len(t, f.notifier.receipts, 1)
	assert.Equal(t, receipt.OrderID, f.notifier.receipts[0].OrderID)

	var states []string
	for _, entry := range f.logHook.AllEntries() {
		if s, ok := entry.Data["state"]; ok {
			states = append(states, string(s.(State)))
		}
	}
	assert.Equal(t, []string{"started", "customer_resolved", "order_created", "items_committed"}, states)
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", "10.00", 5)
	b := f.product(t, "b", "3.00", 1)
	who := f.customer(t, 1)
	f.fill(t, "s1", cart.Line{ProductID: a.ID, Quantity: 2}, cart.Line{ProductID: b.ID, Quantity: 1})

	// b sells out after it went into the cart
	require.NoError(t, f.store.DecrementStock(ctx, b.ID, 1))

	_, err := f.orch.Checkout(ctx, who, "s1")
	var stockErr *apperr.InsufficientStockError
	require.True(t, errors.As(err, &stockErr), "got %v", err)
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, "Product b", stockErr.ProductName)

	assert.EqualValues(t, 0, f.orderCount(t))
	assert.EqualValues(t, 0, f.itemCount(t))
	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Equal(t, 0, f.stock(t, b.ID))

	// the cart survives a failed checkout
	c, err := f.carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Quantity(a.ID))
	assert.Empty(t, f.notifier.receipts)
}

func TestCheckoutRequiresCustomerProfile(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "a", "10.00", 5)
	f.fill(t, "s1", cart.Line{ProductID: a.ID, Quantity: 1})

	_, err := f.orch.Checkout(context.Background(), &auth.Principal{AccountID: 77, Username: "nobody"}, "s1")
	assert.True(t, errors.Is(err, apperr.ErrNoCustomerProfile))
	assert.EqualValues(t, 0, f.orderCount(t))
	assert.Equal(t, 5, f.stock(t, a.ID))
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	who := f.customer(t, 1)

	_, err := f.orch.Checkout(context.Background(), who, "empty")
	assert.True(t, errors.Is(err, apperr.ErrEmptyCart))
	assert.EqualValues(t, 0, f.orderCount(t))
}

func TestCheckoutProductDeletedAfterAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", "10.00", 5)
	b := f.product(t, "b", "2.00", 5)
	who := f.customer(t, 1)
	f.fill(t, "s1", cart.Line{ProductID: a.ID, Quantity: 1}, cart.Line{ProductID: b.ID, Quantity: 1})
	require.NoError(t, f.store.DeleteProduct(ctx, b.ID))

	_, err := f.orch.Checkout(ctx, who, "s1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.EqualValues(t, 0, f.orderCount(t))
	assert.Equal(t, 5, f.stock(t, a.ID))
}

// The test database has a single connection, so these two transactions run one after
// the other. TestStaleStockReadIsCaughtByDecrement covers a read that has gone stale.
func TestConcurrentCheckoutsForLastUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "last", "9.99", 1)
	first := f.customer(t, 1)
	second := f.customer(t, 2)
	f.fill(t, "s1", cart.Line{ProductID: p.ID, Quantity: 1})
	f.fill(t, "s2", cart.Line{ProductID: p.ID, Quantity: 1})

	errs := make([]error, 2)
	var g errgroup.Group
	g.Go(func() error {
		_, errs[0] = f.orch.Checkout(ctx, first, "s1")
		return nil
	})
	g.Go(func() error {
		_, errs[1] = f.orch.Checkout(ctx, second, "s2")
		return nil
	})
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, apperr.ErrInsufficientStock), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.stock(t, p.ID))
	assert.EqualValues(t, 1, f.orderCount(t))
	assert.EqualValues(t, 1, f.itemCount(t))
}

func TestStockNeverNegativeAcrossManyCheckouts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", "1.00", 7)
	b := f.product(t, "b", "2.00", 4)

	var g errgroup.Group
	for i := 1; i <= 10; i++ {
		who := f.customer(t, uint(i))
		session := fmt.Sprintf("s%d", i)
		f.fill(t, session, cart.Line{ProductID: a.ID, Quantity: 1 + i%2}, cart.Line{ProductID: b.ID, Quantity: 1})
		g.Go(func() error {
			_, _ = f.orch.Checkout(ctx, who, session)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var orders []models.Order
	require.NoError(t, f.db.Preload("Items").Find(&orders).Error)
	soldA, soldB := 0, 0
	for _, o := range orders {
		require.Len(t, o.Items, 2)
		for _, item := range o.Items {
			if item.ProductID == a.ID {
				soldA += item.Quantity
			} else {
				soldB += item.Quantity
			}
		}
	}
	assert.GreaterOrEqual(t, f.stock(t, a.ID), 0)
	assert.GreaterOrEqual(t, f.stock(t, b.ID), 0)
	assert.Equal(t, 7-soldA, f.stock(t, a.ID))
	assert.Equal(t, 4-soldB, f.stock(t, b.ID))
}

// staleTransactor hands out ledgers whose product reads report more stock than exists,
// as a read taken before a competing checkout committed would.
type staleTransactor struct {
	inner *GormTransactor
	extra int
}

func (t staleTransactor) Run(ctx context.Context, fn func(ctx context.Context, ledger Ledger) error) error {
	return t.inner.Run(ctx, func(ctx context.Context, ledger Ledger) error {
		return fn(ctx, staleLedger{Ledger: ledger, extra: t.extra})
	})
}

type staleLedger struct {
	Ledger
	extra int
}

func (l staleLedger) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := l.Ledger.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Stock += l.extra
	return p, nil
}

func TestStaleStockReadIsCaughtByDecrement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "last", "9.99", 2)
	who := f.customer(t, 1)
	f.fill(t, "s1", cart.Line{ProductID: p.ID, Quantity: 2})

	// another order takes one unit after the cart was filled
	require.NoError(t, f.store.DecrementStock(ctx, p.ID, 1))

	log, _ := test.NewNullLogger()
	orch := NewOrchestrator(auth.NewCustomerLookup(f.db), f.carts, staleTransactor{inner: NewGormTransactor(f.db), extra: 1},
		f.notifier, 5*time.Second, log)

	_, err := orch.Checkout(ctx, who, "s1")
	var stockErr *apperr.InsufficientStockError
	require.True(t, errors.As(err, &stockErr), "got %v", err)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 1, f.stock(t, p.ID))
	assert.EqualValues(t, 0, f.orderCount(t))
	assert.EqualValues(t, 0, f.itemCount(t))
	assert.Empty(t, f.notifier.receipts)
}
