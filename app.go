package main

import (
	"context"
	"time"

	"github.com/junaidrashid-git/shop-api/access"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/cart"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/checkout"
	"github.com/junaidrashid-git/shop-api/config"
	orderControllers "github.com/junaidrashid-git/shop-api/controllers/order"
	resourceControllers "github.com/junaidrashid-git/shop-api/controllers/resource"
	"github.com/junaidrashid-git/shop-api/database"
	"github.com/junaidrashid-git/shop-api/resources"
	"github.com/junaidrashid-git/shop-api/routes"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app holds the process-wide resources every command starts from.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger()

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}
	return &app{cfg: cfg, log: logger, db: db}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Close(ctx, a.db); err != nil {
		a.log.WithError(err).Warn("close database")
	}
}

func (a *app) authService() *auth.Service {
	tokens := auth.NewTokenManager(a.cfg.JWTSecret, a.cfg.JWTIssuer, a.cfg.TokenTTL)
	return auth.NewService(a.db, tokens, auth.NewPasswordHasher(auth.DefaultBcryptCost))
}

// cartStore keeps carts in Redis when REDIS_ADDR is set, in memory otherwise.
func (a *app) cartStore(ctx context.Context) (cart.Store, *redis.Client, error) {
	if a.cfg.RedisAddr == "" {
		a.log.Warn("⚠️ REDIS_ADDR not set, carts are kept in memory")
		return cart.NewMemoryStore(), nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrapf(err, "connect redis at %s", a.cfg.RedisAddr)
	}
	return cart.NewRedisStore(client, "cart:", a.cfg.CartTTL), client, nil
}

func (a *app) policies() (access.Policies, error) {
	if a.cfg.PolicyFile == "" {
		return access.DefaultPolicies(), nil
	}
	return access.LoadPolicies(a.cfg.PolicyFile)
}

// services wires every component the HTTP layer needs.
func (a *app) services(store cart.Store) (*routes.Services, error) {
	policies, err := a.policies()
	if err != nil {
		return nil, err
	}

	authSvc := a.authService()
	customers := auth.NewCustomerLookup(a.db)
	products := catalog.NewStore(a.db)
	carts := cart.NewService(store, products)
	hub := orderControllers.NewHub(a.log)
	orchestrator := checkout.NewOrchestrator(
		customers, carts, checkout.NewGormTransactor(a.db), hub, a.cfg.CheckoutTimeout, a.log,
	)

	return &routes.Services{
		Log:         a.log,
		Policies:    policies,
		Paging:      resourceControllers.Paging{Default: a.cfg.PageSize, Max: a.cfg.MaxPageSize},
		CORSOrigins: a.cfg.CORSOrigins,
		CartMaxAge:  a.cfg.CartTTL,
		UploadsDir:  a.cfg.UploadsDir,

		Auth:      authSvc,
		Customers: customers,
		Catalog:   products,
		Resources: resources.NewSet(a.db),
		Carts:     carts,
		Checkout:  orchestrator,
		Orders:    checkout.NewOrderService(a.db),
		Hub:       hub,
	}, nil
}
