package checkout

import (
	"context"
	"time"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/cart"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// State is the progress of one checkout attempt.
type State string

const (
	StateStarted          State = "started"
	StateCustomerResolved State = "customer_resolved"
	StateOrderCreated     State = "order_created"
	StateItemsCommitted   State = "items_committed"
	StateRolledBack       State = "rolled_back"
)

type CustomerResolver interface {
	ResolveCustomer(ctx context.Context, p *auth.Principal) (*models.Customer, error)
}

type CartSource interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// Ledger is every write a checkout makes. Implementations need not be transactional:
// the orchestrator undoes its own writes on failure.
type Ledger interface {
	CreateOrder(ctx context.Context, customerID uint) (*models.Order, error)
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	AddItem(ctx context.Context, item *models.OrderItem) error
	DecrementStock(ctx context.Context, productID uint, quantity int) error
	IncrementStock(ctx context.Context, productID uint, quantity int) error
	DeleteOrder(ctx context.Context, orderID uint) error
}

// Transactor runs fn against a Ledger, committing only when fn returns nil.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context, ledger Ledger) error) error
}

// Notifier hears about committed orders.
type Notifier interface {
	OrderPlaced(receipt *Receipt)
}

type Receipt struct {
	OrderID    uint               `json:"order_id"`
	CustomerID uint               `json:"customer_id"`
	Status     models.OrderStatus `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	Items      []models.OrderItem `json:"items"`
}

type Orchestrator struct {
	customers CustomerResolver
	carts     CartSource
	tx        Transactor
	notifier  Notifier
	timeout   time.Duration
	log       *logrus.Logger
}

func NewOrchestrator(customers CustomerResolver, carts CartSource, tx Transactor, notifier Notifier, timeout time.Duration, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		customers: customers,
		carts:     carts,
		tx:        tx,
		notifier:  notifier,
		timeout:   timeout,
		log:       log,
	}
}

type attempt struct {
	state   State
	log     *logrus.Entry
	order   *models.Order
	applied []models.OrderItem
}

func (a *attempt) moveTo(s State) {
	a.state = s
	a.log.WithField("state", s).Debug("checkout state")
}

// Checkout turns the session cart of p into a pending order. Either every cart line
// becomes an order item with its stock taken, or nothing changes.
func (o *Orchestrator) Checkout(ctx context.Context, p *auth.Principal, sessionID string) (*Receipt, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	a := &attempt{log: o.log.WithField("session", sessionID)}
	if p != nil {
		a.log = a.log.WithField("account_id", p.AccountID)
	}
	a.moveTo(StateStarted)

	customer, err := o.customers.ResolveCustomer(ctx, p)
	if err != nil {
		return nil, o.fail(a, err)
	}
	a.log = a.log.WithField("customer_id", customer.ID)
	a.moveTo(StateCustomerResolved)

	c, err := o.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, o.fail(a, err)
	}
	if c.IsEmpty() {
		return nil, o.fail(a, apperr.ErrEmptyCart)
	}

	var receipt *Receipt
	err = o.tx.Run(ctx, func(ctx context.Context, ledger Ledger) error {
		r, err := o.place(ctx, a, ledger, customer, c)
		if err != nil {
			o.compensate(ctx, a, ledger)
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, o.fail(a, err)
	}
	a.moveTo(StateItemsCommitted)

	if err := o.carts.Clear(ctx, sessionID); err != nil {
		a.log.WithError(err).Warn("order committed but cart was not cleared")
	}
	if o.notifier != nil {
		o.notifier.OrderPlaced(receipt)
	}
	a.log.WithField("order_id", receipt.OrderID).Info("order placed")
	return receipt, nil
}

func (o *Orchestrator) place(ctx context.Context, a *attempt, ledger Ledger, customer *models.Customer, c *cart.Cart) (*Receipt, error) {
	order, err := ledger.CreateOrder(ctx, customer.ID)
	if err != nil {
		return nil, errors.Wrap(apperr.ErrOrderCreationFailed, err.Error())
	}
	a.order = order
	a.log = a.log.WithField("order_id", order.ID)
	a.moveTo(StateOrderCreated)

	total := decimal.Zero
	for _, line := range c.Lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// read fresh, the cart only remembers ids and quantities
		product, err := ledger.FindProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, &apperr.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Stock,
			}
		}

		item := models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
		if err := ledger.AddItem(ctx, &item); err != nil {
			return nil, err
		}
		if err := ledger.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
			// the item exists without its stock; compensation removes it with the order
			return nil, err
		}
		a.applied = append(a.applied, item)
		total = total.Add(item.Price)
	}

	return &Receipt{
		OrderID:    order.ID,
		CustomerID: customer.ID,
		Status:     order.Status,
		Total:      total,
		Items:      a.applied,
	}, nil
}

// compensate returns the stock taken by this attempt and removes the partial order.
// It runs on a context that survives the caller's deadline.
func (o *Orchestrator) compensate(ctx context.Context, a *attempt, ledger Ledger) {
	if a.order == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	for i := len(a.applied) - 1; i >= 0; i-- {
		item := a.applied[i]
		if err := ledger.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			a.log.WithError(err).WithField("product_id", item.ProductID).Error("restock during rollback failed")
		}
	}
	if err := ledger.DeleteOrder(ctx, a.order.ID); err != nil {
		a.log.WithError(err).Error("deleting partial order failed")
	}
	a.applied = nil
}

func (o *Orchestrator) fail(a *attempt, err error) error {
	err = classify(err)
	a.moveTo(StateRolledBack)
	a.log.WithError(err).Warn("checkout failed")
	return err
}

// classify keeps errors the caller can act on and folds everything else into ErrOrderCreationFailed.
func classify(err error) error {
	for _, keep := range []error{
		apperr.ErrInsufficientStock,
		apperr.ErrNotFound,
		apperr.ErrEmptyCart,
		apperr.ErrNoCustomerProfile,
		apperr.ErrUnauthorized,
		apperr.ErrOrderCreationFailed,
	} {
		if errors.Is(err, keep) {
			return err
		}
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Wrap(apperr.ErrOrderCreationFailed, "checkout timed out")
	}
	return errors.Wrap(apperr.ErrOrderCreationFailed, err.Error())
}
