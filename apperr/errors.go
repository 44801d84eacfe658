package apperr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrOutOfStock          = errors.New("product is out of stock")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoCustomerProfile   = errors.New("no customer profile for this account")
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("permission denied")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrMethodNotAllowed    = errors.New("method not allowed")
	ErrInvalidCredentials  = errors.New("invalid username or password")
)

// ValidationError lists the offending fields of a rejected write.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add records a message against field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns nil when no field was flagged.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InsufficientStockError names the product a request could not be served from.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s (requested %d, available %d)",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Upstream marks err as a storage failure unless it already carries a domain meaning.
func Upstream(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return errors.Wrapf(ErrUpstreamUnavailable, "%s: %v", msg, err)
}

// IsDomain reports whether err is one of the taxonomy errors above.
func IsDomain(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range []error{
		ErrNotFound, ErrOutOfStock, ErrInsufficientStock, ErrEmptyCart,
		ErrNoCustomerProfile, ErrUnauthorized, ErrForbidden,
		ErrUpstreamUnavailable, ErrOrderCreationFailed, ErrMethodNotAllowed,
		ErrInvalidCredentials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
