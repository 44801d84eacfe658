package auth

import (
	"context"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CustomerLookup resolves a principal to its customer profile.
type CustomerLookup struct {
	db *gorm.DB
}

func NewCustomerLookup(db *gorm.DB) *CustomerLookup {
	return &CustomerLookup{db: db}
}

// ResolveCustomer tries the linked account first and falls back to an unlinked customer with
// the account's email, which covers customers entered by staff before the account existed.
func (l *CustomerLookup) ResolveCustomer(ctx context.Context, p *Principal) (*models.Customer, error) {
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}

	var customer models.Customer
	err := l.db.WithContext(ctx).Where("account_id = ?", p.AccountID).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Upstream(err, "resolve customer")
	}

	if p.Email != "" {
		// only a profile no account owns yet; the first match is linked to this account
		res := l.db.WithContext(ctx).Model(&models.Customer{}).
			Where("email = ? AND account_id IS NULL", p.Email).
			Update("account_id", p.AccountID)
		if res.Error != nil {
			return nil, apperr.Upstream(res.Error, "link customer")
		}
		if res.RowsAffected > 0 {
			err = l.db.WithContext(ctx).Where("account_id = ?", p.AccountID).First(&customer).Error
			if err != nil {
				return nil, apperr.Upstream(err, "resolve customer")
			}
			return &customer, nil
		}
	}
	return nil, errors.Wrapf(apperr.ErrNoCustomerProfile, "account %s", p.Username)
}
