package auth

import (
	"context"
	"strings"
	"time"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/crud"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Service is the identity provider: login, logout, token checks and self-registration.
type Service struct {
	db     *gorm.DB
	tokens *TokenManager
	hasher *PasswordHasher
}

func NewService(db *gorm.DB, tokens *TokenManager, hasher *PasswordHasher) *Service {
	return &Service{db: db, tokens: tokens, hasher: hasher}
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterInput struct {
	Username  string `json:"username" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=72"` // bcrypt ignores bytes past 72
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Phone     string `json:"phone" binding:"required,max=20"`
}

type AccountInput struct {
	Username    string   `json:"username" binding:"required,max=150"`
	Password    string   `json:"password" binding:"required,min=8,max=72"`
	Email       string   `json:"email" binding:"omitempty,email,max=254"`
	Groups      []string `json:"groups"`
	IsSuperuser bool     `json:"is_superuser"`
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Upstream(err, "load account")
	}
	if !account.IsActive || !s.hasher.Verify(password, account.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(account.ID, account.Username)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes the token described by claims and drops revocations that have expired.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		revoked := models.RevokedToken{ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
		if err := tx.Save(&revoked).Error; err != nil {
			return apperr.Upstream(err, "revoke token")
		}
		if err := tx.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{}).Error; err != nil {
			return apperr.Upstream(err, "purge revoked tokens")
		}
		return nil
	})
}

// Authenticate turns a bearer token into the principal it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, *Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, errors.Wrap(apperr.ErrUnauthorized, err.Error())
	}

	var revoked int64
	if err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("id = ?", claims.ID).Count(&revoked).Error; err != nil {
		return nil, nil, apperr.Upstream(err, "check token")
	}
	if revoked > 0 {
		return nil, nil, errors.Wrap(apperr.ErrUnauthorized, "token has been revoked")
	}

	account, err := s.Account(ctx, claims.AccountID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, errors.Wrap(apperr.ErrUnauthorized, "account no longer exists")
	}
	if err != nil {
		return nil, nil, err
	}
	if !account.IsActive {
		return nil, nil, errors.Wrap(apperr.ErrUnauthorized, "account is disabled")
	}
	return PrincipalFromAccount(account), claims, nil
}

// Account loads an account with its groups.
func (s *Service) Account(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Preload("Groups").First(&account, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "account %d", id)
	}
	if err != nil {
		return nil, apperr.Upstream(err, "load account")
	}
	return &account, nil
}

// Register creates an account and its customer profile together.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Account, *models.Customer, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	var account *models.Account
	var customer *models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		check := crud.NewChecker(tx)
		check.Struct(&in)
		check.Unique("username", &models.Account{}, "username", in.Username, 0)
		check.Unique("email", &models.Customer{}, "email", in.Email, 0)
		if err := check.Err(); err != nil {
			return err
		}

		var err error
		account, err = s.createAccount(tx, AccountInput{Username: in.Username, Password: in.Password, Email: in.Email})
		if err != nil {
			return err
		}
		customer = &models.Customer{
			AccountID: &account.ID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			Phone:     in.Phone,
		}
		if err := tx.Create(customer).Error; err != nil {
			return apperr.Upstream(err, "create customer")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return account, customer, nil
}

// CreateAccount creates a staff account in the named groups.
func (s *Service) CreateAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	var account *models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		check := crud.NewChecker(tx)
		check.Struct(&in)
		check.Unique("username", &models.Account{}, "username", in.Username, 0)
		if err := check.Err(); err != nil {
			return err
		}
		var err error
		account, err = s.createAccount(tx, in)
		return err
	})
	return account, err
}

func (s *Service) createAccount(tx *gorm.DB, in AccountInput) (*models.Account, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	var groups []models.Group
	if len(in.Groups) > 0 {
		if err := tx.Where("name IN ?", in.Groups).Find(&groups).Error; err != nil {
			return nil, apperr.Upstream(err, "load groups")
		}
		if len(groups) != len(in.Groups) {
			invalid := apperr.NewValidationError()
			invalid.Add("groups", "Unknown group in "+strings.Join(in.Groups, ", ")+".")
			return nil, invalid
		}
	}

	account := &models.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsSuperuser:  in.IsSuperuser,
		IsActive:     true,
		Groups:       groups,
	}
	if err := tx.Omit("Groups.*").Create(account).Error; err != nil {
		return nil, apperr.Upstream(err, "create account")
	}
	return account, nil
}
