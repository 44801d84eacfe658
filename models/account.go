package models

import "time"

// Account is a login identity. Staff permissions come from its groups.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	Groups       []Group   `gorm:"many2many:account_groups;" json:"groups"`
	CreatedAt    time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`
}

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:150;uniqueIndex;not null" json:"name"`
}

// RevokedToken holds the id of a logged-out session token until it would have expired anyway.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index"`
}

// All lists every model for migrations.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Manufacturer{},
		&Product{},
		&Customer{},
		&Order{},
		&OrderItem{},
		&Review{},
		&Group{},
		&Account{},
		&RevokedToken{},
	}
}
