package models

import "time"

type Product struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	Slug           string    `json:"slug" gorm:"not null;index"`
	Title          string    `json:"title" gorm:"not null"`
	Description    string    `json:"description" gorm:"not null"`
	Category       string    `json:"category" gorm:"not null;index"`
	Image          string    `json:"image" gorm:"not null"`
	Price          float64   `json:"price" gorm:"type:numeric(12,2);not null"`
	CompareAtPrice *float64  `json:"compareAtPrice,omitempty" gorm:"type:numeric(12,2)"`
	Stock          int       `json:"stock" gorm:"not null;check:stock >= 0"`
	SupplierName   string    `json:"supplierName" gorm:"not null"`
	SupplierURL    string    `json:"supplierUrl" gorm:"column:supplier_url;not null"`
	Featured       bool      `json:"featured" gorm:"not null"`
	Active         bool      `json:"active" gorm:"not null;index"`
	CreatedAt      time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"not null;index"`
}

// ProductInput holds the validated fields of a new product.
type ProductInput struct {
	Title          string
	Description    string
	Category       string
	Image          string
	Price          float64
	CompareAtPrice *float64
	Stock          int
	SupplierName   string
	SupplierURL    string
	Featured       bool
	Active         bool
}

// ProductUpdate is a partial edit; nil fields are left unchanged.
type ProductUpdate struct {
	Title          *string
	Description    *string
	Category       *string
	Image          *string
	Price          *float64
	CompareAtPrice *float64
	Stock          *int
	SupplierName   *string
	SupplierURL    *string
	Featured       *bool
	Active         *bool
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Image == nil &&
		u.Price == nil && u.CompareAtPrice == nil && u.Stock == nil &&
		u.SupplierName == nil && u.SupplierURL == nil && u.Featured == nil && u.Active == nil
}
