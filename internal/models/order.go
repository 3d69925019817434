package models

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderFulfilled, OrderCancelled}

func ParseOrderStatus(value string) (OrderStatus, bool) {
	for _, status := range OrderStatuses {
		if string(status) == value {
			return status, true
		}
	}

	return "", false
}

type ShippingDetails struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderItem is a point-in-time copy of the product at checkout. It is never
// refreshed from the live catalog.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID             string                         `json:"id" gorm:"primaryKey;type:uuid"`
	OrderNumber    string                         `json:"orderNumber" gorm:"uniqueIndex;not null"`
	CustomerUserID *string                        `json:"customerUserId,omitempty" gorm:"type:uuid;index"`
	Shipping       ShippingDetails                `json:"shipping" gorm:"type:jsonb;serializer:json;not null"`
	Items          datatypes.JSONSlice[OrderItem] `json:"items" gorm:"not null"`
	Subtotal       float64                        `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	ShippingFee    float64                        `json:"shippingFee" gorm:"type:numeric(12,2);not null"`
	Total          float64                        `json:"total" gorm:"type:numeric(12,2);not null"`
	Status         OrderStatus                    `json:"status" gorm:"not null;index"`
	Notes          string                         `json:"notes,omitempty"`
	CreatedAt      time.Time                      `json:"createdAt" gorm:"not null;index"`
	UpdatedAt      time.Time                      `json:"updatedAt" gorm:"not null"`
}

type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderCreateInput struct {
	CustomerUserID *string
	Shipping       ShippingDetails
	Items          []OrderLine
	Notes          string
}

type DashboardStats struct {
	TotalProducts    int     `json:"totalProducts"`
	ActiveProducts   int     `json:"activeProducts"`
	LowStockProducts int     `json:"lowStockProducts"`
	TotalOrders      int     `json:"totalOrders"`
	PendingOrders    int     `json:"pendingOrders"`
	FulfilledOrders  int     `json:"fulfilledOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
}
