// Package checkout turns a cart into an order against a catalog snapshot:
// it validates every line, reserves stock, prices the result and mints the
// order number. It performs no I/O; callers load the snapshot and persist
// the outcome.
package checkout

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	FreeShippingThreshold = 500
	FlatShippingFee       = 20

	orderNumberPrefix   = "BST-"
	orderNumberAttempts = 10
)

type Kind int

const (
	KindEmptyOrder Kind = iota + 1
	KindInvalidQuantity
	KindUnavailable
	KindInsufficientStock
)

// Error is a rejected checkout. Its message is meant for the shopper.
type Error struct {
	Kind      Kind
	ProductID string
	Message   string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrEmptyOrder         = &Error{Kind: KindEmptyOrder, Message: "Order requires at least one item."}
	ErrInvalidQuantity    = &Error{Kind: KindInvalidQuantity, Message: "Item quantity must be at least 1."}
	ErrProductUnavailable = &Error{Kind: KindUnavailable, Message: "One or more products are no longer available."}

	ErrOrderNumberExhausted = errors.New("could not mint a unique order number")
)

func insufficientStock(product models.Product) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		ProductID: product.ID,
		Message:   fmt.Sprintf("Not enough stock for %s.", product.Title),
	}
}

// AsError reports whether err is a checkout rejection.
func AsError(err error) (*Error, bool) {
	var checkoutErr *Error

	if errors.As(err, &checkoutErr) {
		return checkoutErr, true
	}

	return nil, false
}

// Reserve checks each line in order and decrements stock in products as it
// goes. It stops at the first violation; on error products has been partly
// modified and must be discarded.
func Reserve(products []models.Product, lines []models.OrderLine, now time.Time) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	index := make(map[string]int, len(products))

	for i := range products {
		index[products[i].ID] = i
	}

	items := make([]models.OrderItem, 0, len(lines))

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}

		i, ok := index[line.ProductID]

		if !ok || !products[i].Active {
			return nil, ErrProductUnavailable
		}

		product := &products[i]

		if product.Stock < line.Quantity {
			return nil, insufficientStock(*product)
		}

		product.Stock -= line.Quantity
		product.UpdatedAt = now

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Image:     product.Image,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	return items, nil
}

type Totals struct {
	Subtotal    float64
	ShippingFee float64
	Total       float64
}

// Price sums the line items. Shipping is waived when the unrounded subtotal
// reaches FreeShippingThreshold; both amounts are rounded to cents.
func Price(items []models.OrderItem) Totals {
	subtotal := decimal.Zero

	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	fee := decimal.NewFromInt(FlatShippingFee)

	if subtotal.GreaterThanOrEqual(decimal.NewFromInt(FreeShippingThreshold)) {
		fee = decimal.Zero
	}

	subtotal = subtotal.Round(2)

	return Totals{
		Subtotal:    subtotal.InexactFloat64(),
		ShippingFee: fee.InexactFloat64(),
		Total:       subtotal.Add(fee).Round(2).InexactFloat64(),
	}
}

// OrderNumber is BST- followed by the last eight digits of the unix
// millisecond clock and a two digit random suffix.
func OrderNumber(now time.Time) string {
	millis := strconv.FormatInt(now.UnixMilli(), 10)

	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}

	return fmt.Sprintf("%s%s%d", orderNumberPrefix, millis, 10+rand.Intn(90))
}

// UniqueOrderNumber retries OrderNumber until taken reports the number free.
// A lookup error stops the search and is returned as is.
func UniqueOrderNumber(now time.Time, taken func(string) (bool, error)) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number := OrderNumber(now)

		if taken == nil {
			return number, nil
		}

		inUse, err := taken(number)

		if err != nil {
			return "", err
		}

		if !inUse {
			return number, nil
		}
	}

	return "", ErrOrderNumberExhausted
}

// Place runs the whole transaction over the snapshot: reserve, price, and
// build a pending order. taken reports order numbers already in use.
func Place(products []models.Product, input models.OrderCreateInput, now time.Time, taken func(string) (bool, error)) (*models.Order, error) {
	items, err := Reserve(products, input.Items, now)

	if err != nil {
		return nil, err
	}

	totals := Price(items)

	number, err := UniqueOrderNumber(now, taken)

	if err != nil {
		return nil, err
	}

	shipping := input.Shipping
	shipping.Email = strings.ToLower(strings.TrimSpace(shipping.Email))

	return &models.Order{
		ID:             uuid.NewString(),
		OrderNumber:    number,
		CustomerUserID: input.CustomerUserID,
		Shipping:       shipping,
		Items:          items,
		Subtotal:       totals.Subtotal,
		ShippingFee:    totals.ShippingFee,
		Total:          totals.Total,
		Status:         models.OrderPending,
		Notes:          strings.TrimSpace(input.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
