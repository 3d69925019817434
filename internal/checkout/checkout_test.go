package checkout

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func catalog() []models.Product {
	return []models.Product{
		{ID: "p-lamp", Title: "Desk Lamp", Image: "/lamp.jpg", Price: 100, Stock: 3, Active: true},
		{ID: "p-chair", Title: "Office Chair", Image: "/chair.jpg", Price: 120, Stock: 10, Active: true},
		{ID: "p-retired", Title: "Retired Mug", Image: "/mug.jpg", Price: 9, Stock: 50, Active: false},
	}
}

func orderFor(lines ...models.OrderLine) models.OrderCreateInput {
	return models.OrderCreateInput{
		Shipping: models.ShippingDetails{
			FullName:   "Jane Doe",
			Email:      "  Jane@Example.COM ",
			Phone:      "5550101010",
			Address1:   "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
		Items: lines,
		Notes: "  leave at the door  ",
	}
}

func stockOf(products []models.Product, id string) int {
	for _, product := range products {
		if product.ID == id {
			return product.Stock
		}
	}

	return -1
}

func TestPlace(t *testing.T) {
	products := catalog()

	order, err := Place(products, orderFor(models.OrderLine{ProductID: "p-lamp", Quantity: 2}), placedAt, nil)

	require.NoError(t, err)
	assert.Equal(t, 200.0, order.Subtotal)
	assert.Equal(t, 20.0, order.ShippingFee)
	assert.Equal(t, 220.0, order.Total)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "jane@example.com", order.Shipping.Email)
	assert.Equal(t, "leave at the door", order.Notes)
	assert.Equal(t, placedAt, order.CreatedAt)
	assert.Equal(t, placedAt, order.UpdatedAt)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 1, stockOf(products, "p-lamp"))

	require.Len(t, order.Items, 1)
	assert.Equal(t, models.OrderItem{
		ProductID: "p-lamp",
		Title:     "Desk Lamp",
		Image:     "/lamp.jpg",
		Quantity:  2,
		Price:     100,
	}, order.Items[0])

	t.Run("Second order beyond remaining stock fails", func(t *testing.T) {
		_, err := Place(products, orderFor(models.OrderLine{ProductID: "p-lamp", Quantity: 2}), placedAt, nil)

		checkoutErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindInsufficientStock, checkoutErr.Kind)
		assert.Equal(t, "p-lamp", checkoutErr.ProductID)
		assert.Equal(t, "Not enough stock for Desk Lamp.", checkoutErr.Message)
	})
}

func TestPlaceFreeShipping(t *testing.T) {
	order, err := Place(catalog(), orderFor(models.OrderLine{ProductID: "p-chair", Quantity: 5}), placedAt, nil)

	require.NoError(t, err)
	assert.Equal(t, 600.0, order.Subtotal)
	assert.Equal(t, 0.0, order.ShippingFee)
	assert.Equal(t, 600.0, order.Total)
}

func TestPlaceRejections(t *testing.T) {
	cases := []struct {
		name  string
		lines []models.OrderLine
		kind  Kind
	}{
		{"empty cart", nil, KindEmptyOrder},
		{"zero quantity", []models.OrderLine{{ProductID: "p-lamp", Quantity: 0}}, KindInvalidQuantity},
		{"unknown product", []models.OrderLine{{ProductID: "p-missing", Quantity: 1}}, KindUnavailable},
		{"inactive product", []models.OrderLine{{ProductID: "p-retired", Quantity: 1}}, KindUnavailable},
		{"too many", []models.OrderLine{{ProductID: "p-lamp", Quantity: 4}}, KindInsufficientStock},
		{
			"second line fails after first reserved",
			[]models.OrderLine{{ProductID: "p-chair", Quantity: 1}, {ProductID: "p-missing", Quantity: 1}},
			KindUnavailable,
		},
		{
			"repeated product exceeds stock in total",
			[]models.OrderLine{{ProductID: "p-lamp", Quantity: 2}, {ProductID: "p-lamp", Quantity: 2}},
			KindInsufficientStock,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Place(catalog(), orderFor(tc.lines...), placedAt, nil)

			checkoutErr, ok := AsError(err)
			require.True(t, ok, "expected a checkout error, got %v", err)
			assert.Equal(t, tc.kind, checkoutErr.Kind)
		})
	}
}

func TestPrice(t *testing.T) {
	t.Run("Rounds to cents", func(t *testing.T) {
		totals := Price([]models.OrderItem{
			{Price: 0.1, Quantity: 3},
			{Price: 19.99, Quantity: 1},
		})

		assert.Equal(t, 20.29, totals.Subtotal)
		assert.Equal(t, 20.0, totals.ShippingFee)
		assert.Equal(t, 40.29, totals.Total)
	})

	t.Run("Threshold is inclusive", func(t *testing.T) {
		totals := Price([]models.OrderItem{{Price: 250, Quantity: 2}})

		assert.Equal(t, 0.0, totals.ShippingFee)
		assert.Equal(t, 500.0, totals.Total)
	})

	t.Run("Just under the threshold pays shipping", func(t *testing.T) {
		totals := Price([]models.OrderItem{{Price: 499.99, Quantity: 1}})

		assert.Equal(t, 20.0, totals.ShippingFee)
		assert.Equal(t, 519.99, totals.Total)
	})
}

func TestOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^BST-\d{8}[1-9]\d$`)

	for i := 0; i < 50; i++ {
		number := OrderNumber(placedAt)

		assert.Regexp(t, pattern, number)
		assert.Equal(t, "BST-80413000", number[:12])
	}
}

func TestUniqueOrderNumber(t *testing.T) {
	t.Run("Skips taken numbers", func(t *testing.T) {
		calls := 0

		number, err := UniqueOrderNumber(placedAt, func(string) (bool, error) {
			calls++
			return calls < 3, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.NotEmpty(t, number)
	})

	t.Run("Gives up when every candidate is taken", func(t *testing.T) {
		_, err := UniqueOrderNumber(placedAt, func(string) (bool, error) { return true, nil })

		assert.ErrorIs(t, err, ErrOrderNumberExhausted)
	})

	t.Run("Lookup errors are returned instead of retried", func(t *testing.T) {
		lookupErr := errors.New("connection reset")
		calls := 0

		_, err := UniqueOrderNumber(placedAt, func(string) (bool, error) {
			calls++
			return false, lookupErr
		})

		assert.ErrorIs(t, err, lookupErr)
		assert.NotErrorIs(t, err, ErrOrderNumberExhausted)
		assert.Equal(t, 1, calls)
	})

	t.Run("Place stops on a lookup error", func(t *testing.T) {
		lookupErr := errors.New("connection reset")
		products := catalog()

		_, err := Place(products, orderFor(models.OrderLine{ProductID: "p-lamp", Quantity: 1}), placedAt, func(string) (bool, error) {
			return false, lookupErr
		})

		assert.ErrorIs(t, err, lookupErr)
	})
}
