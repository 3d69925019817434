package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))

	return payload
}

func validProduct() map[string]interface{} {
	return map[string]interface{}{
		"title":        "  Trail Backpack  ",
		"description":  "Thirty litre pack with rain cover.",
		"category":     "Outdoors",
		"image":        "/products/backpack.jpg",
		"price":        79.5,
		"stock":        12.0,
		"supplierName": "TrailMate Goods",
		"supplierUrl":  "https://supplier.example.com/backpack",
	}
}

func messageOf(t *testing.T, err error) string {
	t.Helper()

	var validationErr *Error
	require.ErrorAs(t, err, &validationErr)

	return validationErr.Message
}

func TestParseProductCreate(t *testing.T) {
	input, err := ParseProductCreate(validProduct())

	require.NoError(t, err)
	assert.Equal(t, "Trail Backpack", input.Title)
	assert.Equal(t, 79.5, input.Price)
	assert.Equal(t, 12, input.Stock)
	assert.Nil(t, input.CompareAtPrice)
	assert.False(t, input.Featured)
	assert.True(t, input.Active)

	t.Run("Numeric strings and string booleans", func(t *testing.T) {
		payload := validProduct()
		payload["price"] = "19.99"
		payload["stock"] = "4"
		payload["compareAtPrice"] = "25"
		payload["featured"] = "TRUE"
		payload["active"] = "false"

		input, err := ParseProductCreate(payload)

		require.NoError(t, err)
		assert.Equal(t, 19.99, input.Price)
		assert.Equal(t, 4, input.Stock)
		require.NotNil(t, input.CompareAtPrice)
		assert.Equal(t, 25.0, *input.CompareAtPrice)
		assert.True(t, input.Featured)
		assert.False(t, input.Active)
	})

	cases := []struct {
		field   string
		value   interface{}
		message string
	}{
		{"title", "ab", "Title must be at least 3 characters."},
		{"title", 42.0, "Title must be at least 3 characters."},
		{"description", "too short", "Description must be at least 10 characters."},
		{"category", "   ", "Category is required."},
		{"image", "products/backpack.jpg", "Image path must start with '/'."},
		{"supplierName", "", "Supplier name is required."},
		{"supplierUrl", "ftp://supplier.example.com", "Supplier URL must start with http or https."},
		{"price", -1.0, "Price must be a valid number greater than or equal to 0."},
		{"price", "free", "Price must be a valid number greater than or equal to 0."},
		{"stock", -2.0, "Stock must be a valid number greater than or equal to 0."},
		{"stock", 1.5, "Stock must be a valid number greater than or equal to 0."},
		{"compareAtPrice", -5.0, "Compare-at price must be greater than or equal to 0."},
		{"featured", "yes", "Featured and active fields must be true or false."},
		{"active", 1.0, "Featured and active fields must be true or false."},
	}

	for _, tc := range cases {
		t.Run(tc.field+" "+tc.message, func(t *testing.T) {
			payload := validProduct()
			payload[tc.field] = tc.value

			_, err := ParseProductCreate(payload)

			assert.Equal(t, tc.message, messageOf(t, err))
		})
	}

	t.Run("Missing body", func(t *testing.T) {
		_, err := ParseProductCreate(nil)

		assert.Equal(t, "Invalid request body.", messageOf(t, err))
	})
}

func TestParseProductUpdate(t *testing.T) {
	update, err := ParseProductUpdate(decode(t, `{"price": "12.5", "active": false}`))

	require.NoError(t, err)
	require.NotNil(t, update.Price)
	assert.Equal(t, 12.5, *update.Price)
	require.NotNil(t, update.Active)
	assert.False(t, *update.Active)
	assert.Nil(t, update.Title)
	assert.Nil(t, update.Stock)

	cases := []struct {
		body    string
		message string
	}{
		{`{}`, "No valid update fields were provided."},
		{`{"unknown": 1}`, "No valid update fields were provided."},
		{`{"price": -1}`, "Price must be greater than or equal to 0."},
		{`{"stock": "lots"}`, "Stock must be greater than or equal to 0."},
		{`{"featured": "maybe"}`, "Featured must be true or false."},
		{`{"active": null}`, "Active must be true or false."},
		{`{"title": "no"}`, "Title must be at least 3 characters."},
		{`{"supplierUrl": "www.example.com"}`, "Supplier URL must start with http or https."},
	}

	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			_, err := ParseProductUpdate(decode(t, tc.body))

			assert.Equal(t, tc.message, messageOf(t, err))
		})
	}
}

const validOrder = `{
	"customerUserId": "forged-id",
	"items": [{"productId": "p-1", "quantity": 2.7}],
	"shipping": {
		"fullName": " Jane Doe ",
		"email": "Jane@Example.com",
		"phone": "555-0101",
		"address1": "1 Main St",
		"city": "Springfield",
		"state": "IL",
		"postalCode": "62701",
		"country": "US"
	},
	"notes": "  ring twice "
}`

func TestParseOrderCreate(t *testing.T) {
	input, err := ParseOrderCreate(decode(t, validOrder))

	require.NoError(t, err)
	assert.Nil(t, input.CustomerUserID)
	require.Len(t, input.Items, 1)
	assert.Equal(t, "p-1", input.Items[0].ProductID)
	assert.Equal(t, 2, input.Items[0].Quantity)
	assert.Equal(t, "Jane Doe", input.Shipping.FullName)
	assert.Equal(t, "jane@example.com", input.Shipping.Email)
	assert.Empty(t, input.Shipping.Address2)
	assert.Equal(t, "ring twice", input.Notes)

	mutate := func(edit func(payload map[string]interface{})) map[string]interface{} {
		payload := decode(t, validOrder)
		edit(payload)
		return payload
	}

	shipping := func(field string, value interface{}) map[string]interface{} {
		return mutate(func(payload map[string]interface{}) {
			payload["shipping"].(map[string]interface{})[field] = value
		})
	}

	cases := []struct {
		name    string
		payload map[string]interface{}
		message string
	}{
		{"no items", mutate(func(p map[string]interface{}) { p["items"] = []interface{}{} }), "At least one order item is required."},
		{"items not a list", mutate(func(p map[string]interface{}) { p["items"] = "p-1" }), "At least one order item is required."},
		{"item not an object", mutate(func(p map[string]interface{}) { p["items"] = []interface{}{"p-1"} }), "Order items are invalid."},
		{"item without product", mutate(func(p map[string]interface{}) {
			p["items"] = []interface{}{map[string]interface{}{"quantity": 1.0}}
		}), "Each item requires a product ID."},
		{"item quantity zero", mutate(func(p map[string]interface{}) {
			p["items"] = []interface{}{map[string]interface{}{"productId": "p-1", "quantity": 0.0}}
		}), "Each item quantity must be at least 1."},
		{"no shipping", mutate(func(p map[string]interface{}) { delete(p, "shipping") }), "Shipping details are required."},
		{"short name", shipping("fullName", "J"), "Shipping full name is required."},
		{"bad email", shipping("email", "jane.example.com"), "A valid shipping email is required."},
		{"short phone", shipping("phone", "555"), "A valid phone number is required."},
		{"no city", shipping("city", ""), "Shipping address, city, and state are required."},
		{"no country", shipping("country", nil), "Postal code and country are required."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOrderCreate(tc.payload)

			assert.Equal(t, tc.message, messageOf(t, err))
		})
	}
}

func TestParseRegistration(t *testing.T) {
	registration, err := ParseRegistration(decode(t, `{"name": " Jane ", "email": " Jane@Example.com ", "password": "supersecret"}`))

	require.NoError(t, err)
	assert.Equal(t, "Jane", registration.Name)
	assert.Equal(t, "jane@example.com", registration.Email)
	assert.Equal(t, "supersecret", registration.Password)

	cases := []struct {
		body    string
		message string
	}{
		{`{"name": "Jane", "email": "jane@example.com", "password": "short"}`, "Password must be at least 8 characters."},
		{`{"name": "Jane", "email": "a@b", "password": "supersecret"}`, "A valid email is required."},
		{`{"email": "jane@example.com", "password": "supersecret"}`, "Name must be at least 2 characters."},
		{`{"name": "李", "email": "jane@example.com", "password": "supersecret"}`, "Name must be at least 2 characters."},
		{`{"name": "Jane", "email": "jane@example.com", "password": "密码密码密码密"}`, "Password must be at least 8 characters."},
		{`{"name": 42, "email": "jane@example.com", "password": "supersecret"}`, "Name must be at least 2 characters."},
		{`{"name": "Jane", "email": ["jane@example.com"], "password": "supersecret"}`, "A valid email is required."},
		{`{"name": "Jane", "email": "jane@example.com", "password": 12345678}`, "Password must be at least 8 characters."},
	}

	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			_, err := ParseRegistration(decode(t, tc.body))

			assert.Equal(t, tc.message, messageOf(t, err))
		})
	}

	t.Run("Multibyte names are counted in characters", func(t *testing.T) {
		registration, err := ParseRegistration(decode(t, `{"name": "李明", "email": "li@example.com", "password": "密码密码密码密码"}`))

		require.NoError(t, err)
		assert.Equal(t, "李明", registration.Name)
	})

	t.Run("Missing body", func(t *testing.T) {
		_, err := ParseRegistration(nil)

		assert.Equal(t, "Invalid request body.", messageOf(t, err))
	})
}

func TestParseLogin(t *testing.T) {
	credentials, err := ParseLogin(decode(t, `{"email": " ADMIN@bertostore.com", "password": "Admin123!"}`))

	require.NoError(t, err)
	assert.Equal(t, "admin@bertostore.com", credentials.Email)
	assert.Equal(t, "Admin123!", credentials.Password)

	for _, body := range []string{
		`{"email": "admin@bertostore.com"}`,
		`{"email": 7, "password": "Admin123!"}`,
		`{"email": "admin@bertostore.com", "password": true}`,
	} {
		_, err := ParseLogin(decode(t, body))
		assert.Equal(t, "Email and password are required.", messageOf(t, err), body)
	}
}

func TestMinimumLengthsCountCharacters(t *testing.T) {
	payload := validProduct()
	payload["title"] = "灯具"

	_, err := ParseProductCreate(payload)
	assert.Equal(t, "Title must be at least 3 characters.", messageOf(t, err))

	payload["title"] = "台灯具"
	payload["description"] = "可调光台灯带USB接口"

	input, err := ParseProductCreate(payload)
	require.NoError(t, err)
	assert.Equal(t, "台灯具", input.Title)

	order := decode(t, validOrder)
	order["shipping"].(map[string]interface{})["fullName"] = "李"

	_, err = ParseOrderCreate(order)
	assert.Equal(t, "Shipping full name is required.", messageOf(t, err))
}
