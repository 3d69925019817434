// Package validate turns decoded JSON request bodies into typed inputs.
// Every failure is an *Error whose message is safe to show to the client.
package validate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/monocle-dev/bertostore/internal/models"
)

type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(message string) *Error {
	return &Error{Message: message}
}

var ErrInvalidBody = fail("Invalid request body.")

type Registration struct {
	Name     string
	Email    string
	Password string
}

// ParseRegistration reads name, email and password from a decoded body.
// Non-string values count as empty so each field reports its own message.
func ParseRegistration(payload map[string]interface{}) (*Registration, error) {
	if payload == nil {
		return nil, ErrInvalidBody
	}

	name, _ := text(payload["name"])
	email, _ := text(payload["email"])
	password, _ := payload["password"].(string)
	email = strings.ToLower(email)

	if utf8.RuneCountInString(name) < 2 {
		return nil, fail("Name must be at least 2 characters.")
	}

	if !strings.Contains(email, "@") || utf8.RuneCountInString(email) < 5 {
		return nil, fail("A valid email is required.")
	}

	if utf8.RuneCountInString(password) < 8 {
		return nil, fail("Password must be at least 8 characters.")
	}

	return &Registration{Name: name, Email: email, Password: password}, nil
}

type Credentials struct {
	Email    string
	Password string
}

func ParseLogin(payload map[string]interface{}) (*Credentials, error) {
	if payload == nil {
		return nil, ErrInvalidBody
	}

	email, _ := text(payload["email"])
	password, _ := payload["password"].(string)

	if email == "" || password == "" {
		return nil, fail("Email and password are required.")
	}

	return &Credentials{Email: strings.ToLower(email), Password: password}, nil
}

// text returns the trimmed string and false for any non-string value.
func text(value interface{}) (string, bool) {
	s, ok := value.(string)

	if !ok {
		return "", false
	}

	return strings.TrimSpace(s), true
}

// number accepts JSON numbers and numeric strings.
func number(value interface{}) (float64, bool) {
	var parsed float64

	switch v := value.(type) {
	case float64:
		parsed = v
	case int:
		parsed = float64(v)
	case json.Number:
		f, err := v.Float64()

		if err != nil {
			return 0, false
		}
		parsed = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		if err != nil {
			return 0, false
		}
		parsed = f
	default:
		return 0, false
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}

	return parsed, true
}

// wholeNumber is number restricted to values without a fractional part.
func wholeNumber(value interface{}) (int, bool) {
	parsed, ok := number(value)

	if !ok || parsed != math.Trunc(parsed) || parsed > math.MaxInt32 {
		return 0, false
	}

	return int(parsed), true
}

// boolean accepts JSON booleans and the strings "true" and "false" in any
// case.
func boolean(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}

	return false, false
}

func ParseProductCreate(payload map[string]interface{}) (*models.ProductInput, error) {
	if payload == nil {
		return nil, ErrInvalidBody
	}

	title, _ := text(payload["title"])
	description, _ := text(payload["description"])
	category, _ := text(payload["category"])
	image, _ := text(payload["image"])
	supplierName, _ := text(payload["supplierName"])
	supplierURL, _ := text(payload["supplierUrl"])

	if utf8.RuneCountInString(title) < 3 {
		return nil, fail("Title must be at least 3 characters.")
	}

	if utf8.RuneCountInString(description) < 10 {
		return nil, fail("Description must be at least 10 characters.")
	}

	if category == "" {
		return nil, fail("Category is required.")
	}

	if !strings.HasPrefix(image, "/") {
		return nil, fail("Image path must start with '/'.")
	}

	if supplierName == "" {
		return nil, fail("Supplier name is required.")
	}

	if !strings.HasPrefix(supplierURL, "http") {
		return nil, fail("Supplier URL must start with http or https.")
	}

	price, ok := number(payload["price"])

	if !ok || price < 0 {
		return nil, fail("Price must be a valid number greater than or equal to 0.")
	}

	stock, ok := wholeNumber(payload["stock"])

	if !ok || stock < 0 {
		return nil, fail("Stock must be a valid number greater than or equal to 0.")
	}

	input := &models.ProductInput{
		Title:        title,
		Description:  description,
		Category:     category,
		Image:        image,
		Price:        price,
		Stock:        stock,
		SupplierName: supplierName,
		SupplierURL:  supplierURL,
		Active:       true,
	}

	if raw, present := payload["compareAtPrice"]; present {
		compareAt, ok := number(raw)

		if !ok || compareAt < 0 {
			return nil, fail("Compare-at price must be greater than or equal to 0.")
		}

		input.CompareAtPrice = &compareAt
	}

	featuredOK, activeOK := true, true

	if raw, present := payload["featured"]; present {
		input.Featured, featuredOK = boolean(raw)
	}

	if raw, present := payload["active"]; present {
		input.Active, activeOK = boolean(raw)
	}

	if !featuredOK || !activeOK {
		return nil, fail("Featured and active fields must be true or false.")
	}

	return input, nil
}

// ParseProductUpdate validates only the fields present in payload and
// rejects a payload that names none of them.
func ParseProductUpdate(payload map[string]interface{}) (*models.ProductUpdate, error) {
	if payload == nil {
		return nil, ErrInvalidBody
	}

	update := &models.ProductUpdate{}

	if raw, ok := payload["title"]; ok {
		title, _ := text(raw)

		if utf8.RuneCountInString(title) < 3 {
			return nil, fail("Title must be at least 3 characters.")
		}
		update.Title = &title
	}

	if raw, ok := payload["description"]; ok {
		description, _ := text(raw)

		if utf8.RuneCountInString(description) < 10 {
			return nil, fail("Description must be at least 10 characters.")
		}
		update.Description = &description
	}

	if raw, ok := payload["category"]; ok {
		category, _ := text(raw)

		if category == "" {
			return nil, fail("Category is required.")
		}
		update.Category = &category
	}

	if raw, ok := payload["image"]; ok {
		image, _ := text(raw)

		if !strings.HasPrefix(image, "/") {
			return nil, fail("Image path must start with '/'.")
		}
		update.Image = &image
	}

	if raw, ok := payload["supplierName"]; ok {
		supplierName, _ := text(raw)

		if supplierName == "" {
			return nil, fail("Supplier name is required.")
		}
		update.SupplierName = &supplierName
	}

	if raw, ok := payload["supplierUrl"]; ok {
		supplierURL, _ := text(raw)

		if !strings.HasPrefix(supplierURL, "http") {
			return nil, fail("Supplier URL must start with http or https.")
		}
		update.SupplierURL = &supplierURL
	}

	if raw, ok := payload["price"]; ok {
		price, valid := number(raw)

		if !valid || price < 0 {
			return nil, fail("Price must be greater than or equal to 0.")
		}
		update.Price = &price
	}

	if raw, ok := payload["compareAtPrice"]; ok {
		compareAt, valid := number(raw)

		if !valid || compareAt < 0 {
			return nil, fail("Compare-at price must be greater than or equal to 0.")
		}
		update.CompareAtPrice = &compareAt
	}

	if raw, ok := payload["stock"]; ok {
		stock, valid := wholeNumber(raw)

		if !valid || stock < 0 {
			return nil, fail("Stock must be greater than or equal to 0.")
		}
		update.Stock = &stock
	}

	if raw, ok := payload["featured"]; ok {
		featured, valid := boolean(raw)

		if !valid {
			return nil, fail("Featured must be true or false.")
		}
		update.Featured = &featured
	}

	if raw, ok := payload["active"]; ok {
		active, valid := boolean(raw)

		if !valid {
			return nil, fail("Active must be true or false.")
		}
		update.Active = &active
	}

	if update.IsEmpty() {
		return nil, fail("No valid update fields were provided.")
	}

	return update, nil
}

// ParseOrderCreate validates a checkout body. Any customerUserId in the
// body is ignored; the caller fills it from the session.
func ParseOrderCreate(payload map[string]interface{}) (*models.OrderCreateInput, error) {
	if payload == nil {
		return nil, ErrInvalidBody
	}

	rawItems, ok := payload["items"].([]interface{})

	if !ok || len(rawItems) == 0 {
		return nil, fail("At least one order item is required.")
	}

	items := make([]models.OrderLine, 0, len(rawItems))

	for _, rawItem := range rawItems {
		item, ok := rawItem.(map[string]interface{})

		if !ok {
			return nil, fail("Order items are invalid.")
		}

		productID, _ := text(item["productId"])

		if productID == "" {
			return nil, fail("Each item requires a product ID.")
		}

		quantity, ok := number(item["quantity"])

		if !ok || quantity < 1 || quantity > math.MaxInt32 {
			return nil, fail("Each item quantity must be at least 1.")
		}

		items = append(items, models.OrderLine{
			ProductID: productID,
			Quantity:  int(math.Floor(quantity)),
		})
	}

	rawShipping, ok := payload["shipping"].(map[string]interface{})

	if !ok {
		return nil, fail("Shipping details are required.")
	}

	field := func(name string) string {
		value, _ := text(rawShipping[name])
		return value
	}

	shipping := models.ShippingDetails{
		FullName:   field("fullName"),
		Email:      strings.ToLower(field("email")),
		Phone:      field("phone"),
		Address1:   field("address1"),
		Address2:   field("address2"),
		City:       field("city"),
		State:      field("state"),
		PostalCode: field("postalCode"),
		Country:    field("country"),
	}

	if utf8.RuneCountInString(shipping.FullName) < 2 {
		return nil, fail("Shipping full name is required.")
	}

	if !strings.Contains(shipping.Email, "@") {
		return nil, fail("A valid shipping email is required.")
	}

	if utf8.RuneCountInString(shipping.Phone) < 7 {
		return nil, fail("A valid phone number is required.")
	}

	if shipping.Address1 == "" || shipping.City == "" || shipping.State == "" {
		return nil, fail("Shipping address, city, and state are required.")
	}

	if shipping.PostalCode == "" || shipping.Country == "" {
		return nil, fail("Postal code and country are required.")
	}

	notes, _ := text(payload["notes"])

	return &models.OrderCreateInput{
		Shipping: shipping,
		Items:    items,
		Notes:    notes,
	}, nil
}
