// Package store persists users, products and orders. Two backends implement
// Store: FileStore keeps one JSON file per collection, PostgresStore uses
// gorm.
package store

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultAdminEmail    = "admin@bertostore.com"
	DefaultAdminPassword = "Admin123!"
	DefaultAdminName     = "Store Admin"

	DefaultFeaturedLimit = 8

	// LowStockThreshold counts products with fewer units than this as low.
	LowStockThreshold = 6
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("An account with this email already exists.")

	// ErrCorruptStore means a collection exists but could not be read or
	// decoded. It is never reported as an empty collection.
	ErrCorruptStore = errors.New("store is unreadable")
)

type Store interface {
	// EnsureReady seeds the default admin and catalog on first use and
	// recovers any interrupted order. It is safe to call repeatedly.
	EnsureReady(ctx context.Context) error

	GetUsers(ctx context.Context) ([]models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, input models.NewUser) (*models.User, error)

	GetProducts(ctx context.Context) ([]models.Product, error)
	GetActiveProducts(ctx context.Context) ([]models.Product, error)
	GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error)
	GetProductCategories(ctx context.Context) ([]string, error)
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)

	CreateOrder(ctx context.Context, input models.OrderCreateInput) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	FindOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrdersForUser(ctx context.Context, userID, email string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)

	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// Seed is what EnsureReady writes into empty collections.
type Seed struct {
	AdminEmail    string
	AdminPassword string
	Products      []models.ProductInput
}

func DefaultSeed() Seed {
	return Seed{
		AdminEmail:    DefaultAdminEmail,
		AdminPassword: DefaultAdminPassword,
		Products:      SeedProducts(),
	}
}

func (s Seed) withDefaults() Seed {
	if s.AdminEmail == "" {
		s.AdminEmail = DefaultAdminEmail
	}

	if s.AdminPassword == "" {
		s.AdminPassword = DefaultAdminPassword
	}

	return s
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(value string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")

	return strings.Trim(slug, "-")
}

func newSlug(title string) string {
	return fmt.Sprintf("%s-%d", Slugify(title), rand.Intn(100000))
}

func buildProduct(input models.ProductInput, now time.Time) models.Product {
	return models.Product{
		ID:             uuid.NewString(),
		Slug:           newSlug(input.Title),
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		Image:          input.Image,
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		Stock:          input.Stock,
		SupplierName:   input.SupplierName,
		SupplierURL:    input.SupplierURL,
		Featured:       input.Featured,
		Active:         input.Active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// applyProductUpdate regenerates the slug only when the title changes.
func applyProductUpdate(product *models.Product, update models.ProductUpdate, now time.Time) {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)

		if title != "" && title != product.Title {
			product.Title = title
			product.Slug = newSlug(title)
		}
	}

	if update.Description != nil {
		product.Description = *update.Description
	}

	if update.Category != nil {
		product.Category = *update.Category
	}

	if update.Image != nil {
		product.Image = *update.Image
	}

	if update.Price != nil {
		product.Price = *update.Price
	}

	if update.CompareAtPrice != nil {
		compareAt := *update.CompareAtPrice
		product.CompareAtPrice = &compareAt
	}

	if update.Stock != nil {
		product.Stock = *update.Stock
	}

	if update.SupplierName != nil {
		product.SupplierName = *update.SupplierName
	}

	if update.SupplierURL != nil {
		product.SupplierURL = *update.SupplierURL
	}

	if update.Featured != nil {
		product.Featured = *update.Featured
	}

	if update.Active != nil {
		product.Active = *update.Active
	}

	product.UpdatedAt = now
}

func newUser(input models.NewUser, passwordHash string, now time.Time) models.User {
	role := input.Role

	if role == "" {
		role = models.RoleCustomer
	}

	return models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        NormalizeEmail(input.Email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}
}

func sortUsersNewestFirst(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}

func sortProductsNewestFirst(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].UpdatedAt.After(products[j].UpdatedAt)
	})
}

func sortOrdersNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func activeOnly(products []models.Product) []models.Product {
	active := make([]models.Product, 0, len(products))

	for _, product := range products {
		if product.Active {
			active = append(active, product)
		}
	}

	return active
}

func featuredOnly(products []models.Product, limit int) []models.Product {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}

	featured := make([]models.Product, 0, limit)

	for _, product := range products {
		if !product.Featured {
			continue
		}

		featured = append(featured, product)

		if len(featured) == limit {
			break
		}
	}

	return featured
}

func categoriesOf(products []models.Product) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)

	for _, product := range products {
		if _, ok := seen[product.Category]; ok {
			continue
		}

		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}

	sort.Strings(categories)

	return categories
}

func ordersForUser(orders []models.Order, userID, email string) []models.Order {
	normalized := NormalizeEmail(email)
	matched := make([]models.Order, 0)

	for _, order := range orders {
		owned := order.CustomerUserID != nil && *order.CustomerUserID == userID

		if owned || NormalizeEmail(order.Shipping.Email) == normalized {
			matched = append(matched, order)
		}
	}

	return matched
}

// ComputeStats aggregates the dashboard figures. Revenue excludes cancelled
// orders.
func ComputeStats(products []models.Product, orders []models.Order) models.DashboardStats {
	stats := models.DashboardStats{
		TotalProducts: len(products),
		TotalOrders:   len(orders),
	}

	for _, product := range products {
		if product.Active {
			stats.ActiveProducts++
		}

		if product.Stock < LowStockThreshold {
			stats.LowStockProducts++
		}
	}

	revenue := decimal.Zero

	for _, order := range orders {
		switch order.Status {
		case models.OrderPending:
			stats.PendingOrders++
		case models.OrderFulfilled:
			stats.FulfilledOrders++
		}

		if order.Status != models.OrderCancelled {
			revenue = revenue.Add(decimal.NewFromFloat(order.Total))
		}
	}

	stats.TotalRevenue = revenue.Round(2).InexactFloat64()

	return stats
}
