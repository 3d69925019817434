package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/monocle-dev/bertostore/db"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/checkout"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore implements Store with gorm. Order placement locks the
// referenced product rows for the length of one transaction.
type PostgresStore struct {
	options

	db *gorm.DB

	readyMu sync.Mutex
	ready   bool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(database *gorm.DB, opts ...Option) *PostgresStore {
	return &PostgresStore{
		options: buildOptions(opts),
		db:      database,
	}
}

func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}

func (s *PostgresStore) EnsureReady(ctx context.Context) error {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()

	if s.ready {
		return nil
	}

	database := s.db.WithContext(ctx)

	if err := db.MigrateDatabase(database); err != nil {
		return err
	}

	var users int64

	if err := database.Model(&models.User{}).Count(&users).Error; err != nil {
		return errors.Wrap(err, "count users")
	}

	now := s.now()

	if users == 0 {
		hash, err := auth.HashPassword(s.seed.AdminPassword)

		if err != nil {
			return err
		}

		admin := newUser(models.NewUser{
			Name:  DefaultAdminName,
			Email: s.seed.AdminEmail,
			Role:  models.RoleAdmin,
		}, hash, now)

		if err := database.Create(&admin).Error; err != nil {
			return errors.Wrap(err, "seed admin user")
		}

		s.logger.WithField("email", admin.Email).Info("Seeded default admin user")
	}

	var products int64

	if err := database.Model(&models.Product{}).Count(&products).Error; err != nil {
		return errors.Wrap(err, "count products")
	}

	if products == 0 && len(s.seed.Products) > 0 {
		catalog := make([]models.Product, 0, len(s.seed.Products))

		for _, input := range s.seed.Products {
			catalog = append(catalog, buildProduct(input, now))
		}

		if err := database.CreateInBatches(catalog, 50).Error; err != nil {
			return errors.Wrap(err, "seed catalog")
		}

		s.logger.WithField("count", len(catalog)).Info("Seeded starter catalog")
	}

	s.ready = true

	return nil
}

func (s *PostgresStore) session(ctx context.Context) (*gorm.DB, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	return s.db.WithContext(ctx), nil
}

func (s *PostgresStore) GetUsers(ctx context.Context) ([]models.User, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	var users []models.User

	if err := database.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	return users, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	var user models.User

	if err := database.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	if !isUUID(id) {
		return nil, ErrNotFound
	}

	var user models.User

	if err := database.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, input models.NewUser) (*models.User, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	if _, err := s.FindUserByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)

	if err != nil {
		return nil, err
	}

	user := newUser(input, hash, s.now())

	if err := database.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create user")
	}

	return &user, nil
}

func (s *PostgresStore) listProducts(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.Product, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	var products []models.Product

	if err := scope(database).Order("updated_at DESC").Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	return products, nil
}

func (s *PostgresStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.listProducts(ctx, func(tx *gorm.DB) *gorm.DB { return tx })
}

func (s *PostgresStore) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.listProducts(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("active = ?", true)
	})
}

func (s *PostgresStore) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}

	return s.listProducts(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("active = ? AND featured = ?", true, true).Limit(limit)
	})
}

func (s *PostgresStore) GetProductCategories(ctx context.Context) ([]string, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	categories := make([]string, 0)

	err = database.Model(&models.Product{}).
		Where("active = ?", true).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error

	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	return categories, nil
}

func (s *PostgresStore) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	if !isUUID(id) {
		return nil, ErrNotFound
	}

	var product models.Product

	if err := database.First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}

	return &product, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	product := buildProduct(input, s.now())

	if err := database.Create(&product).Error; err != nil {
		return nil, errors.Wrap(err, "create product")
	}

	return &product, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	if !isUUID(id) {
		return nil, ErrNotFound
	}

	var product models.Product

	err = database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		applyProductUpdate(&product, update, s.now())

		return tx.Save(&product).Error
	})

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	database, err := s.session(ctx)

	if err != nil {
		return false, err
	}

	if !isUUID(id) {
		return false, nil
	}

	result := database.Delete(&models.Product{}, "id = ?", id)

	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete product")
	}

	return result.RowsAffected > 0, nil
}

// CreateOrder locks the referenced products in id order so concurrent
// checkouts cannot deadlock, then reserves, prices and inserts in one
// transaction.
func (s *PostgresStore) CreateOrder(ctx context.Context, input models.OrderCreateInput) (*models.Order, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(input.Items))
	seen := make(map[string]struct{}, len(input.Items))

	for _, line := range input.Items {
		if _, ok := seen[line.ProductID]; ok || !isUUID(line.ProductID) {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	var order *models.Order

	err = database.Transaction(func(tx *gorm.DB) error {
		products := make([]models.Product, 0, len(ids))

		if len(ids) > 0 {
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id IN ?", ids).
				Order("id").
				Find(&products).Error

			if err != nil {
				return errors.Wrap(err, "lock products")
			}
		}

		taken := func(number string) (bool, error) {
			var count int64

			if err := tx.Model(&models.Order{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
				return false, errors.Wrap(err, "check order number")
			}

			return count > 0, nil
		}

		placed, err := checkout.Place(products, input, s.now(), taken)

		if err != nil {
			return err
		}

		for _, product := range products {
			err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				UpdateColumns(map[string]interface{}{
					"stock":      product.Stock,
					"updated_at": product.UpdatedAt,
				}).Error

			if err != nil {
				return errors.Wrapf(err, "reserve stock for %s", product.ID)
			}
		}

		if err := tx.Create(placed).Error; err != nil {
			return errors.Wrap(err, "create order")
		}

		order = placed

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *PostgresStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	var orders []models.Order

	if err := database.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	return orders, nil
}

func (s *PostgresStore) FindOrderByID(ctx context.Context, id string) (*models.Order, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	if !isUUID(id) {
		return nil, ErrNotFound
	}

	var order models.Order

	if err := database.First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}

	return &order, nil
}

func (s *PostgresStore) GetOrdersForUser(ctx context.Context, userID, email string) ([]models.Order, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	query := database.Where("lower(shipping->>'email') = ?", NormalizeEmail(email))

	if isUUID(userID) {
		query = database.Where("customer_user_id = ?", userID).Or("lower(shipping->>'email') = ?", NormalizeEmail(email))
	}

	var orders []models.Order

	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "list customer orders")
	}

	return orders, nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	database, err := s.session(ctx)

	if err != nil {
		return nil, err
	}

	if !isUUID(id) {
		return nil, ErrNotFound
	}

	var order models.Order

	err = database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		order.Status = status
		order.UpdatedAt = s.now()

		return tx.Model(&order).UpdateColumns(map[string]interface{}{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		}).Error
	})

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *PostgresStore) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	products, err := s.GetProducts(ctx)

	if err != nil {
		return nil, err
	}

	orders, err := s.GetOrders(ctx)

	if err != nil {
		return nil, err
	}

	stats := ComputeStats(products, orders)

	return &stats, nil
}
