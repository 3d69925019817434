package store

import (
	"context"
	"os"
	"slices"
	"sync"

	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/checkout"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FileStore keeps users, products and orders in three JSON files under one
// directory. Each collection has its own lock, so a single process never
// loses writes; two processes sharing a directory still can.
type FileStore struct {
	options

	dir      string
	users    *collection[models.User]
	products *collection[models.Product]
	orders   *collection[models.Order]
	journal  *orderJournal

	// recovering is set when a failed placement could not be rolled back
	// in place. Guarded by products.mu.
	recovering bool

	readyMu sync.Mutex
	ready   bool
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string, opts ...Option) *FileStore {
	return &FileStore{
		options:  buildOptions(opts),
		dir:      dir,
		users:    newCollection[models.User](dir, "users.json"),
		products: newCollection[models.Product](dir, "products.json"),
		orders:   newCollection[models.Order](dir, "orders.json"),
		journal:  newOrderJournal(dir),
	}
}

// EnsureReady runs initialization once per process. A failed attempt is
// not memoized, so the next call retries.
func (s *FileStore) EnsureReady(ctx context.Context) error {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()

	if s.ready {
		return nil
	}

	if err := s.initialize(ctx); err != nil {
		return err
	}

	s.ready = true

	return nil
}

func (s *FileStore) initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create data directory %s", s.dir)
	}

	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	s.products.mu.Lock()
	defer s.products.mu.Unlock()
	s.orders.mu.Lock()
	defer s.orders.mu.Unlock()

	if err := s.recoverPendingOrder(); err != nil {
		return err
	}

	users, err := s.users.read()

	if err != nil {
		return err
	}

	products, err := s.products.read()

	if err != nil {
		return err
	}

	orders, err := s.orders.read()

	if err != nil {
		return err
	}

	now := s.now()

	if len(users) == 0 {
		hash, err := auth.HashPassword(s.seed.AdminPassword)

		if err != nil {
			return err
		}

		admin := newUser(models.NewUser{
			Name:  DefaultAdminName,
			Email: s.seed.AdminEmail,
			Role:  models.RoleAdmin,
		}, hash, now)

		users = append(users, admin)
		s.logger.WithField("email", admin.Email).Info("Seeded default admin user")
	}

	if len(products) == 0 && len(s.seed.Products) > 0 {
		for _, input := range s.seed.Products {
			products = append(products, buildProduct(input, now))
		}
		s.logger.WithField("count", len(products)).Info("Seeded starter catalog")
	}

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error { return s.users.write(users) })
	group.Go(func() error { return s.products.write(products) })
	group.Go(func() error { return s.orders.write(orders) })

	return group.Wait()
}

// recoverPendingOrder rolls back an order placement interrupted between
// its writes. Products are always written before orders, so an order that
// is already present means both writes landed and only the journal is
// stale. Otherwise the order was never confirmed to the client: its stock
// is restored and the order is dropped. Callers hold the product and order
// locks.
func (s *FileStore) recoverPendingOrder() error {
	entry, err := s.journal.pending()

	if err != nil || entry == nil {
		return err
	}

	orders, err := s.orders.read()

	if err != nil {
		return err
	}

	committed := slices.ContainsFunc(orders, func(order models.Order) bool {
		return order.ID == entry.Order.ID
	})

	if !committed {
		products, err := s.products.read()

		if err != nil {
			return err
		}

		if restored := entry.rollback(products); restored > 0 {
			if err := s.products.write(products); err != nil {
				return err
			}
		}

		s.logger.WithFields(log.Fields{
			"order_id":     entry.Order.ID,
			"order_number": entry.Order.OrderNumber,
		}).Warn("Rolled back interrupted order placement")
	}

	return s.journal.clear()
}

// settleFailedOrder finishes a rollback left over from an earlier failed
// placement before the catalog is changed again. Callers hold the product
// lock.
func (s *FileStore) settleFailedOrder() error {
	if !s.recovering {
		return nil
	}

	s.orders.mu.Lock()
	defer s.orders.mu.Unlock()

	return s.retryRecovery()
}

// retryRecovery callers hold the product and order locks.
func (s *FileStore) retryRecovery() error {
	if err := s.recoverPendingOrder(); err != nil {
		return errors.Wrapf(ErrCorruptStore, "roll back failed order placement: %v", err)
	}

	s.recovering = false

	return nil
}

func (s *FileStore) GetUsers(ctx context.Context) ([]models.User, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.users.mu.RLock()
	users, err := s.users.read()
	s.users.mu.RUnlock()

	if err != nil {
		return nil, err
	}

	sortUsersNewestFirst(users)

	return users, nil
}

func (s *FileStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.GetUsers(ctx)

	if err != nil {
		return nil, err
	}

	normalized := NormalizeEmail(email)

	for i := range users {
		if users[i].Email == normalized {
			return &users[i], nil
		}
	}

	return nil, ErrNotFound
}

func (s *FileStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	users, err := s.GetUsers(ctx)

	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}

	return nil, ErrNotFound
}

// CreateUser returns ErrEmailTaken when the normalized email is in use.
func (s *FileStore) CreateUser(ctx context.Context, input models.NewUser) (*models.User, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)

	if err != nil {
		return nil, err
	}

	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	users, err := s.users.read()

	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(input.Email)

	for _, user := range users {
		if user.Email == email {
			return nil, ErrEmailTaken
		}
	}

	user := newUser(input, hash, s.now())

	if err := s.users.write(append(users, user)); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *FileStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.products.mu.RLock()
	products, err := s.products.read()
	s.products.mu.RUnlock()

	if err != nil {
		return nil, err
	}

	sortProductsNewestFirst(products)

	return products, nil
}

func (s *FileStore) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.GetProducts(ctx)

	if err != nil {
		return nil, err
	}

	return activeOnly(products), nil
}

func (s *FileStore) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := s.GetActiveProducts(ctx)

	if err != nil {
		return nil, err
	}

	return featuredOnly(products, limit), nil
}

func (s *FileStore) GetProductCategories(ctx context.Context) ([]string, error) {
	products, err := s.GetActiveProducts(ctx)

	if err != nil {
		return nil, err
	}

	return categoriesOf(products), nil
}

func (s *FileStore) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	products, err := s.GetProducts(ctx)

	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}

	return nil, ErrNotFound
}

func (s *FileStore) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.products.mu.Lock()
	defer s.products.mu.Unlock()

	if err := s.settleFailedOrder(); err != nil {
		return nil, err
	}

	products, err := s.products.read()

	if err != nil {
		return nil, err
	}

	product := buildProduct(input, s.now())

	if err := s.products.write(append([]models.Product{product}, products...)); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *FileStore) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.products.mu.Lock()
	defer s.products.mu.Unlock()

	if err := s.settleFailedOrder(); err != nil {
		return nil, err
	}

	products, err := s.products.read()

	if err != nil {
		return nil, err
	}

	index := slices.IndexFunc(products, func(product models.Product) bool {
		return product.ID == id
	})

	if index == -1 {
		return nil, ErrNotFound
	}

	applyProductUpdate(&products[index], update, s.now())

	if err := s.products.write(products); err != nil {
		return nil, err
	}

	product := products[index]

	return &product, nil
}

// DeleteProduct hard-deletes and reports whether a row was removed. Orders
// keep their item snapshots.
func (s *FileStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return false, err
	}

	s.products.mu.Lock()
	defer s.products.mu.Unlock()

	if err := s.settleFailedOrder(); err != nil {
		return false, err
	}

	products, err := s.products.read()

	if err != nil {
		return false, err
	}

	remaining := slices.DeleteFunc(slices.Clone(products), func(product models.Product) bool {
		return product.ID == id
	})

	if len(remaining) == len(products) {
		return false, nil
	}

	if err := s.products.write(remaining); err != nil {
		return false, err
	}

	return true, nil
}

// CreateOrder places an order under the product and order locks. The
// journal entry is written first; if either write fails the reserved stock
// is restored before the error is returned. A rollback that fails too is
// retried before the next catalog change and on the next start.
func (s *FileStore) CreateOrder(ctx context.Context, input models.OrderCreateInput) (*models.Order, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.products.mu.Lock()
	defer s.products.mu.Unlock()
	s.orders.mu.Lock()
	defer s.orders.mu.Unlock()

	if s.recovering {
		if err := s.retryRecovery(); err != nil {
			return nil, err
		}
	}

	products, err := s.products.read()

	if err != nil {
		return nil, err
	}

	orders, err := s.orders.read()

	if err != nil {
		return nil, err
	}

	before := slices.Clone(products)
	numbers := make(map[string]struct{}, len(orders))

	for _, order := range orders {
		numbers[order.OrderNumber] = struct{}{}
	}

	order, err := checkout.Place(products, input, s.now(), func(number string) (bool, error) {
		_, taken := numbers[number]
		return taken, nil
	})

	if err != nil {
		return nil, err
	}

	if err := s.journal.record(newJournalEntry(*order, before)); err != nil {
		return nil, err
	}

	if err := s.products.write(products); err != nil {
		if clearErr := s.journal.clear(); clearErr != nil {
			s.recovering = true
			s.logger.WithError(clearErr).WithField("order_id", order.ID).
				Error("Failed to clear journal for abandoned order")
		}
		return nil, err
	}

	if err := s.orders.write(append([]models.Order{*order}, orders...)); err != nil {
		if rollbackErr := s.recoverPendingOrder(); rollbackErr != nil {
			s.recovering = true
			s.logger.WithError(rollbackErr).WithField("order_id", order.ID).
				Error("Failed to restore stock after order write failure")
		}
		return nil, err
	}

	if err := s.journal.clear(); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to clear order journal")
	}

	return order, nil
}

func (s *FileStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.orders.mu.RLock()
	orders, err := s.orders.read()
	s.orders.mu.RUnlock()

	if err != nil {
		return nil, err
	}

	sortOrdersNewestFirst(orders)

	return orders, nil
}

func (s *FileStore) FindOrderByID(ctx context.Context, id string) (*models.Order, error) {
	orders, err := s.GetOrders(ctx)

	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}

	return nil, ErrNotFound
}

func (s *FileStore) GetOrdersForUser(ctx context.Context, userID, email string) ([]models.Order, error) {
	orders, err := s.GetOrders(ctx)

	if err != nil {
		return nil, err
	}

	return ordersForUser(orders, userID, email), nil
}

// UpdateOrderStatus overwrites the status; any status may follow any other.
func (s *FileStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.orders.mu.Lock()
	defer s.orders.mu.Unlock()

	orders, err := s.orders.read()

	if err != nil {
		return nil, err
	}

	index := slices.IndexFunc(orders, func(order models.Order) bool {
		return order.ID == id
	})

	if index == -1 {
		return nil, ErrNotFound
	}

	orders[index].Status = status
	orders[index].UpdatedAt = s.now()

	if err := s.orders.write(orders); err != nil {
		return nil, err
	}

	order := orders[index]

	return &order, nil
}

func (s *FileStore) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
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
