package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products []models.Product
	err      error
}

func (f *fakeCatalog) GetActiveProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]models.Product(nil), f.products...), f.err
}

func (f *fakeCatalog) setStock(id string, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].Stock = stock
		}
	}
}

type fakeNotifier struct {
	mu     sync.Mutex
	calls  [][]models.Product
	failed bool
}

func (f *fakeNotifier) LowStock(_ context.Context, products []models.Product, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failed {
		return errors.New("webhook down")
	}

	f.calls = append(f.calls, products)

	return nil
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))

	for _, product := range products {
		out = append(out, product.ID)
	}

	return out
}

func newTestScheduler(catalog *fakeCatalog, notifier *fakeNotifier) *Scheduler {
	logger, _ := test.NewNullLogger()

	return NewScheduler(catalog, notifier, time.Hour, 6, logger)
}

func TestSweepReportsEachProductOnce(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{products: []models.Product{
		{ID: "lamp", Title: "Desk Lamp", Stock: 2},
		{ID: "chair", Title: "Office Chair", Stock: 6},
		{ID: "mug", Title: "Mug", Stock: 0},
	}}
	notifier := &fakeNotifier{}
	s := newTestScheduler(catalog, notifier)

	reported, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lamp", "mug"}, ids(reported))

	reported, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, reported)
	assert.Equal(t, 1, notifier.callCount())

	t.Run("Restocked products are reported again when they run low", func(t *testing.T) {
		catalog.setStock("lamp", 10)

		reported, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Empty(t, reported)

		catalog.setStock("lamp", 1)

		reported, err = s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"lamp"}, ids(reported))
	})
}

func TestSweepRetriesFailedNotifications(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{products: []models.Product{{ID: "lamp", Stock: 1}}}
	notifier := &fakeNotifier{failed: true}
	s := newTestScheduler(catalog, notifier)

	_, err := s.Sweep(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, s.GetStatus()["alerted_products"])

	notifier.failed = false

	reported, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Len(t, reported, 1)
	assert.Equal(t, 1, s.GetStatus()["alerted_products"])
}

func TestSweepCatalogError(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("store is unreadable")}
	s := newTestScheduler(catalog, &fakeNotifier{})

	_, err := s.Sweep(context.Background())
	assert.EqualError(t, err, "store is unreadable")
}

func TestRunStopsOnCancel(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{{ID: "lamp", Stock: 1}}}
	notifier := &fakeNotifier{}
	s := newTestScheduler(catalog, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- s.Run(ctx)
	}()

	require.Eventually(t, func() bool { return notifier.callCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, true, s.GetStatus()["running"])
	assert.Contains(t, s.GetStatus(), "last_sweep")

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.Equal(t, false, s.GetStatus()["running"])
}
