package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/monocle-dev/bertostore/internal/models"
	log "github.com/sirupsen/logrus"
)

type ProductSource interface {
	GetActiveProducts(ctx context.Context) ([]models.Product, error)
}

type LowStockNotifier interface {
	LowStock(ctx context.Context, products []models.Product, threshold int) error
}

// Scheduler periodically sweeps the catalog for active products running low
// on stock. A product is reported once and again only after it has been
// restocked to the threshold and dropped below it again.
type Scheduler struct {
	products  ProductSource
	notifier  LowStockNotifier
	interval  time.Duration
	threshold int
	logger    log.FieldLogger

	mu        sync.RWMutex
	alerted   map[string]struct{}
	lastSweep time.Time
	running   bool
}

func NewScheduler(products ProductSource, notifier LowStockNotifier, interval time.Duration, threshold int, logger log.FieldLogger) *Scheduler {
	return &Scheduler{
		products:  products,
		notifier:  notifier,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
		alerted:   make(map[string]struct{}),
	}
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.WithFields(log.Fields{
		"interval":  s.interval.String(),
		"threshold": s.threshold,
	}).Info("Starting low stock scheduler")

	s.setRunning(true)
	defer s.setRunning(false)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Low stock scheduler stopped")
			return nil
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Scheduler) sweepAndLog(ctx context.Context) {
	reported, err := s.Sweep(ctx)

	if err != nil {
		s.logger.WithError(err).Error("Low stock sweep failed")
		return
	}

	if len(reported) > 0 {
		s.logger.WithField("count", len(reported)).Warn("Reported low stock products")
	}
}

// Sweep returns the products reported by this pass. Products whose alert
// could not be delivered are retried on the next pass.
func (s *Scheduler) Sweep(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.GetActiveProducts(ctx)

	if err != nil {
		return nil, err
	}

	low := make(map[string]struct{})
	fresh := make([]models.Product, 0)

	s.mu.Lock()

	for _, product := range products {
		if product.Stock >= s.threshold {
			continue
		}

		low[product.ID] = struct{}{}

		if _, seen := s.alerted[product.ID]; !seen {
			fresh = append(fresh, product)
		}
	}

	for id := range s.alerted {
		if _, stillLow := low[id]; !stillLow {
			delete(s.alerted, id)
		}
	}

	s.lastSweep = time.Now()
	s.mu.Unlock()

	if len(fresh) == 0 {
		return fresh, nil
	}

	if err := s.notifier.LowStock(ctx, fresh, s.threshold); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, product := range fresh {
		s.alerted[product.ID] = struct{}{}
	}
	s.mu.Unlock()

	return fresh, nil
}

func (s *Scheduler) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = running
}

// GetStatus reports whether the sweep loop is running, how many products
// are currently alerted and when the catalog was last swept.
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := map[string]interface{}{
		"running":          s.running,
		"alerted_products": len(s.alerted),
		"threshold":        s.threshold,
	}

	if !s.lastSweep.IsZero() {
		status["last_sweep"] = s.lastSweep.Format(time.RFC3339)
	}

	return status
}
