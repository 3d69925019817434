package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
)

// journalEntry records an order placement before its two file writes. An
// entry whose order never reached orders.json is rolled back by restoring
// the listed stock levels; nothing else in the catalog is touched.
type journalEntry struct {
	Order   models.Order `json:"order"`
	Restock []stockLevel `json:"restock"`
}

type stockLevel struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

// newJournalEntry captures the pre-placement stock of every product the
// order reserves from.
func newJournalEntry(order models.Order, before []models.Product) journalEntry {
	entry := journalEntry{Order: order}
	seen := make(map[string]bool, len(order.Items))

	for _, item := range order.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		for _, product := range before {
			if product.ID == item.ProductID {
				entry.Restock = append(entry.Restock, stockLevel{ProductID: product.ID, Stock: product.Stock})
				break
			}
		}
	}

	return entry
}

// rollback puts the recorded stock back on products that still exist and
// reports how many were changed.
func (e journalEntry) rollback(products []models.Product) int {
	levels := make(map[string]int, len(e.Restock))

	for _, level := range e.Restock {
		levels[level.ProductID] = level.Stock
	}

	changed := 0

	for i := range products {
		if stock, ok := levels[products[i].ID]; ok && products[i].Stock != stock {
			products[i].Stock = stock
			changed++
		}
	}

	return changed
}

type orderJournal struct {
	path string
}

func newOrderJournal(dir string) *orderJournal {
	return &orderJournal{path: filepath.Join(dir, "orders.journal.json")}
}

func (j *orderJournal) record(entry journalEntry) error {
	return writeJSONFile(j.path, entry)
}

// pending returns the unfinished entry, or nil when the journal is clear.
func (j *orderJournal) pending() (*journalEntry, error) {
	raw, err := os.ReadFile(j.path)

	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(ErrCorruptStore, "read %s: %v", j.path, err)
	}

	var entry journalEntry

	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.Wrapf(ErrCorruptStore, "decode %s: %v", j.path, err)
	}

	return &entry, nil
}

func (j *orderJournal) clear() error {
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "clear %s", j.path)
	}

	return nil
}
