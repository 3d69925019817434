package handlers

import (
	"testing"
	"time"

	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/stretchr/testify/assert"
)

func titles(products []models.Product) []string {
	out := make([]string, 0, len(products))

	for _, product := range products {
		out = append(out, product.Title)
	}

	return out
}

func TestFilterProducts(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []models.Product{
		{Title: "desk lamp", Description: "Warm light", Category: "Home", Price: 40, UpdatedAt: base},
		{Title: "Office Chair", Description: "Lumbar support", Category: "Home", Price: 220, UpdatedAt: base.Add(2 * time.Hour)},
		{Title: "Water Bottle", Description: "Keeps drinks cold", Category: "Outdoors", Price: 25, UpdatedAt: base.Add(time.Hour)},
	}

	cases := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"newest first by default", ProductFilter{}, []string{"Office Chair", "Water Bottle", "desk lamp"}},
		{"unknown sort falls back", ProductFilter{Sort: "rating"}, []string{"Office Chair", "Water Bottle", "desk lamp"}},
		{"price ascending", ProductFilter{Sort: "price-asc"}, []string{"Water Bottle", "desk lamp", "Office Chair"}},
		{"price descending", ProductFilter{Sort: "price-desc"}, []string{"Office Chair", "desk lamp", "Water Bottle"}},
		{"name ignores case", ProductFilter{Sort: "name"}, []string{"desk lamp", "Office Chair", "Water Bottle"}},
		{"query matches description", ProductFilter{Query: "cold"}, []string{"Water Bottle"}},
		{"category ignores case", ProductFilter{Category: "home", Sort: "price-asc"}, []string{"desk lamp", "Office Chair"}},
		{"no matches", ProductFilter{Query: "tent"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, titles(FilterProducts(products, tc.filter)))
		})
	}
}
