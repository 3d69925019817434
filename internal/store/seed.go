package store

import "github.com/monocle-dev/bertostore/internal/models"

func price(value float64) *float64 {
	return &value
}

// SeedProducts is the starter catalog written on first run.
func SeedProducts() []models.ProductInput {
	return []models.ProductInput{
		{
			Title:          "Wireless Noise Cancelling Headphones",
			Description:    "Over-ear Bluetooth headphones with active noise cancelling and 30 hour battery life.",
			Category:       "Electronics",
			Image:          "/products/headphones.jpg",
			Price:          129.99,
			CompareAtPrice: price(179.99),
			Stock:          25,
			SupplierName:   "SoundWave Supply Co.",
			SupplierURL:    "https://supplier.example.com/soundwave/headphones",
			Featured:       true,
			Active:         true,
		},
		{
			Title:        "Smart Fitness Watch",
			Description:  "Water resistant fitness tracker with heart rate monitoring, GPS and sleep tracking.",
			Category:     "Electronics",
			Image:        "/products/fitness-watch.jpg",
			Price:        89.5,
			Stock:        40,
			SupplierName: "FitGear Wholesale",
			SupplierURL:  "https://supplier.example.com/fitgear/watch",
			Featured:     true,
			Active:       true,
		},
		{
			Title:          "Ergonomic Office Chair",
			Description:    "Mesh office chair with adjustable lumbar support, armrests and tilt lock.",
			Category:       "Home & Office",
			Image:          "/products/office-chair.jpg",
			Price:          219,
			CompareAtPrice: price(279),
			Stock:          8,
			SupplierName:   "ComfortWorks",
			SupplierURL:    "https://supplier.example.com/comfortworks/chair",
			Featured:       true,
			Active:         true,
		},
		{
			Title:        "Stainless Steel Water Bottle",
			Description:  "Double wall insulated bottle that keeps drinks cold for 24 hours or hot for 12.",
			Category:     "Outdoors",
			Image:        "/products/water-bottle.jpg",
			Price:        24.95,
			Stock:        120,
			SupplierName: "TrailMate Goods",
			SupplierURL:  "https://supplier.example.com/trailmate/bottle",
			Active:       true,
		},
		{
			Title:        "LED Desk Lamp",
			Description:  "Dimmable desk lamp with five color temperatures and a USB charging port.",
			Category:     "Home & Office",
			Image:        "/products/desk-lamp.jpg",
			Price:        39.99,
			Stock:        60,
			SupplierName: "BrightLine Lighting",
			SupplierURL:  "https://supplier.example.com/brightline/lamp",
			Featured:     true,
			Active:       true,
		},
		{
			Title:          "Yoga Mat Pro",
			Description:    "Non-slip 6mm yoga mat with alignment lines and a carrying strap.",
			Category:       "Fitness",
			Image:          "/products/yoga-mat.jpg",
			Price:          34,
			CompareAtPrice: price(45),
			Stock:          5,
			SupplierName:   "FitGear Wholesale",
			SupplierURL:    "https://supplier.example.com/fitgear/yoga-mat",
			Active:         true,
		},
		{
			Title:        "Portable Bluetooth Speaker",
			Description:  "Rugged waterproof speaker with 360 degree sound and 12 hour playback.",
			Category:     "Electronics",
			Image:        "/products/speaker.jpg",
			Price:        59.99,
			Stock:        35,
			SupplierName: "SoundWave Supply Co.",
			SupplierURL:  "https://supplier.example.com/soundwave/speaker",
			Featured:     true,
			Active:       true,
		},
		{
			Title:        "Camping Hammock",
			Description:  "Lightweight parachute nylon hammock with tree straps, holds up to 200 kg.",
			Category:     "Outdoors",
			Image:        "/products/hammock.jpg",
			Price:        42.5,
			Stock:        18,
			SupplierName: "TrailMate Goods",
			SupplierURL:  "https://supplier.example.com/trailmate/hammock",
			Active:       true,
		},
	}
}
