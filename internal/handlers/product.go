package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/monocle-dev/bertostore/internal/store"
	"github.com/monocle-dev/bertostore/internal/utils"
	"github.com/monocle-dev/bertostore/internal/validate"
)

const productNotFound = "Product not found."

type ProductFilter struct {
	Query    string
	Category string
	Sort     string
}

func productFilterFrom(ctx *gin.Context) ProductFilter {
	return ProductFilter{
		Query:    strings.ToLower(strings.TrimSpace(ctx.Query("q"))),
		Category: strings.TrimSpace(ctx.Query("category")),
		Sort:     strings.TrimSpace(ctx.Query("sort")),
	}
}

// FilterProducts applies the storefront search, category and sort options.
// Without a recognised sort the newest update comes first.
func FilterProducts(products []models.Product, filter ProductFilter) []models.Product {
	filtered := make([]models.Product, 0, len(products))

	for _, product := range products {
		if filter.Query != "" &&
			!strings.Contains(strings.ToLower(product.Title), filter.Query) &&
			!strings.Contains(strings.ToLower(product.Description), filter.Query) {
			continue
		}

		if filter.Category != "" && !strings.EqualFold(product.Category, filter.Category) {
			continue
		}

		filtered = append(filtered, product)
	}

	var less func(a, b models.Product) bool

	switch filter.Sort {
	case "price-asc":
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case "price-desc":
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case "name":
		less = func(a, b models.Product) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	default:
		less = func(a, b models.Product) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return less(filtered[i], filtered[j])
	})

	return filtered
}

func (h *Handler) ListProducts(ctx *gin.Context) {
	identity := utils.GetIdentity(ctx)
	includeInactive := ctx.Query("includeInactive") == "1" &&
		auth.Allow(identity, auth.ResourceInactiveProduct, auth.ActionList)

	var (
		products []models.Product
		err      error
	)

	if includeInactive {
		products, err = h.store.GetProducts(ctx.Request.Context())
	} else {
		products, err = h.store.GetActiveProducts(ctx.Request.Context())
	}

	if err != nil {
		h.internalError(ctx, err, "Failed to list products")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"products": FilterProducts(products, productFilterFrom(ctx))})
}

func (h *Handler) ListFeaturedProducts(ctx *gin.Context) {
	limit := utils.GetLimit(ctx, "limit", store.DefaultFeaturedLimit)

	products, err := h.store.GetFeaturedProducts(ctx.Request.Context(), limit)

	if err != nil {
		h.internalError(ctx, err, "Failed to list featured products")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) ListCategories(ctx *gin.Context) {
	categories, err := h.store.GetProductCategories(ctx.Request.Context())

	if err != nil {
		h.internalError(ctx, err, "Failed to list categories")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetProduct hides inactive products from everyone but admins.
func (h *Handler) GetProduct(ctx *gin.Context) {
	id, err := utils.GetResourceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
		return
	}

	product, err := h.store.FindProductByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
			return
		}
		h.internalError(ctx, err, "Failed to load product")
		return
	}

	if !product.Active && !auth.Allow(utils.GetIdentity(ctx), auth.ResourceInactiveProduct, auth.ActionRead) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handler) CreateProduct(ctx *gin.Context) {
	var payload map[string]interface{}

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validate.ErrInvalidBody.Message})
		return
	}

	input, err := validate.ParseProductCreate(payload)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.store.CreateProduct(ctx.Request.Context(), *input)

	if err != nil {
		h.internalError(ctx, err, "Failed to create product")
		return
	}

	h.refresh("product", product.ID)

	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *Handler) UpdateProduct(ctx *gin.Context) {
	id, err := utils.GetResourceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
		return
	}

	var payload map[string]interface{}

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validate.ErrInvalidBody.Message})
		return
	}

	update, err := validate.ParseProductUpdate(payload)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.store.UpdateProduct(ctx.Request.Context(), id, *update)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
			return
		}
		h.internalError(ctx, err, "Failed to update product")
		return
	}

	h.refresh("product", product.ID)

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handler) DeleteProduct(ctx *gin.Context) {
	id, err := utils.GetResourceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
		return
	}

	deleted, err := h.store.DeleteProduct(ctx.Request.Context(), id)

	if err != nil {
		h.internalError(ctx, err, "Failed to delete product")
		return
	}

	if !deleted {
		ctx.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
		return
	}

	h.refresh("product", id)

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
