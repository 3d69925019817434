package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/handlers"
	"github.com/monocle-dev/bertostore/internal/middleware"
	log "github.com/sirupsen/logrus"
)

func NewRouter(h *handlers.Handler, allowedOrigins []string, logger log.FieldLogger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.Session(h.Codec()))

	allow := middleware.Authorize

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws/dashboard", allow(auth.ResourceFeed, auth.ActionRead), h.Hub().ServeDashboard)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/logout", h.Logout)
			authGroup.GET("/me", h.Me)
		}

		api.GET("/categories", allow(auth.ResourceProduct, auth.ActionList), h.ListCategories)

		products := api.Group("/products")
		{
			products.GET("", allow(auth.ResourceProduct, auth.ActionList), h.ListProducts)
			products.GET("/featured", allow(auth.ResourceProduct, auth.ActionList), h.ListFeaturedProducts)
			products.GET("/:id", allow(auth.ResourceProduct, auth.ActionRead), h.GetProduct)
			products.POST("", allow(auth.ResourceProduct, auth.ActionCreate), h.CreateProduct)
			products.PATCH("/:id", allow(auth.ResourceProduct, auth.ActionUpdate), h.UpdateProduct)
			products.DELETE("/:id", allow(auth.ResourceProduct, auth.ActionDelete), h.DeleteProduct)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", allow(auth.ResourceOrder, auth.ActionList), h.ListOrders)
			orders.POST("", allow(auth.ResourceOrder, auth.ActionCreate), h.CreateOrder)
			orders.GET("/:id", allow(auth.ResourceOrder, auth.ActionRead), h.GetOrder)
			orders.PATCH("/:id", allow(auth.ResourceOrder, auth.ActionUpdate), h.UpdateOrderStatus)
		}

		api.GET("/dashboard/stats", allow(auth.ResourceStats, auth.ActionRead), h.GetDashboardStats)
	}

	return r
}
