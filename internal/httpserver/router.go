package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/notify"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	svcsession "storefront/internal/service/session"
)

// Deps groups the services the router exposes.
type Deps struct {
	Sessions    *svcsession.Manager
	Catalog     *catalog.Service
	Checkout    *checkout.Service
	Banners     *notify.Queue
	CORSOrigins []string
	Cookie      CookieConfig
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, store Pinger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if deps.Cookie.Name == "" {
		deps.Cookie.Name = "sf_session"
	}
	if deps.Cookie.MaxAge <= 0 {
		deps.Cookie.MaxAge = 30 * 24 * time.Hour
	}

	router := gin.New()
	router.Use(logger.GinMiddleware(log), logger.Recovery(log))

	if len(deps.CORSOrigins) > 0 {
		cfg := cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("cors config: %w", err)
		}
		router.Use(cors.New(cfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(store))

	h := &handlers{
		catalog:  deps.Catalog,
		checkout: deps.Checkout,
		banners:  deps.Banners,
	}

	api := router.Group("/api")

	products := api.Group("/products")
	products.GET("", h.frontPage)
	products.GET("/handles", h.productHandles)
	products.GET("/:handle", h.product)

	sessioned := api.Group("", sessionMiddleware(deps.Sessions, deps.Cookie))

	sessioned.GET("/cart", h.getCart)
	sessioned.POST("/cart/lines", h.addLine)
	sessioned.PATCH("/cart/lines/:lineID", h.updateLine)
	sessioned.DELETE("/cart/lines/:lineID", h.removeLine)

	sessioned.POST("/account", h.createAccount)
	sessioned.GET("/account", h.accountDetails)
	sessioned.POST("/account/recover", h.recoverAccount)
	sessioned.POST("/account/reset", h.resetPassword)

	sessioned.GET("/session", h.sessionStatus)
	sessioned.POST("/session/login", h.login)
	sessioned.POST("/session/logout", h.logout)

	sessioned.GET("/profile", h.getProfile)
	sessioned.PUT("/profile", h.updateProfile)
	sessioned.POST("/profile/refresh", h.refreshProfile)

	sessioned.GET("/checkout", h.lastCheckout)
	sessioned.POST("/checkout", h.createCheckout)

	sessioned.GET("/messages", h.messages)

	return router, nil
}

type handlers struct {
	catalog  *catalog.Service
	checkout *checkout.Service
	banners  *notify.Queue
}
