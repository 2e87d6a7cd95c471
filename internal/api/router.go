// Package api exposes the ledger over HTTP.
package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/ledger"
	"github.com/erazemk/eventstock/internal/model"
	"github.com/erazemk/eventstock/internal/snapshot"
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	DB                *sql.DB
	Ledger            *ledger.Ledger
	Snapshots         snapshot.Store
	JWTSecret         string
	LowStockThreshold int
	Logger            *zap.Logger
}

// NewRouter creates the engine with every endpoint registered.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.LowStockThreshold <= 0 {
		deps.LowStockThreshold = ledger.DefaultLowStockThreshold
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware(logger.Named("http")))

	authHandler := &AuthHandler{DB: deps.DB, JWTSecret: deps.JWTSecret, Logger: logger}
	usersHandler := &UsersHandler{DB: deps.DB, Logger: logger}
	itemsHandler := &ItemsHandler{DB: deps.DB, Ledger: deps.Ledger, LowStockThreshold: deps.LowStockThreshold, Logger: logger}
	eventsHandler := &EventsHandler{Ledger: deps.Ledger, Logger: logger}
	snapshotHandler := &SnapshotHandler{Ledger: deps.Ledger, Store: deps.Snapshots, Logger: logger}

	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	r.GET("/healthz", func(c *gin.Context) {
		items, events := deps.Ledger.Stats()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "items": items, "events": events})
	})

	r.POST("/api/auth/login", authHandler.Login)

	api := r.Group("/api", AuthMiddleware(deps.JWTSecret, deps.DB, logger))

	api.PUT("/auth/password", authHandler.ChangePassword)
	api.POST("/auth/logout", authHandler.Logout)

	// Users (admin only).
	api.GET("/users", requireAdmin, usersHandler.List)
	api.POST("/users", requireAdmin, usersHandler.Create)
	api.DELETE("/users/:id", requireAdmin, usersHandler.Delete)

	// Items: read (all roles), write (manager+).
	api.GET("/items", itemsHandler.List)
	api.POST("/items", requireManager, itemsHandler.Create)
	api.GET("/items/:id", itemsHandler.Get)
	api.DELETE("/items/:id", requireManager, itemsHandler.Delete)
	api.POST("/items/:id/adjust", requireManager, itemsHandler.Adjust)
	api.PUT("/items/:id/image", requireManager, itemsHandler.UploadImage)
	api.GET("/items/:id/image", itemsHandler.GetImage)
	api.GET("/low-stock", itemsHandler.LowStock)

	// Events: read (all roles), write (manager+).
	api.GET("/events", eventsHandler.List)
	api.POST("/events", requireManager, eventsHandler.Create)
	api.GET("/events/:id", eventsHandler.Get)
	api.DELETE("/events/:id", requireManager, eventsHandler.Delete)
	api.GET("/events/:id/summary", eventsHandler.Summary)
	api.POST("/events/:id/allocate", requireManager, eventsHandler.Allocate)
	api.POST("/events/:id/deallocate", requireManager, eventsHandler.Deallocate)

	api.POST("/snapshot", requireManager, snapshotHandler.Save)

	return r
}
