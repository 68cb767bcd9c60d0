// Package api exposes the storefront over HTTP with gin.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shubz284/biryani-house/internal/catalog"
	"github.com/Shubz284/biryani-house/internal/metrics"
	"github.com/Shubz284/biryani-house/internal/orders"
	"github.com/Shubz284/biryani-house/internal/patterns"
)

// ServiceName labels this process in metrics.
const ServiceName = "storefront"

// Options shape the router.
type Options struct {
	// BasePath prefixes every API route, e.g. "/api".
	BasePath    string
	CORSOrigins []string
	// Breaker, when set, is reported by the circuit-status endpoint.
	Breaker *patterns.CircuitBreakerWrapper
}

// Server holds the services the handlers call.
type Server struct {
	catalog *catalog.Service
	orders  *orders.Manager
	query   *orders.Query
	breaker *patterns.CircuitBreakerWrapper
	now     func() time.Time
}

// NewServer wires the handlers to their services.
func NewServer(menu *catalog.Service, manager *orders.Manager, query *orders.Query) *Server {
	return &Server{catalog: menu, orders: manager, query: query, now: time.Now}
}

// Router builds the gin engine.
func (s *Server) Router(opts Options) *gin.Engine {
	s.breaker = opts.Breaker

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(metrics.PrometheusMiddleware(ServiceName))
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(strings.TrimSuffix(opts.BasePath, "/"))
	api.GET("/health", s.health)
	api.GET("/circuit-status", s.circuitStatus)

	menu := api.Group("/menu-items")
	menu.GET("", s.listMenuItems)
	menu.GET("/:id", s.getMenuItem)
	menu.POST("", s.createMenuItem)
	menu.PUT("/:id", s.updateMenuItem)
	menu.DELETE("/:id", s.deleteMenuItem)

	ord := api.Group("/orders")
	ord.GET("", s.listOrders)
	ord.GET("/:id", s.getOrder)
	ord.POST("", s.createOrder)
	ord.PATCH("/:id/status", s.setOrderStatus)
	ord.DELETE("/:id", s.deleteOrder)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Route not found"})
	})

	return router
}

// health reports liveness only. It does not touch the store.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Biryani House API is running",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}

// circuitStatus returns the state of the document store circuit breaker
func (s *Server) circuitStatus(c *gin.Context) {
	if s.breaker == nil {
		c.JSON(http.StatusOK, gin.H{"store_circuit": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"store_circuit": gin.H{
			"name":  s.breaker.Name(),
			"state": s.breaker.GetState(),
			"value": s.breaker.GetStateValue(),
		},
	})
}
