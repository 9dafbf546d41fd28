package api

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"bakery-api/internal/auth"
	"bakery-api/internal/models"
	"bakery-api/internal/service"
	"bakery-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// AccountService is the account use-case surface used by the handlers
type AccountService interface {
	Register(ctx context.Context, req *service.RegisterRequest) (*models.Account, error)
	Login(ctx context.Context, req *service.LoginRequest) (*service.LoginResponse, error)
	RequestSellerRole(ctx context.Context, in *service.SellerRequestInput) (*service.SellerRequestResponse, error)
	CreateSellerAccount(ctx context.Context, req *service.CreateSellerRequest) (*models.Account, error)
	UploadAvatar(ctx context.Context, accountID int64, file *multipart.FileHeader) (string, error)
}

// ProductService is the catalog use-case surface used by the handlers
type ProductService interface {
	CreateProduct(ctx context.Context, in service.ProductInput, image *multipart.FileHeader) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch, image *multipart.FileHeader) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// CartService is the cart use-case surface used by the handlers
type CartService interface {
	AddItem(ctx context.Context, accountID int64, req *service.CartItemRequest) (*models.CartItem, error)
	SetItemQuantity(ctx context.Context, accountID int64, req *service.CartItemRequest) (bool, error)
	RemoveItem(ctx context.Context, accountID, productID int64) error
	ClearCart(ctx context.Context, accountID int64) error
	ViewCart(ctx context.Context, accountID int64) (*service.CartView, error)
}

// OrderService is the order use-case surface used by the handlers
type OrderService interface {
	FinalizeOrder(ctx context.Context, accountID int64) (*models.Order, error)
	ListCustomerOrders(ctx context.Context, accountID int64) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error)
	CancelOrder(ctx context.Context, accountID, orderID int64) (*models.Order, error)
}

// TokenParser validates bearer tokens
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterOptions configures the outer surface of the router
type RouterOptions struct {
	ServiceName string
	CORSOrigin  string
	UploadsDir  string
	UploadsPath string
}

// Handler contains HTTP handlers
type Handler struct {
	accounts AccountService
	products ProductService
	carts    CartService
	orders   OrderService
	tokens   TokenParser
	checks   map[string]Pinger
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	accounts AccountService,
	products ProductService,
	carts CartService,
	orders OrderService,
	tokens TokenParser,
) *Handler {
	return &Handler{
		accounts: accounts,
		products: products,
		carts:    carts,
		orders:   orders,
		tokens:   tokens,
		checks:   make(map[string]Pinger),
		logger:   util.Component("api"),
	}
}

// AddReadinessCheck registers a dependency checked by /ready
func (h *Handler) AddReadinessCheck(name string, p Pinger) {
	h.checks[name] = p
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine, opts RouterOptions) {
	router.Use(gin.Recovery())
	if opts.ServiceName != "" {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware(opts.CORSOrigin))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.UploadsDir != "" && opts.UploadsPath != "" {
		router.Static(opts.UploadsPath, opts.UploadsDir)
	}

	authed := AuthMiddleware(h.tokens)
	sellerOnly := RequireRole(models.RoleSeller)

	api := router.Group("/api")
	{
		users := api.Group("/usuarios")
		users.POST("", h.register)
		users.POST("/login", h.login)
		users.POST("/vendedor", h.createSellerAccount)
		users.POST("/solicitacao-vendedor", h.requestSellerRole)
		users.POST("/avatar", authed, h.uploadAvatar)

		products := api.Group("/produtos")
		products.POST("", h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)

		cart := api.Group("/carrinho", authed)
		cart.GET("", h.viewCart)
		cart.DELETE("", h.clearCart)
		cart.POST("/adicionar", h.addCartItem)
		cart.PUT("/item", h.setCartItemQuantity)
		cart.DELETE("/item/:productId", h.removeCartItem)

		orders := api.Group("/pedidos", authed)
		orders.POST("/finalizar", h.finalizeOrder)
		orders.GET("/meus", h.listMyOrders)
		orders.GET("/vendedor", sellerOnly, h.listAllOrders)
		orders.PUT("/:id/status", sellerOnly, h.updateOrderStatus)
		orders.POST("/:id/cancelar", h.cancelOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failures := gin.H{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"failures": failures,
			"time":     time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}
