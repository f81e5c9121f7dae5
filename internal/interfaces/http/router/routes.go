package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers mounted by the storefront routes
type Handlers struct {
	Auth        *handler.AuthHandler
	Product     *handler.ProductHandler
	Search      *handler.SearchHandler
	Cart        *handler.CartHandler
	Order       *handler.OrderHandler
	Invoice     *handler.InvoiceHandler
	Fulfillment *handler.FulfillmentHandler
	Return      *handler.ReturnHandler
	Wishlist    *handler.WishlistHandler
	Newsletter  *handler.NewsletterHandler
	Webhook     *handler.StripeWebhookHandler
	System      *handler.SystemHandler
}

// Guards holds the authentication middleware shared by the route groups.
// AuthRateLimit may be nil.
type Guards struct {
	Authenticate  gin.HandlerFunc
	OptionalAuth  gin.HandlerFunc
	AuthRateLimit gin.HandlerFunc
}

// StoreRoutes builds the customer-facing API under /store
func StoreRoutes(h Handlers, g Guards) *DomainGroup {
	store := NewDomainGroup("store", "/store")

	store.POST("/auth/token", g.AuthRateLimit, h.Auth.Login)
	store.POST("/customers", g.AuthRateLimit, h.Auth.Register)

	store.GET("/products", h.Product.StoreList)
	store.GET("/products/search", h.Search.Search)
	store.GET("/products/:handle", h.Product.StoreGet)

	store.POST("/newsletter", h.Newsletter.Subscribe)
	store.DELETE("/newsletter/:email", h.Newsletter.Unsubscribe)

	// Carts work for guests; a customer token only attaches the customer.
	carts := store.Group("carts", "/carts").Use(g.OptionalAuth)
	carts.POST("", h.Cart.Create)
	carts.GET("/:id", h.Cart.Get)
	carts.POST("/:id", h.Cart.Update)
	carts.POST("/:id/line-items", h.Cart.AddLineItem)
	carts.POST("/:id/line-items/:line_id", h.Cart.UpdateLineItem)
	carts.DELETE("/:id/line-items/:line_id", h.Cart.RemoveLineItem)
	carts.POST("/:id/shipping-methods", h.Cart.AddShippingMethod)
	carts.POST("/:id/payment-session", h.Cart.InitiatePaymentSession)
	carts.POST("/:id/complete", h.Cart.Complete)
	store.GET("/shipping-options", h.Cart.ListShippingOptions)

	me := store.Group("me", "/customers/me").Use(g.Authenticate, middleware.RequireCustomer())
	me.GET("", h.Auth.GetMe)
	me.POST("", h.Auth.UpdateMe)
	me.GET("/orders", h.Order.ListMine)
	me.GET("/wishlist", h.Wishlist.Get)
	me.POST("/wishlist/items", h.Wishlist.AddItem)
	me.DELETE("/wishlist/items/:item_id", h.Wishlist.RemoveItem)
	me.POST("/wishlist/merge", h.Wishlist.Merge)

	orders := store.Group("orders", "/orders").Use(g.Authenticate, middleware.RequireCustomer())
	orders.GET("/:id", h.Order.StoreGet)
	orders.GET("/:id/invoice", h.Invoice.StoreInvoice)

	returns := store.Group("returns", "/returns").Use(g.Authenticate, middleware.RequireCustomer())
	returns.POST("", h.Return.StoreRequest)

	return store
}

// AdminAuthRoutes builds the public admin sign-in route
func AdminAuthRoutes(h Handlers, g Guards) *DomainGroup {
	adminAuth := NewDomainGroup("admin-auth", "/admin/auth")
	adminAuth.POST("/token", g.AuthRateLimit, h.Auth.AdminLogin)
	return adminAuth
}

// AdminRoutes builds the back-office API under /admin. Every route requires an admin token.
func AdminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(g.Authenticate, middleware.RequireAdmin())

	admin.GET("/products", h.Product.AdminList)
	admin.POST("/products", h.Product.Create)
	admin.GET("/products/:id", h.Product.AdminGet)
	admin.PUT("/products/:id", h.Product.Update)
	admin.POST("/products/:id/publish", h.Product.Publish)
	admin.DELETE("/products/:id", h.Product.Delete)
	admin.POST("/search/reindex", h.Search.Reindex)

	admin.GET("/orders", h.Order.AdminList)
	admin.GET("/orders/:id", h.Order.AdminGet)
	admin.POST("/orders/:id/cancel", h.Order.Cancel)
	admin.POST("/orders/:id/complete", h.Order.Complete)
	admin.GET("/orders/:id/invoice", h.Invoice.AdminInvoice)
	admin.POST("/orders/:id/fulfillments", h.Fulfillment.Create)

	admin.POST("/fulfillments/:id/cancel", h.Fulfillment.Cancel)
	admin.POST("/fulfillments/:id/shipments", h.Fulfillment.CreateShipment)
	admin.GET("/fulfillments/:id/label", h.Fulfillment.Label)
	admin.GET("/fulfillments/:id/label-url", h.Fulfillment.LabelURL)

	admin.GET("/returns", h.Return.List)
	admin.POST("/returns", h.Return.AdminCreate)
	admin.GET("/returns/:id", h.Return.Get)
	admin.POST("/returns/:id/receive", h.Return.Receive)
	admin.POST("/returns/:id/cancel", h.Return.Cancel)
	admin.GET("/returns/:id/label", h.Fulfillment.ReturnLabel)

	admin.GET("/invoice-config", h.Invoice.GetConfig)
	admin.POST("/invoice-config", h.Invoice.UpdateConfig)

	admin.GET("/system/info", h.System.GetSystemInfo)

	return admin
}

// RegisterOperational mounts health probes and provider webhooks outside the
// versioned API
func RegisterOperational(engine *gin.Engine, h Handlers, webhookMaxBodySize int64) {
	engine.GET("/health", h.System.Health)
	engine.GET("/health/ready", h.System.Ready)

	hooks := engine.Group("/hooks")
	hooks.POST("/stripe", middleware.BodyLimit(webhookMaxBodySize), h.Webhook.HandleStripeWebhook)
}

// Mount registers every storefront route group on the engine
func Mount(engine *gin.Engine, h Handlers, g Guards, webhookMaxBodySize int64) {
	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(StoreRoutes(h, g)).
		Register(AdminAuthRoutes(h, g)).
		Register(AdminRoutes(h, g))
	r.Setup()

	RegisterOperational(engine, h, webhookMaxBodySize)
}
