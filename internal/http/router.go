package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/user"
)

type Deps struct {
	Logger *slog.Logger
	Cfg    config.Config
	Tokens middleware.TokenParser

	Auth     AuthService
	Catalog  CatalogService
	Cart     CartService
	Wishlist WishlistService
	Orders   OrderService
	Reviews  ReviewService
	Users    UserService
	Admin    AdminService
	Uploads  UploadService

	// Served under /uploads/ when set.
	UploadDir string
}

type Handler struct {
	auth     AuthService
	catalog  CatalogService
	cart     CartService
	wishlist WishlistService
	orders   OrderService
	reviews  ReviewService
	users    UserService
	admin    AdminService
	uploads  UploadService

	logger            *slog.Logger
	exposeResetTokens bool
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		auth:              d.Auth,
		catalog:           d.Catalog,
		cart:              d.Cart,
		wishlist:          d.Wishlist,
		orders:            d.Orders,
		reviews:           d.Reviews,
		users:             d.Users,
		admin:             d.Admin,
		uploads:           d.Uploads,
		logger:            d.Logger,
		exposeResetTokens: d.Cfg.ExposeResetTokens,
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)
	authn := middleware.Authenticate(d.Tokens)
	adminOnly := middleware.RequireRole(user.RoleAdmin)

	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	if d.Cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(d.Cfg.RequestTimeout))
	}

	r.Get("/health", healthHandler)

	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Post("/change-password", h.ChangePassword)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/categories", h.Categories)
		r.Get("/{id}", h.GetProduct)
		r.Get("/{id}/reviews", h.ProductReviews)

		r.With(authn).Post("/{id}/reviews", h.CreateReview)

		r.Group(func(r chi.Router) {
			r.Use(authn, adminOnly)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authn)
		r.Get("/", h.GetCart)
		r.Post("/", h.AddToCart)
		r.Delete("/", h.ClearCart)
		r.Put("/{itemId}", h.UpdateCartItem)
		r.Delete("/{itemId}", h.RemoveCartItem)
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authn)
		r.Get("/", h.GetWishlist)
		r.Post("/", h.AddToWishlist)
		r.Delete("/", h.ClearWishlist)
		r.Delete("/{productId}", h.RemoveFromWishlist)
		r.Post("/{productId}/cart", h.MoveWishlistItemToCart)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authn)
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListMyOrders)
		r.Get("/{id}", h.GetOrder)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/admin/all", h.ListAllOrders)
			r.Get("/admin/{id}", h.AdminGetOrder)
			r.Put("/{id}/status", h.UpdateOrderStatus)
		})
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(authn)
		r.Put("/{id}", h.UpdateReview)
		r.Delete("/{id}", h.DeleteReview)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authn)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/profile/stats", h.ProfileStats)
		r.Get("/profile/avatar", h.GetAvatar)
		r.Post("/profile/avatar", h.SetAvatar)
	})

	r.Route("/api/upload", func(r chi.Router) {
		r.Use(authn)
		r.With(adminOnly).Post("/product-image", h.UploadProductImage)
		r.Post("/avatar", h.UploadAvatar)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authn, adminOnly)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/dashboard/revenue", h.RevenueStats)
		r.Get("/dashboard/orders", h.OrderStats)
		r.Get("/dashboard/products", h.ProductStats)
		r.Get("/dashboard/recent-orders", h.RecentOrders)

		r.Get("/customers", h.Customers)
		r.Get("/customers/{id}", h.Customer)
		r.Get("/customers/{id}/orders", h.CustomerOrders)
		r.Get("/customers/{id}/stats", h.CustomerStats)

		r.Get("/reviews", h.AdminListReviews)
		r.Get("/reviews/stats", h.ReviewStats)
		r.Delete("/reviews/{id}", h.AdminDeleteReview)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}
