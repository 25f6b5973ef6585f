package routes

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	_ "github.com/shop-api/docs"
	"github.com/shop-api/internal/api/auth"
	"github.com/shop-api/internal/api/health"
	"github.com/shop-api/internal/api/product"
	"github.com/shop-api/internal/config"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Setup(cfg *config.Config, db *sql.DB, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300, // max time in seconds for OPTIONS preflight response cache
	})

	r.Use(corsMiddleware.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(2 * time.Minute))

	authHandler := auth.NewHandler(cfg.JWT.Secret, cfg.JWT.Issuer, db, log)
	productHandler := product.NewHandler(db, log)

	r.Get("/health", health.Handler)

	// public auth routes
	r.Post("/AuthManagement/Register", authHandler.Register)
	r.Post("/AuthManagement/Login", authHandler.Login)

	// bearer-protected product routes
	r.Group(func(r chi.Router) {
		r.Use(authHandler.Middleware)
		r.Get("/Product", productHandler.List)
		r.Get("/Product/{id}", productHandler.Get)
		r.Post("/Product/addproduct", productHandler.Create)
		r.Put("/Product", productHandler.Update)
		r.Delete("/Product/{id}", productHandler.Delete)
	})

	// init swagger
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.WrapHandler)

	return r
}
