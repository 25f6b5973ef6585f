package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shop-api/internal/api/routes"
	"github.com/shop-api/internal/config"
	"github.com/shop-api/internal/db"
)

// @title Shop API
// @version 1.0
// @description A product catalog API with token-based authentication

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token with the `Bearer ` prefix, e.g. "Bearer eyJhbGci..."
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	database, err := db.Connect(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Unable to connect to database")
	}
	defer database.Close()

	if err := db.RunMigrations(db.DSN(cfg.Database)); err != nil {
		log.WithError(err).Fatal("Unable to run migrations")
	}

	router := routes.Setup(cfg, database, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starts server in a goroutine
	go func() {
		log.Infof("Server running on port %d", cfg.Server.Port)
		err := server.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Error starting the server")
		}
	}()

	// channel to capture quit signals (e.g. CTRL+C)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down the server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Error on server shutdown")
	}

	log.Info("Server shut down successfully")
}
