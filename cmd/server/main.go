package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/teedon/cooperative-manager-sub000/internal/auth"
	"github.com/teedon/cooperative-manager-sub000/internal/config"
	"github.com/teedon/cooperative-manager-sub000/internal/esusu"
	"github.com/teedon/cooperative-manager-sub000/internal/handlers"
	"github.com/teedon/cooperative-manager-sub000/internal/notification"
	"github.com/teedon/cooperative-manager-sub000/internal/settings"
	"github.com/teedon/cooperative-manager-sub000/internal/storage/sqlite"
	"github.com/teedon/cooperative-manager-sub000/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.IsProduction())

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var notifier esusu.Notifier
	if cfg.HasSMTP() {
		notifier = notification.NewEmailNotifier(notification.EmailConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			User:       cfg.SMTPUser,
			Password:   cfg.SMTPPassword,
			From:       cfg.SMTPFrom,
			FromName:   "Savings Circles",
			AdminEmail: cfg.AdminEmail,
		})
		slog.Info("Email notifications enabled", "host", cfg.SMTPHost)
	} else {
		notifier = notification.LogNotifier{}
	}

	engine := esusu.New(store, settings.NewDBProvider(store), notifier)

	router := handlers.NewRouter(handlers.RouterConfig{
		Engine:         engine,
		Authenticator:  auth.NewPasswordAuthenticator(store),
		JWTManager:     auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr: addr,
		// h2c lets gRPC-style and HTTP/2 clients connect without TLS;
		// TLS termination happens at the reverse proxy.
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "address", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	slog.Info("Server stopped")
}
