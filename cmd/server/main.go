// Package main initializes and starts the TodoKeeper HTTP server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/TodoKeeper/internal/config"
	"github.com/atinyakov/TodoKeeper/internal/db"
	"github.com/atinyakov/TodoKeeper/internal/logger"
	"github.com/atinyakov/TodoKeeper/internal/metrics"
	"github.com/atinyakov/TodoKeeper/internal/password"
	"github.com/atinyakov/TodoKeeper/internal/repository"
	"github.com/atinyakov/TodoKeeper/internal/server/handler/http"
	"github.com/atinyakov/TodoKeeper/internal/service"
	"github.com/atinyakov/TodoKeeper/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	initLog := log.Init
	if !options.IsProduction() {
		initLog = log.InitDevelopment
	}
	if err := initLog(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}
	if options.SecretGenerated() {
		zapLogger.Warn("JWT_SECRET not set, using a random development secret; tokens will not survive a restart")
	}

	// Initialize the database connection.
	conn, driver, err := db.Open(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer conn.Close()
	zapLogger.Info("database ready", zap.String("driver", driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Publish pool statistics.
	db.StartPoolStatsReporter(ctx, conn, 15*time.Second, m, zapLogger)

	tokens, err := token.NewManager([]byte(options.JWTSecret), options.TokenTTL)
	if err != nil {
		zapLogger.Fatal("cannot init token manager", zap.Error(err))
	}
	hasher := password.NewHasher(password.DefaultParams)

	// Initialize repositories.
	userRepo := repository.NewSQLUserRepository(conn)
	todoRepo := repository.NewSQLTodoRepository(conn)
	bookRepo := repository.NewSQLBookRepository(conn)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, hasher, tokens)
	todoService := service.NewTodoService(todoRepo)
	userService := service.NewUserService(userRepo, hasher)
	bookService := service.NewBookService(bookRepo)

	var routerMetrics *metrics.Metrics
	if options.MetricsEnabled {
		routerMetrics = m
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth:   &http.AuthHandler{AuthService: authService, TokenTTL: tokens.TTL(), Metrics: m, Logger: zapLogger},
		Todo:   &http.TodoHandler{TodoService: todoService, Logger: zapLogger},
		User:   &http.UserHandler{UserService: userService, Logger: zapLogger},
		Admin:  &http.AdminHandler{TodoService: todoService, Logger: zapLogger},
		Book:   &http.BookHandler{BookService: bookService, Logger: zapLogger},
		Health: &http.HealthHandler{DB: conn, Logger: zapLogger},
	}, tokens, userService, routerMetrics, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	go func() {
		var err error
		if options.TLSEnabled() {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
		} else {
			zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
