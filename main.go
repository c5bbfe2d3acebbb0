package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"school-cafe-api/auth"
	"school-cafe-api/config"
	"school-cafe-api/events"
	"school-cafe-api/handlers"
	"school-cafe-api/ledger"
	"school-cafe-api/logger"
	"school-cafe-api/middleware"
	"school-cafe-api/routes"
	"school-cafe-api/service"
	"school-cafe-api/store"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	port := flag.String("port", "", "port to listen on (overrides config and PORT)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		if err := config.ValidatePort(*port); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Server.Port = *port
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Database.Seed {
		if err := service.Seed(ctx, st, log); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Events.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, log)
		if err != nil {
			return err
		}
		publisher = p
	} else {
		log.Info("No AMQP_URL configured, events are not published")
	}
	defer publisher.Close()

	creds := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := service.New(service.Deps{
		Store:       st,
		Ledger:      ledger.New(log),
		Credentials: creds,
		Events:      publisher,
		Log:         log,
	})

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(logger.WithComponent(log, "access")), gin.Recovery(), middleware.CORS())

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the School Cafe API",
			"docs":    "/api/state-machine",
			"health":  "/api/health",
			"roles":   []string{"student", "cook", "admin"},
		})
	})

	routes.SetupRoutes(r, handlers.New(svc, log), creds)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server running", "addr", "http://localhost:"+cfg.Server.Port, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received, draining requests", "timeout", cfg.Server.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
