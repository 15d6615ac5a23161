package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/db/bunx"
	"github.com/keyfort/keyfort/internal/repository"
	"github.com/keyfort/keyfort/internal/server"
	"github.com/keyfort/keyfort/internal/services/identity"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Keyfort API server",
	Long:  `Starts the HTTP server with authentication and user endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		// Initialize repositories and services
		userRepo := repository.NewBunUserRepository(db)
		hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params())
		codec := auth.NewTokenCodec(cfg.JWT)
		identitySvc := identity.NewService(userRepo, hasher, codec)

		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"status":"ok"}`)
		}

		// Assemble the shared router with the production wiring.
		r := server.NewRouter(server.RouterOptions{
			Identity:      identitySvc,
			Codec:         codec,
			HealthHandler: healthHandler,
		})

		// Wrap router with h2c for HTTP/2 cleartext support
		h2cHandler := h2c.NewHandler(r, &http2.Server{})

		// Create HTTP server
		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      h2cHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Wait for interrupt signal
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			// Graceful shutdown with timeout
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
