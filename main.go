package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shreyatrivedi/portfolio/internal/config"
	"github.com/shreyatrivedi/portfolio/internal/contact"
	"github.com/shreyatrivedi/portfolio/internal/content"
	"github.com/shreyatrivedi/portfolio/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Personal portfolio site with an HTMX contact form",
	// Running without a subcommand serves the site.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, newSendCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, logger, nil
}

func newRelay(cfg *config.Config) contact.Relay {
	if cfg.Contact.Relay == "smtp" {
		to := cfg.SMTP.ToEmail
		if to == "" {
			to = cfg.SMTP.User
		}
		return &contact.SMTPRelay{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			To:   to,
		}
	}
	return contact.NewHTTPRelay(cfg.Contact.FormEndpoint)
}

func openContent(ctx context.Context, path string) (*content.Store, error) {
	store, err := content.Open(path)
	if err != nil {
		return nil, err
	}
	doc, err := content.DefaultDocument()
	if err != nil {
		store.Close()
		return nil, err
	}
	if _, err := store.Seed(ctx, doc); err != nil {
		store.Close()
		return nil, fmt.Errorf("seeding content: %w", err)
	}
	return store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openContent(ctx, cfg.ContentDB)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := newServer(cfg, logger, store, newRelay(cfg))
	if err != nil {
		logger.Error("Error building server", zap.Error(err))
		return err
	}
	go srv.drafts.Run(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting portfolio", zap.String("port", cfg.Port), zap.String("relay", cfg.Contact.Relay))
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
