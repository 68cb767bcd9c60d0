package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Shubz284/biryani-house/internal/api"
	"github.com/Shubz284/biryani-house/internal/catalog"
	"github.com/Shubz284/biryani-house/internal/orders"
	"github.com/Shubz284/biryani-house/internal/seed"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Seed bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront API",
		Long: `Run the storefront HTTP API until interrupted.

Example:
  storefront serve
  STORE_DRIVER=mongo MONGODB_URI=mongodb://localhost:27017 storefront serve
  storefront serve --seed   # in-memory store preloaded with the starter menu`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "load the starter menu before serving")

	return cmd
}

func runServer(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := opts.Config

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := openStore(ctx, cfg.Store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if err := docs.Close(context.Background()); err != nil {
			log.WithError(err).Error("Error closing store")
		}
	}()

	publisher, err := openPublisher(cfg.Events)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to broker", err)
	}
	defer publisher.Close()

	if opts.Seed {
		if _, err := seed.Run(ctx, docs, seed.Options{Reset: true}); err != nil {
			return WrapExitError(ExitCommandError, "failed to seed menu", err)
		}
	}

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(
		catalog.NewService(docs),
		orders.NewManager(docs, orders.Validator{VerifyTotal: cfg.Orders.VerifyTotal}, publisher),
		orders.NewQuery(docs, docs),
	)
	router := server.Router(api.Options{
		BasePath:    cfg.HTTP.BasePath,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Breaker:     docs.Breaker(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":      cfg.HTTP.Addr,
			"base_path": cfg.HTTP.BasePath,
			"store":     cfg.Store.Driver,
		}).Info("Storefront starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "graceful shutdown failed", err)
	}
	log.Info("Storefront stopped")
	return nil
}
