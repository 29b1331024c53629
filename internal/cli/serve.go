package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/astro-web3/recipebox/internal/config"
	httptransport "github.com/astro-web3/recipebox/internal/transport/http"
	"github.com/astro-web3/recipebox/pkg/otel"
	"github.com/spf13/cobra"
)

const shutdownTimeoutSeconds = 10

type role struct {
	name  string
	short string
	build func(ctx context.Context, cfg *config.Config) (*httptransport.Server, error)
}

var (
	roleGateway = role{
		name:  config.RoleGateway,
		short: "Run the API gateway",
		build: func(_ context.Context, cfg *config.Config) (*httptransport.Server, error) {
			return httptransport.NewGatewayServer(cfg)
		},
	}
	roleAuthorizer = role{
		name:  config.RoleAuthorizer,
		short: "Run the token authorizer",
		build: httptransport.NewAuthorizerServer,
	}
	roleAccounts = role{
		name:  config.RoleAccounts,
		short: "Run the accounts service",
		build: httptransport.NewAccountsServer,
	}
	roleRecipes = role{
		name:  config.RoleRecipes,
		short: "Run the recipes service",
		build: httptransport.NewRecipesServer,
	}
)

func newServeCmd(opts *rootOptions, r role) *cobra.Command {
	return &cobra.Command{
		Use:   r.name,
		Short: r.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad(r.name, opts.configPaths...)

			srv, err := r.build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return serve(r.name, cfg, srv)
		},
	}
}

func serve(name string, cfg *config.Config, srv *httptransport.Server) error {
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting %s on %s (mode: %s)", name, srv.Addr(), cfg.Server.Mode)
		if listenErr := srv.ListenAndServe(); listenErr != nil &&
			!errors.Is(listenErr, http.ErrServerClosed) {
			log.Printf("Server failed: %v", listenErr)
			serverErrChan <- listenErr
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
		log.Println("Shutting down server...")
	case serveErr = <-serverErrChan:
		log.Printf("Server error, shutting down: %v", serveErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		shutdownTimeoutSeconds*time.Second,
	)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("Server forced to shutdown: %v", shutdownErr)
	} else {
		log.Println("Server stopped gracefully")
	}

	if shutdownErr := otel.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("Failed to shutdown tracer provider: %v", shutdownErr)
	} else {
		log.Println("Tracer provider stopped gracefully")
	}

	return serveErr
}
