package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	accountapp "github.com/astro-web3/recipebox/internal/app/account"
	authzapp "github.com/astro-web3/recipebox/internal/app/authz"
	recipeapp "github.com/astro-web3/recipebox/internal/app/recipe"
	"github.com/astro-web3/recipebox/internal/config"
	accountdomain "github.com/astro-web3/recipebox/internal/domain/account"
	authzdomain "github.com/astro-web3/recipebox/internal/domain/authz"
	recipedomain "github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/astro-web3/recipebox/internal/domain/token"
	"github.com/astro-web3/recipebox/internal/identity"
	"github.com/astro-web3/recipebox/internal/infra/cache"
	"github.com/astro-web3/recipebox/internal/infra/mailer"
	"github.com/astro-web3/recipebox/internal/infra/storage"
	"github.com/astro-web3/recipebox/internal/infra/store"
	"github.com/astro-web3/recipebox/internal/seed"
	"github.com/astro-web3/recipebox/internal/transport/http/accounts"
	"github.com/astro-web3/recipebox/internal/transport/http/authorizer"
	"github.com/astro-web3/recipebox/internal/transport/http/gateway"
	"github.com/astro-web3/recipebox/internal/transport/http/recipes"
	"github.com/astro-web3/recipebox/internal/transport/lambda"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/otel"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	closers    []func() error
}

const (
	idleTimeoutMultiplier = 2
	serviceNamePrefix     = "recipebox-"
	corsMaxAgeSeconds     = 300
)

func invocationPath(function string) string {
	return "/2015-03-31/functions/" + function + "/invocations"
}

func initObservability(cfg *config.Config, serviceName string) error {
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.Format, cfg.Observability.LogSource)

	otelCfg := otel.DefaultConfig(serviceName)
	otelCfg.EndpointURL = cfg.Observability.TracingEndpointURL
	otelCfg.Enabled = cfg.Observability.TraceEnabled
	otelCfg.SampleRatio = cfg.Observability.SampleRatio

	if err := tracer.InitTracer(otelCfg); err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	return nil
}

func newServer(cfg *config.Config, role string, handler http.Handler, closers ...func() error) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(role),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.ReadTimeout * idleTimeoutMultiplier,
		},
		closers: closers,
	}
}

func NewAuthorizerServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	serviceName := serviceNamePrefix + config.RoleAuthorizer
	if err := initObservability(cfg, serviceName); err != nil {
		return nil, err
	}

	handler, closers, err := newAuthorizerHandler(ctx, cfg, serviceName)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, config.RoleAuthorizer, handler, closers...), nil
}

func NewGatewayServer(cfg *config.Config) (*Server, error) {
	serviceName := serviceNamePrefix + config.RoleGateway
	if err := initObservability(cfg, serviceName); err != nil {
		return nil, err
	}

	handler, err := newGatewayHandler(cfg, serviceName)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, config.RoleGateway, handler), nil
}

func NewAccountsServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	serviceName := serviceNamePrefix + config.RoleAccounts
	if err := initObservability(cfg, serviceName); err != nil {
		return nil, err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, config.RoleAccounts, newAccountsHandler(cfg, serviceName, db), db.Close), nil
}

func NewRecipesServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	serviceName := serviceNamePrefix + config.RoleRecipes
	if err := initObservability(cfg, serviceName); err != nil {
		return nil, err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, config.RoleRecipes, newRecipesHandler(cfg, serviceName, db), db.Close), nil
}

func newAuthorizerHandler(ctx context.Context, cfg *config.Config, serviceName string) (http.Handler, []func() error, error) {
	var validator token.Validator
	switch cfg.JWT.Mode {
	case config.JWTModeJWKS:
		v, err := token.NewJWKSValidator(ctx, cfg.JWT.JWKSURL, cfg.JWT.Issuer, cfg.JWT.Audience)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create jwks validator: %w", err)
		}
		validator = v
	default:
		validator = token.NewHS256Validator(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	}

	var (
		domainService authzdomain.Service
		closers       []func() error
	)
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		closers = append(closers, redisClient.Close)
		domainService = authzdomain.NewServiceWithCache(validator, cache.NewPrincipalCache(redisClient), cfg.Redis.CacheTTL)
	} else {
		domainService = authzdomain.NewService(validator)
	}

	handler := authorizer.NewHandler(authzapp.NewService(domainService))

	router := newEngine(cfg, serviceName)
	router.GET("/health", healthHandler(serviceName))
	handler.Register(router, cfg.Server.PlatformInvocations)

	return router, closers, nil
}

func newGatewayHandler(cfg *config.Config, serviceName string) (http.Handler, error) {
	g, err := gateway.New(
		cfg.Gateway.Routes,
		gateway.NewAuthorizerClient(cfg.Gateway.AuthorizerURL, cfg.Gateway.AuthorizerTimeout),
		identity.NewContextSigner(cfg.Gateway.ContextSigningKey, cfg.Gateway.ContextTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	router := newEngine(cfg, serviceName)
	g.Register(router)

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeSeconds,
	})(router), nil
}

func newAccountsHandler(cfg *config.Config, serviceName string, db *store.DB) http.Handler {
	issuer := token.NewIssuer(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiration)
	domainService := accountdomain.NewService(store.NewUserRepository(db), issuer, mailer.LogMailer{})
	resolver := identity.NewResolver(identity.NewContextSigner(cfg.Gateway.ContextSigningKey, cfg.Gateway.ContextTTL))
	handler := accounts.NewHandler(accountapp.NewService(domainService), resolver)

	router := newEngine(cfg, serviceName)
	router.GET("/health", healthHandler(serviceName))
	handler.Register(router)
	if cfg.Server.PlatformInvocations {
		router.POST(invocationPath("user"), lambda.Handler(router))
	}
	return router
}

func newRecipesHandler(cfg *config.Config, serviceName string, db *store.DB) http.Handler {
	domainService := recipedomain.NewService(store.NewRecipeRepository(db), newImageStorage(cfg))
	resolver := identity.NewResolver(identity.NewContextSigner(cfg.Gateway.ContextSigningKey, cfg.Gateway.ContextTTL))
	handler := recipes.NewHandler(
		recipeapp.NewCommandService(domainService),
		recipeapp.NewQueryService(domainService),
		resolver,
	)

	router := newEngine(cfg, serviceName)
	router.GET("/health", healthHandler(serviceName))
	handler.Register(router)
	if cfg.Server.PlatformInvocations {
		router.POST(invocationPath("recipes"), lambda.Handler(router))
	}
	return router
}

func openDatabase(ctx context.Context, cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if cfg.Database.SeedOnStart {
		if _, err := seed.Run(ctx, db, seed.Options{
			Email:    cfg.Seed.Email,
			Password: cfg.Seed.Password,
			Name:     cfg.Seed.Name,
		}); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	return db, nil
}

func newImageStorage(cfg *config.Config) recipedomain.ImageStorage {
	s3cfg := cfg.Storage.S3
	if s3cfg.Bucket == "" {
		logger.Default().Info("No storage bucket configured, recipe photos are logged only")
		return storage.LogStorage{}
	}

	logger.Default().Info("Using S3 image storage",
		slog.String("bucket", s3cfg.Bucket),
		slog.String("endpoint", s3cfg.Endpoint),
	)
	return storage.NewS3Storage(storage.S3Config{
		Endpoint:        s3cfg.Endpoint,
		Region:          s3cfg.Region,
		Bucket:          s3cfg.Bucket,
		AccessKeyID:     s3cfg.AccessKeyID,
		SecretAccessKey: s3cfg.SecretAccessKey,
		PublicBaseURL:   s3cfg.PublicBaseURL,
	})
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains HTTP connections, then releases database and cache handles.
func (s *Server) Shutdown(ctx context.Context) error {
	errs := []error{s.httpServer.Shutdown(ctx)}
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}
