package app

import (
	"go.uber.org/zap"

	"github.com/ibartley/employee-api/config"
	"github.com/ibartley/employee-api/entra"
	"github.com/ibartley/employee-api/gate"
	"github.com/ibartley/employee-api/middleware"
	"github.com/ibartley/employee-api/store"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection: the gate and store own their
// shared state explicitly instead of living in package-level singletons.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Auth
	Validator      *entra.Validator
	Gate           *gate.Gate
	AuthMiddleware *middleware.AuthMiddleware

	// Storage
	Employees *store.EmployeeStore
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	validator := entra.NewValidator(entra.Config{
		IssuerURL: cfg.Entra.IssuerURL(),
		JWKSURL:   cfg.Entra.JWKSURL(),
		Audience:  cfg.Entra.AppID,
		KeyProvider: entra.KeyProviderConfig{
			CacheTTL:         cfg.Entra.JWKSCacheTTL,
			HTTPTimeout:      cfg.Entra.JWKSHTTPTimeout,
			FetchesPerMinute: cfg.Entra.JWKSFetchesPerMin,
		},
	})

	g := gate.New(validator, cfg.Entra.EmailClaim, logger)

	deps := &Dependencies{
		Config:         cfg,
		Logger:         logger,
		Validator:      validator,
		Gate:           g,
		AuthMiddleware: middleware.NewAuthMiddleware(g, logger),
		Employees:      store.NewEmployeeStore(),
	}

	logger.Info("all dependencies initialized",
		zap.String("issuer", cfg.Entra.IssuerURL()),
		zap.String("audience", cfg.Entra.AppID))

	return deps, nil
}
