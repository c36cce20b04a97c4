// Package di provides dependency injection configuration for the Apogee server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/auth"
	"github.com/apogeepress/apogee-server/internal/config"
	"github.com/apogeepress/apogee-server/internal/di/providers"
	"github.com/apogeepress/apogee-server/internal/logger"
	"github.com/apogeepress/apogee-server/internal/render"
	"github.com/apogeepress/apogee-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Content layer
	do.Provide(injector, providers.ProvideAccessEvaluator)
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideThemeCatalog)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideArticleService)
	do.Provide(injector, providers.ProvideThemeService)
	do.Provide(injector, providers.ProvideUserService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*access.Evaluator](injector)
	_ = do.MustInvoke[*render.Renderer](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ArticleService](injector)
	_ = do.MustInvoke[*service.ThemeService](injector)
	_ = do.MustInvoke[*service.UserService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
