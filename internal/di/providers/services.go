package providers

import (
	"github.com/samber/do/v2"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/auth"
	"github.com/apogeepress/apogee-server/internal/logger"
	"github.com/apogeepress/apogee-server/internal/render"
	"github.com/apogeepress/apogee-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideArticleService provides the article publishing service.
func ProvideArticleService(i do.Injector) (*service.ArticleService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	renderer := do.MustInvoke[*render.Renderer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewArticleService(storeHandle.Store, renderer, log.Logger), nil
}

// ProvideThemeService provides the theme catalog and preference service.
func ProvideThemeService(i do.Injector) (*service.ThemeService, error) {
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	evaluator := do.MustInvoke[*access.Evaluator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewThemeService(catalogHandle.Catalog, storeHandle.Store, evaluator, log.Logger), nil
}

// ProvideUserService provides the account management service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}
