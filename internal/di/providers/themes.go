package providers

import (
	"github.com/samber/do/v2"

	"github.com/apogeepress/apogee-server/internal/config"
	"github.com/apogeepress/apogee-server/internal/logger"
	"github.com/apogeepress/apogee-server/internal/theme"
)

// CatalogHandle wraps the theme catalog with shutdown capability for its
// file watcher.
type CatalogHandle struct {
	*theme.Catalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Close()
}

// ProvideThemeCatalog provides the theme catalog, optionally loaded from
// and watching a JSON catalog file.
func ProvideThemeCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	catalog := theme.NewCatalog(log.Logger)

	if cfg.Themes.CatalogPath != "" {
		if err := catalog.LoadFile(cfg.Themes.CatalogPath); err != nil {
			return nil, err
		}
		log.Info("Theme catalog loaded", "path", cfg.Themes.CatalogPath)

		if cfg.Themes.WatchCatalog {
			if err := catalog.Watch(cfg.Themes.CatalogPath); err != nil {
				return nil, err
			}
			log.Info("Theme catalog watcher started", "path", cfg.Themes.CatalogPath)
		}
	}

	return &CatalogHandle{Catalog: catalog}, nil
}
