package providers

import (
	"github.com/samber/do/v2"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/logger"
	"github.com/apogeepress/apogee-server/internal/render"
)

// ProvideAccessEvaluator provides the entitlement evaluator over the
// default feature table.
func ProvideAccessEvaluator(i do.Injector) (*access.Evaluator, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return access.NewEvaluator(nil, log.Logger), nil
}

// ProvideRenderer provides the content block renderer.
func ProvideRenderer(i do.Injector) (*render.Renderer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	evaluator := do.MustInvoke[*access.Evaluator](i)
	return render.NewRenderer(evaluator, log.Logger), nil
}
