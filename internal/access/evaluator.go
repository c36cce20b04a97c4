package access

import (
	"log/slog"

	"github.com/apogeepress/apogee-server/internal/domain"
)

// Evaluator answers entitlement questions for a viewer.
// It is stateless and deterministic: no side effects beyond operator logging,
// safe to call once per rendered block without memoization.
//
// The evaluator never returns an error. Entitlement denial is a normal
// result, malformed viewers are treated as lowest privilege, and unknown
// features or tiers deny.
type Evaluator struct {
	features FeatureTable
	logger   *slog.Logger
}

// NewEvaluator creates an evaluator over the given feature table.
// A nil table uses the default table; a nil logger disables gap logging.
func NewEvaluator(features FeatureTable, logger *slog.Logger) *Evaluator {
	if features == nil {
		features = DefaultFeatureTable()
	}
	return &Evaluator{
		features: features,
		logger:   logger,
	}
}

// CanAccessTier reports whether the viewer's tier satisfies the requirement.
// Corrupt viewer tiers compare as free; an unrecognized requirement denies
// every viewer.
func (e *Evaluator) CanAccessTier(viewer domain.Viewer, required domain.MembershipTier) bool {
	if !required.IsValid() {
		if e.logger != nil {
			e.logger.Warn("access check against unknown tier, denying",
				"required_tier", string(required),
			)
		}
		return false
	}
	return domain.ParseTier(string(viewer.Tier)).Meets(required)
}

// CanAccessFeature reports whether the viewer may use the named feature.
// Features absent from the table deny for every viewer (default-deny); the
// gap is logged for operators but never surfaced to the viewer as a failure.
func (e *Evaluator) CanAccessFeature(viewer domain.Viewer, feature string) bool {
	required, ok := e.features[feature]
	if !ok {
		if e.logger != nil {
			e.logger.Warn("access check for unknown feature, denying",
				"feature", feature,
			)
		}
		return false
	}
	return e.CanAccessTier(viewer, required)
}

// RequiredTier returns the tier the named feature demands.
// The second return is false for features not in the table.
func (e *Evaluator) RequiredTier(feature string) (domain.MembershipTier, bool) {
	required, ok := e.features[feature]
	return required, ok
}

// Features returns the table the evaluator was built with.
func (e *Evaluator) Features() FeatureTable {
	return e.features
}
