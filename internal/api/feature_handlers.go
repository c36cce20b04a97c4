package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerFeatureRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFeatures",
		Method:      http.MethodGet,
		Path:        "/api/v1/features",
		Summary:     "List gated features",
		Description: "Returns every known feature with its required tier and whether the caller's tier unlocks it.",
		Tags:        []string{"Access"},
	}, s.handleListFeatures)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkFeature",
		Method:      http.MethodGet,
		Path:        "/api/v1/features/{name}",
		Summary:     "Check feature access",
		Description: "Reports whether the caller can use the named feature. Unknown features are denied, not 404.",
		Tags:        []string{"Access"},
	}, s.handleCheckFeature)
}

// === DTOs ===

// FeatureAccess describes the caller's standing on one feature.
type FeatureAccess struct {
	Name         string `json:"name" doc:"Feature name"`
	RequiredTier string `json:"required_tier,omitempty" doc:"Tier needed; empty for unknown features"`
	Allowed      bool   `json:"allowed" doc:"Whether the caller's tier unlocks the feature"`
}

// FeatureListOutput wraps the feature table for Huma.
type FeatureListOutput struct {
	Body struct {
		Features []FeatureAccess `json:"features" doc:"Gated features in name order"`
	}
}

// CheckFeatureInput identifies one feature.
type CheckFeatureInput struct {
	Name string `path:"name" doc:"Feature name"`
}

// FeatureAccessOutput wraps one feature check for Huma.
type FeatureAccessOutput struct {
	Body FeatureAccess
}

// === Handlers ===

func (s *Server) handleListFeatures(ctx context.Context, _ *struct{}) (*FeatureListOutput, error) {
	viewer := GetViewer(ctx)
	table := s.evaluator.Features()

	out := &FeatureListOutput{}
	out.Body.Features = make([]FeatureAccess, 0, len(table))
	for _, name := range table.Names() {
		out.Body.Features = append(out.Body.Features, FeatureAccess{
			Name:         name,
			RequiredTier: string(table[name]),
			Allowed:      s.evaluator.CanAccessFeature(viewer, name),
		})
	}

	return out, nil
}

func (s *Server) handleCheckFeature(ctx context.Context, input *CheckFeatureInput) (*FeatureAccessOutput, error) {
	viewer := GetViewer(ctx)

	resp := FeatureAccess{
		Name:    input.Name,
		Allowed: s.evaluator.CanAccessFeature(viewer, input.Name),
	}
	if required, ok := s.evaluator.RequiredTier(input.Name); ok {
		resp.RequiredTier = string(required)
	}

	return &FeatureAccessOutput{Body: resp}, nil
}
