package embedding

import (
	"context"
	"fmt"
	"sort"
)

// Registry holds one provider per modality. It is built once and passed to
// the components that need embeddings.
type Registry struct {
	providers map[Modality]Provider
}

// NewRegistry creates a registry from providers. A later provider replaces an
// earlier one of the same modality.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[Modality]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the provider for p.Modality()
func (r *Registry) Register(p Provider) {
	r.providers[p.Modality()] = p
}

// Provider returns the provider for m
func (r *Registry) Provider(m Modality) (Provider, bool) {
	p, ok := r.providers[m]
	return p, ok
}

// Modalities lists registered modalities in sorted order
func (r *Registry) Modalities() []Modality {
	out := make([]Modality, 0, len(r.providers))
	for m := range r.providers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Embed runs the provider registered for m
func (r *Registry) Embed(ctx context.Context, path string, m Modality) Result {
	p, ok := r.providers[m]
	if !ok {
		return Fail(m, fmt.Errorf("no provider registered"))
	}
	return p.Embed(ctx, path)
}

// EmbedPlan runs a plan. A hybrid plan concatenates both vectors and fails if
// either half fails.
func (r *Registry) EmbedPlan(ctx context.Context, path string, plan Plan) Result {
	first := r.Embed(ctx, path, plan.Primary)
	if plan.Kind == PlanSingle || !first.IsOk() {
		return first
	}

	second := r.Embed(ctx, path, plan.Secondary)
	if !second.IsOk() {
		return second
	}
	return Ok(Concat(first.Vector, second.Vector))
}
