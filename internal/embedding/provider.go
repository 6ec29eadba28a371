// Package embedding defines the embedding provider contract, the registry that
// resolves providers per file type, and the concrete local and remote providers.
package embedding

import (
	"context"
	"fmt"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// Modality names one kind of embedding. Every provider of a modality returns
// vectors of one fixed length.
type Modality string

const (
	ModalityVisualGrid      Modality = "visual-grid"
	ModalityVisualHistogram Modality = "visual-histogram"
	ModalityText            Modality = "text"
	ModalityCode            Modality = "code"
)

// Result is the outcome of a provider call: a vector, or the reason there is none.
// A zero vector with a nil Err is a legitimate result.
type Result struct {
	Vector []float64
	Err    error
}

// Ok wraps a vector
func Ok(vector []float64) Result {
	return Result{Vector: vector}
}

// Fail wraps err as ErrProviderFailure and keeps err in the chain
func Fail(modality Modality, err error) Result {
	return Result{Err: fmt.Errorf("%w: %s: %w", models.ErrProviderFailure, modality, err)}
}

// IsOk reports whether the call produced a vector
func (r Result) IsOk() bool {
	return r.Err == nil
}

// Provider produces embeddings of files for one modality
type Provider interface {
	Modality() Modality
	Embed(ctx context.Context, path string) Result
}

// PlanKind distinguishes single-provider and two-provider plans
type PlanKind int

const (
	PlanSingle PlanKind = iota
	PlanHybrid
)

// Plan says which providers serve a file type
type Plan struct {
	Kind      PlanKind
	Primary   Modality
	Secondary Modality // PlanHybrid only
}

// Single is a plan served by one provider
func Single(m Modality) Plan {
	return Plan{Kind: PlanSingle, Primary: m}
}

// Hybrid is a plan served by two providers
func Hybrid(primary, secondary Modality) Plan {
	return Plan{Kind: PlanHybrid, Primary: primary, Secondary: secondary}
}

// Modalities lists the modalities a plan needs
func (p Plan) Modalities() []Modality {
	if p.Kind == PlanHybrid {
		return []Modality{p.Primary, p.Secondary}
	}
	return []Modality{p.Primary}
}

func (p Plan) String() string {
	if p.Kind == PlanHybrid {
		return fmt.Sprintf("hybrid(%s,%s)", p.Primary, p.Secondary)
	}
	return fmt.Sprintf("single(%s)", p.Primary)
}

// PlanFor resolves the plan for a file subtype. The second return is false for
// types that have no embedding (binary, unknown, hash-like).
func PlanFor(fileType models.FileType) (Plan, bool) {
	switch fileType {
	case models.TypeImage:
		return Hybrid(ModalityVisualGrid, ModalityVisualHistogram), true
	case models.TypeText:
		return Single(ModalityText), true
	case models.TypeCode:
		return Hybrid(ModalityText, ModalityCode), true
	default:
		return Plan{}, false
	}
}
