package core

import (
	"context"
	"fmt"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/classifier"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// CompareOptions selects how two files are compared. Exactly one of Modality
// and Auto must be set.
type CompareOptions struct {
	Modality  embedding.Modality
	Auto      bool
	Threshold float64
}

// CompareResult is the outcome of a two-file comparison
type CompareResult struct {
	FileA      string             `json:"file_a"`
	FileB      string             `json:"file_b"`
	Modality   embedding.Modality `json:"modality"`
	Similarity float64            `json:"similarity"`
	Threshold  float64            `json:"threshold"`
	Similar    bool               `json:"similar"`
}

// autoModality maps a file subtype to the modality used by --auto
var autoModality = map[models.FileType]embedding.Modality{
	models.TypeImage: embedding.ModalityVisualGrid,
	models.TypeText:  embedding.ModalityText,
	models.TypeCode:  embedding.ModalityCode,
}

// Compare scores two files under one modality. The files are similar when the
// score is strictly above the threshold.
func Compare(ctx context.Context, registry *embedding.Registry, cls *classifier.Classifier, fileA, fileB string, opts CompareOptions) (*CompareResult, error) {
	modality, err := resolveModality(registry, cls, fileA, opts)
	if err != nil {
		return nil, err
	}

	resA := registry.Embed(ctx, fileA, modality)
	if !resA.IsOk() {
		return nil, resA.Err
	}
	resB := registry.Embed(ctx, fileB, modality)
	if !resB.IsOk() {
		return nil, resB.Err
	}

	sim, err := embedding.Cosine(resA.Vector, resB.Vector)
	if err != nil {
		return nil, err
	}

	return &CompareResult{
		FileA:      fileA,
		FileB:      fileB,
		Modality:   modality,
		Similarity: sim,
		Threshold:  opts.Threshold,
		Similar:    sim > opts.Threshold,
	}, nil
}

func resolveModality(registry *embedding.Registry, cls *classifier.Classifier, fileA string, opts CompareOptions) (embedding.Modality, error) {
	switch {
	case opts.Auto && opts.Modality != "":
		return "", fmt.Errorf("%w: use either --model or --auto, not both", models.ErrUsage)
	case !opts.Auto && opts.Modality == "":
		return "", fmt.Errorf("%w: either --model or --auto is required", models.ErrUsage)
	}

	modality := opts.Modality
	if opts.Auto {
		fileType := classifier.Subtype(fileA, cls.Classify(fileA))
		m, ok := autoModality[fileType]
		if !ok {
			return "", fmt.Errorf("%w: cannot pick a model for %s files", models.ErrUsage, fileType)
		}
		modality = m
	}

	if _, ok := registry.Provider(modality); !ok {
		return "", fmt.Errorf("%w: unknown model %q (available: %v)", models.ErrUsage, modality, registry.Modalities())
	}
	return modality, nil
}
