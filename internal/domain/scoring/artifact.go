package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"

	"github.com/okian/churn/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Artifact is the on-disk form of a trained pipeline.
type Artifact struct {
	Name        string                        `yaml:"name"`
	Version     string                        `yaml:"version"`
	Contract    Contract                      `yaml:"contract"`
	Intercept   float64                       `yaml:"intercept"`
	Numeric     map[string]NumericTerm        `yaml:"numeric"`
	Categorical map[string]map[string]float64 `yaml:"categorical"`
	Text        map[string]TextTerm           `yaml:"text"`
}

// Contract is the feature contract the artifact was fit on.
type Contract struct {
	Version string   `yaml:"version"`
	Columns []string `yaml:"columns"`
}

// NumericTerm standardizes a value and weights it: coef * (v - mean) / scale.
type NumericTerm struct {
	Mean  float64 `yaml:"mean"`
	Scale float64 `yaml:"scale"`
	Coef  float64 `yaml:"coef"`
}

// TextTerm weights each distinct token present in a free-text value.
type TextTerm struct {
	Lowercase bool               `yaml:"lowercase"`
	Tokens    map[string]float64 `yaml:"tokens"`
}

var (
	numericColumns = []string{
		model.ColTenureMonths,
		model.ColMonthlyCharge,
		model.ColTotalCharges,
		model.ColSupportTickets30d,
		model.ColNumServices,
		model.ColAvgDownloadMbps,
		model.ColDowntimeHrs30d,
		model.ColLatePayments12m,
		model.ColDaysSinceSignup,
		model.ColDaysSinceLastInteraction,
	}
	categoricalColumns = []string{
		model.ColContractType,
		model.ColPaymentMethod,
		model.ColInternetService,
		model.ColPromoApplied,
		model.ColRegion,
		model.ColDeviceType,
	}
	textColumns = []string{model.ColNPSText}
)

// Load reads, decodes and validates the artifact at path.
func Load(ctx context.Context, path string) (*Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrArtifactCorrupt, path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.info.Path = path
	return p, nil
}

// Parse decodes an artifact from YAML and builds the pipeline.
func Parse(data []byte) (*Pipeline, error) {
	var a Artifact
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactCorrupt, err)
	}
	return a.Pipeline()
}

// Pipeline validates the artifact and returns the scorer it describes.
func (a Artifact) Pipeline() (*Pipeline, error) {
	if err := a.checkContract(); err != nil {
		return nil, err
	}
	if err := a.checkTerms(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		info: Info{
			Name:            a.Name,
			Version:         a.Version,
			ContractVersion: a.Contract.Version,
		},
		intercept: a.Intercept,
		numeric:   make(map[string]NumericTerm, len(a.Numeric)),
		category:  make(map[string]map[string]float64, len(a.Categorical)),
		text:      make(map[string]TextTerm, len(a.Text)),
	}
	for k, v := range a.Numeric {
		p.numeric[k] = v
	}
	for col, levels := range a.Categorical {
		m := make(map[string]float64, len(levels))
		for level, coef := range levels {
			m[level] = coef
		}
		p.category[col] = m
	}
	for col, t := range a.Text {
		tokens := make(map[string]float64, len(t.Tokens))
		for tok, coef := range t.Tokens {
			tokens[tok] = coef
		}
		p.text[col] = TextTerm{Lowercase: t.Lowercase, Tokens: tokens}
	}
	return p, nil
}

func (a Artifact) checkContract() error {
	if a.Contract.Version != model.FeatureContractVersion {
		return fmt.Errorf("%w: artifact fit on %q, service expects %q",
			ErrContractMismatch, a.Contract.Version, model.FeatureContractVersion)
	}
	if !slices.Equal(a.Contract.Columns, model.FeatureColumns) {
		return fmt.Errorf("%w: artifact columns %v, service columns %v",
			ErrContractMismatch, a.Contract.Columns, model.FeatureColumns)
	}
	return nil
}

func (a Artifact) checkTerms() error {
	if !finite(a.Intercept) {
		return fmt.Errorf("%w: intercept is not finite", ErrArtifactCorrupt)
	}
	for _, col := range numericColumns {
		t, ok := a.Numeric[col]
		if !ok {
			return fmt.Errorf("%w: no numeric term for %s", ErrArtifactCorrupt, col)
		}
		if t.Scale == 0 || !finite(t.Scale) || !finite(t.Mean) || !finite(t.Coef) {
			return fmt.Errorf("%w: numeric term %s has invalid parameters", ErrArtifactCorrupt, col)
		}
	}
	for col := range a.Numeric {
		if !slices.Contains(numericColumns, col) {
			return fmt.Errorf("%w: numeric term for non-numeric column %q", ErrContractMismatch, col)
		}
	}
	for col, levels := range a.Categorical {
		if !slices.Contains(categoricalColumns, col) {
			return fmt.Errorf("%w: categorical term for column %q", ErrContractMismatch, col)
		}
		for level, coef := range levels {
			if !finite(coef) {
				return fmt.Errorf("%w: %s=%q coefficient is not finite", ErrArtifactCorrupt, col, level)
			}
		}
	}
	for col, t := range a.Text {
		if !slices.Contains(textColumns, col) {
			return fmt.Errorf("%w: text term for column %q", ErrContractMismatch, col)
		}
		for tok, coef := range t.Tokens {
			if !finite(coef) {
				return fmt.Errorf("%w: %s token %q coefficient is not finite", ErrArtifactCorrupt, col, tok)
			}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
