// Package scoring defines the contract for turning a feature row into a
// churn probability, and the pipeline that implements it from an artifact.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/okian/churn/internal/domain/features"
	"github.com/okian/churn/internal/domain/model"
)

// Sentinel kinds for scoring errors.
var (
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrArtifactCorrupt  = errors.New("model artifact corrupt")
	ErrContractMismatch = errors.New("feature contract mismatch")
	ErrMissingFeature   = errors.New("missing feature value")
	ErrNonFiniteScore   = errors.New("non-finite linear term")
)

// Scorer computes a churn probability in [0,1] for one feature row.
type Scorer interface {
	Score(ctx context.Context, req model.ScoringRequest) (float64, error)
}

// Info describes a loaded artifact.
type Info struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ContractVersion string `json:"contract_version"`
	Path            string `json:"path"`
}

// Describer is implemented by scorers that can report their artifact.
type Describer interface {
	Info() Info
}

// Pipeline is a deserialized logistic scoring pipeline. It is immutable
// after Load and safe for concurrent use.
type Pipeline struct {
	info      Info
	intercept float64
	numeric   map[string]NumericTerm
	category  map[string]map[string]float64
	text      map[string]TextTerm
}

// Info returns the artifact metadata.
func (p *Pipeline) Info() Info { return p.info }

// Score walks the row in contract order and returns the logistic of the
// accumulated linear term. Categories unseen at training time contribute 0.
func (p *Pipeline) Score(ctx context.Context, req model.ScoringRequest) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}

	z := p.intercept
	for _, col := range features.Row(req) {
		switch v := col.Value.(type) {
		case nil:
			if _, ok := p.numeric[col.Name]; ok {
				return 0, fmt.Errorf("%w: %s", ErrMissingFeature, col.Name)
			}
		case int:
			z += p.numericContribution(col.Name, float64(v))
		case float64:
			z += p.numericContribution(col.Name, v)
		case string:
			if t, ok := p.text[col.Name]; ok {
				z += t.contribution(v)
				continue
			}
			z += p.category[col.Name][v]
		}
	}
	// opposing infinite terms cancel to NaN; a one-sided infinity saturates.
	if math.IsNaN(z) {
		return 0, fmt.Errorf("%w: input out of the artifact's numeric range", ErrNonFiniteScore)
	}
	return sigmoid(z), nil
}

func (p *Pipeline) numericContribution(name string, v float64) float64 {
	t, ok := p.numeric[name]
	if !ok {
		return 0
	}
	return t.Coef * (v - t.Mean) / t.Scale
}

func (t TextTerm) contribution(s string) float64 {
	z := 0.0
	for _, tok := range tokenize(s, t.Lowercase) {
		z += t.Tokens[tok]
	}
	return z
}

// tokenize splits on anything that is not a letter or digit and drops
// duplicates, matching a binary bag-of-words vectorizer.
func tokenize(s string, lower bool) []string {
	if lower {
		s = strings.ToLower(s)
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// sigmoid is split by sign so that large |z| saturates to 0 or 1 without overflow.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
