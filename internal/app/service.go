// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/churn/internal/domain/decision"
	"github.com/okian/churn/internal/domain/features"
	"github.com/okian/churn/internal/domain/model"
	"github.com/okian/churn/internal/domain/scoring"
	"github.com/okian/churn/pkg/logger"
	"github.com/okian/churn/pkg/metrics"
)

// ErrNoScorer is returned by Start when no scorer was injected.
var ErrNoScorer = errors.New("no scorer configured")

// ErrNotStarted is returned by Predict before Start.
var ErrNotStarted = errors.New("service not started")

// PredictInput is one submission: the raw form plus an optional threshold.
// A nil threshold falls back to the service default.
type PredictInput struct {
	Form      model.FormInput
	Threshold *float64
}

// Service scores form submissions with an injected scorer.
type Service struct {
	mu sync.RWMutex

	scorer           scoring.Scorer
	clock            func() time.Time
	defaultThreshold float64

	started bool

	predictions atomic.Int64
	churned     atomic.Int64
	failures    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScorer injects the scorer used by Predict.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		s.scorer = scorer
	}
}

// WithClock sets the source of the reference date for derived features.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDefaultThreshold sets the threshold used when a submission has none.
// Values outside the slider bounds are ignored.
func WithDefaultThreshold(t float64) Option {
	return func(s *Service) {
		if decision.ValidateThreshold(t) == nil {
			s.defaultThreshold = t
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clock:            time.Now,
		defaultThreshold: 0.50,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start checks the service dependencies and marks it ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.scorer == nil {
		return ErrNoScorer
	}

	s.started = true
	fields := []logger.Field{logger.Float64("defaultThreshold", s.defaultThreshold)}
	if d, ok := s.scorer.(scoring.Describer); ok {
		info := d.Info()
		fields = append(fields,
			logger.String("model", info.Name),
			logger.String("version", info.Version),
			logger.String("contract", info.ContractVersion),
		)
	}
	s.logger.Info(ctx, "churn service started", fields...)

	return nil
}

// Stop marks the service as stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "churn service stopped",
		logger.Int64("predictions", s.predictions.Load()),
	)
}

// DefaultThreshold returns the threshold applied when a submission has none.
func (s *Service) DefaultThreshold() float64 {
	return s.defaultThreshold
}

// Today returns the service's current reference date.
func (s *Service) Today() time.Time {
	return s.clock()
}

// Predict validates a submission, scores it and applies the decision rule.
// Nothing is returned on failure; there is no partial result.
func (s *Service) Predict(ctx context.Context, in PredictInput) (model.Prediction, error) {
	s.mu.RLock()
	started, scorer := s.started, s.scorer
	s.mu.RUnlock()
	if !started {
		return model.Prediction{}, ErrNotStarted
	}

	start := time.Now()
	pred, err := s.predict(ctx, scorer, in)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		s.failures.Add(1)
		kind := errorKind(err)
		metrics.RecordScoringError(kind)
		metrics.RecordErrorLatency("service", kind, elapsed)
		s.logger.Warn(ctx, "prediction failed",
			logger.String("kind", kind),
			logger.Error(err),
		)
		return model.Prediction{}, err
	}

	metrics.RecordScoringLatency(elapsed)
	metrics.RecordPrediction(pred.Label, pred.Probability)
	s.predictions.Add(1)
	if pred.Churn {
		s.churned.Add(1)
	}

	s.logger.Debug(ctx, "prediction served",
		logger.String("id", pred.ID),
		logger.Float64("probability", pred.Probability),
		logger.Float64("threshold", pred.Threshold),
		logger.String("label", pred.Label),
	)
	return pred, nil
}

func (s *Service) predict(ctx context.Context, scorer scoring.Scorer, in PredictInput) (model.Prediction, error) {
	threshold := s.defaultThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	if err := decision.ValidateThreshold(threshold); err != nil {
		return model.Prediction{}, err
	}
	if err := in.Form.Validate(); err != nil {
		return model.Prediction{}, err
	}

	now := s.clock()
	req := features.Build(in.Form, now)

	probability, err := scorer.Score(ctx, req)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("score: %w", err)
	}

	churn := decision.Decide(probability, threshold)
	return model.Prediction{
		ID:                 uuid.NewString(),
		Probability:        probability,
		ProbabilityDisplay: fmt.Sprintf("%.3f", probability),
		Threshold:          threshold,
		Churn:              churn,
		Label:              decision.Label(churn),
		Recommendations:    decision.Recommend(churn, req),
		ScoredAt:           now.UTC(),
	}, nil
}

// errorKind maps an error to its metrics label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidField):
		return "validation"
	case errors.Is(err, decision.ErrThresholdRange):
		return "threshold"
	case errors.Is(err, scoring.ErrMissingFeature):
		return "missing_feature"
	case errors.Is(err, scoring.ErrContractMismatch):
		return "contract"
	case errors.Is(err, scoring.ErrNonFiniteScore):
		return "non_finite"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"scorerReady":      s.scorer != nil,
		"defaultThreshold": s.defaultThreshold,
		"predictions":      s.predictions.Load(),
		"churnPredictions": s.churned.Load(),
		"failures":         s.failures.Load(),
	}

	if d, ok := s.scorer.(scoring.Describer); ok {
		info := d.Info()
		stats["model"] = map[string]interface{}{
			"name":     info.Name,
			"version":  info.Version,
			"contract": info.ContractVersion,
			"path":     info.Path,
		}
	}

	return stats
}
