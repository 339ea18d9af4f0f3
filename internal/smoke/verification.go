package smoke

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/churn/internal/domain/decision"
	"github.com/okian/churn/pkg/logger"
)

// checkPrediction reports the first inconsistency in a successful result.
func checkPrediction(r Result) error {
	p := r.Prediction
	if p == nil {
		return fmt.Errorf("no prediction")
	}
	switch {
	case math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1:
		return fmt.Errorf("probability %v outside [0,1]", p.Probability)
	case p.Threshold != r.Case.Threshold:
		return fmt.Errorf("threshold %.2f echoed as %.2f", r.Case.Threshold, p.Threshold)
	case p.Churn != decision.Decide(p.Probability, p.Threshold):
		return fmt.Errorf("churn=%v for probability %.4f at threshold %.2f", p.Churn, p.Probability, p.Threshold)
	case p.Label != decision.Label(p.Churn):
		return fmt.Errorf("label %q does not match churn=%v", p.Label, p.Churn)
	case p.ID == "":
		return fmt.Errorf("missing prediction id")
	}

	if !p.Churn {
		if len(p.Recommendations) != 2 {
			return fmt.Errorf("expected 2 recommendations without churn, got %d", len(p.Recommendations))
		}
		return nil
	}
	want := 3
	if r.Case.Form.LatePayments12m > 0 {
		want++
	}
	if r.Case.Form.AvgDownloadMbps < 80 {
		want++
	}
	if len(p.Recommendations) != want {
		return fmt.Errorf("expected %d churn recommendations, got %d", want, len(p.Recommendations))
	}
	return nil
}

// verifyResults checks every successful result and counts violations.
func verifyResults(ctx context.Context, results []Result, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	for _, r := range results {
		if r.Prediction == nil {
			continue
		}
		if r.Prediction.Churn {
			stats.Churn++
		}
		if err := checkPrediction(r); err != nil {
			stats.Violations++
			logger.Get().Warn(ctx, "inconsistent prediction",
				logger.String("customerID", r.Case.CustomerID),
				logger.String("requestID", r.RequestID),
				logger.Error(err),
			)
		}
	}

	if stats.Violations > 0 {
		return fmt.Errorf("%d inconsistent predictions", stats.Violations)
	}
	logger.Get().Info(ctx, "result verification completed")
	return nil
}

// verifyThresholdSweep resubmits one form across the slider and checks the
// probability stays fixed while churn can only turn off as the threshold rises.
func verifyThresholdSweep(ctx context.Context, cfg *Config, c Case) error {
	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/predict"

	var (
		first    *float64
		prevFlag = true
	)
	for t := decision.MinThreshold; t <= decision.MaxThreshold+1e-9; t += thresholdSweepStep {
		th := math.Round(t*100) / 100
		res := client.predict(ctx, url, "", c.Form, th)
		if res.Prediction == nil {
			return fmt.Errorf("threshold %.2f: status %d: %s", th, res.StatusCode, res.Error)
		}
		p := res.Prediction
		if first == nil {
			first = &p.Probability
		} else if p.Probability != *first {
			return fmt.Errorf("probability changed from %.6f to %.6f across thresholds", *first, p.Probability)
		}
		if p.Churn && !prevFlag {
			return fmt.Errorf("churn turned back on at threshold %.2f", th)
		}
		prevFlag = p.Churn
	}
	return nil
}
