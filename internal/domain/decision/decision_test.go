package decision_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/churn/internal/domain/decision"
	"github.com/okian/churn/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		prob      float64
		threshold float64
		want      bool
	}{
		{"below", 0.49, 0.50, false},
		{"equal counts as churn", 0.50, 0.50, true},
		{"above", 0.51, 0.50, true},
		{"strict slider low", 0.05, 0.05, true},
		{"strict slider high", 0.94, 0.95, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decision.Decide(tt.prob, tt.threshold))
		})
	}
}

func TestDecideMonotonicInThreshold(t *testing.T) {
	for _, p := range []float64{0, 0.05, 0.3, 0.5, 0.77, 0.95, 1} {
		prev := true
		for th := decision.MinThreshold; th <= decision.MaxThreshold+1e-9; th += 0.01 {
			got := decision.Decide(p, th)
			// raising the threshold may only turn churn into no churn
			if got {
				require.True(t, prev, "p=%.2f flipped to churn at threshold %.2f", p, th)
			}
			prev = got
		}
	}
}

func TestValidateThreshold(t *testing.T) {
	for _, ok := range []float64{0.05, 0.5, 0.95} {
		assert.NoError(t, decision.ValidateThreshold(ok), "%v", ok)
	}
	for _, bad := range []float64{0, 0.04, 0.96, 1, -0.5, math.NaN()} {
		err := decision.ValidateThreshold(bad)
		assert.True(t, errors.Is(err, decision.ErrThresholdRange), "%v", bad)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Churn", decision.Label(true))
	assert.Equal(t, "No churn", decision.Label(false))
}

func TestRecommendWording(t *testing.T) {
	assert.Equal(t, "Recordatorios y fraccionamiento; incentivar pago automático.", decision.RecPayment)
	assert.Equal(t, "Proponer upgrade de plan/tecnología.", decision.RecUpgrade)
	assert.Equal(t, "Cliente estable: habilitar cross-sell suave (upgrade de velocidad).", decision.RecCrossSell)
}

func TestRecommend(t *testing.T) {
	base := model.ScoringRequest{AvgDownloadMbps: 180, LatePayments12m: 0}

	t.Run("no churn gets the stable list", func(t *testing.T) {
		req := base
		req.LatePayments12m = 5
		req.AvgDownloadMbps = 10
		assert.Equal(t, []string{decision.RecCrossSell, decision.RecKeepNPS}, decision.Recommend(false, req))
	})

	t.Run("churn without gates", func(t *testing.T) {
		assert.Equal(t, []string{
			decision.RecLongContract,
			decision.RecReduceDowntime,
			decision.RecAdjustBundle,
		}, decision.Recommend(true, base))
	})

	t.Run("late payments add the payment reminder", func(t *testing.T) {
		req := base
		req.LatePayments12m = 2
		recs := decision.Recommend(true, req)
		assert.Contains(t, recs, decision.RecPayment)
		assert.NotContains(t, recs, decision.RecUpgrade)
	})

	t.Run("slow download adds the upgrade proposal", func(t *testing.T) {
		req := base
		req.AvgDownloadMbps = 50
		recs := decision.Recommend(true, req)
		assert.Contains(t, recs, decision.RecUpgrade)
		assert.NotContains(t, recs, decision.RecPayment)
	})

	t.Run("exactly 80 Mbps is not slow", func(t *testing.T) {
		req := base
		req.AvgDownloadMbps = 80
		assert.NotContains(t, decision.Recommend(true, req), decision.RecUpgrade)
	})

	t.Run("both gates keep payment before upgrade", func(t *testing.T) {
		req := base
		req.LatePayments12m = 1
		req.AvgDownloadMbps = 20
		recs := decision.Recommend(true, req)
		require.Len(t, recs, 5)
		assert.Equal(t, decision.RecPayment, recs[3])
		assert.Equal(t, decision.RecUpgrade, recs[4])
	})
}
