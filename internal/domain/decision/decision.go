// Package decision applies the churn threshold and picks the
// recommendation text shown with a prediction.
package decision

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/churn/internal/domain/model"
)

// Threshold bounds of the decision slider.
const (
	MinThreshold = 0.05
	MaxThreshold = 0.95

	lowBandwidthMbps = 80
)

// Labels rendered for each outcome.
const (
	LabelChurn   = "Churn"
	LabelNoChurn = "No churn"
)

// ErrThresholdRange is returned for thresholds outside the slider bounds.
var ErrThresholdRange = errors.New("threshold out of range")

// Recommendation texts.
const (
	RecLongContract   = "Ofrecer contrato de 1–2 años con beneficios (upgrade, descuento 3–6 meses)."
	RecReduceDowntime = "Reducir downtime y TMR de soporte; ticket preventivo si hubo caídas."
	RecAdjustBundle   = "Ajustar tarifa/paquete (bundle) y promociones personalizadas."
	RecPayment        = "Recordatorios y fraccionamiento; incentivar pago automático."
	RecUpgrade        = "Proponer upgrade de plan/tecnología."
	RecCrossSell      = "Cliente estable: habilitar cross-sell suave (upgrade de velocidad)."
	RecKeepNPS        = "Mantener NPS con comunicaciones proactivas y estabilidad del servicio."
)

// ValidateThreshold checks t against the slider bounds.
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < MinThreshold || t > MaxThreshold {
		return fmt.Errorf("%w: %.2f not in [%.2f, %.2f]", ErrThresholdRange, t, MinThreshold, MaxThreshold)
	}
	return nil
}

// Decide reports churn when probability reaches the threshold.
func Decide(probability, threshold float64) bool {
	return probability >= threshold
}

// Label renders the decision.
func Label(churn bool) string {
	if churn {
		return LabelChurn
	}
	return LabelNoChurn
}

// Recommend returns the ordered recommendation list for a decision. Only
// late payments and download speed add to the churn list.
func Recommend(churn bool, req model.ScoringRequest) []string {
	if !churn {
		return []string{RecCrossSell, RecKeepNPS}
	}
	recs := []string{RecLongContract, RecReduceDowntime, RecAdjustBundle}
	if req.LatePayments12m > 0 {
		recs = append(recs, RecPayment)
	}
	if req.AvgDownloadMbps < lowBandwidthMbps {
		recs = append(recs, RecUpgrade)
	}
	return recs
}
