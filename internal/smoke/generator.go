package smoke

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/okian/churn/internal/domain/decision"
	"github.com/okian/churn/internal/domain/model"
	"github.com/okian/churn/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	maxSignupAgeDays   = 3650
	maxInteractionDays = 180
	openEndedSpan      = 300.0
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [0, n).
func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick(values []string) string {
	return values[randomInt(len(values))]
}

// inRange draws a value inside the widget range of col, snapped to its step.
func inRange(col string) float64 {
	r := model.Ranges[col]
	upper := r.Min + openEndedSpan
	if r.Max != nil {
		upper = *r.Max
	}
	v := r.Min + getRandomFloat()*(upper-r.Min)
	if r.Step > 0 {
		v = r.Min + math.Floor((v-r.Min)/r.Step)*r.Step
	}
	return math.Round(v*100) / 100
}

// generateCases creates cfg.NumRequests valid submissions with unique customer IDs.
func generateCases(ctx context.Context, cfg *Config, today time.Time, stats *Stats) ([]Case, error) {
	logger.Get().Info(ctx, "generating submissions", logger.Int("count", cfg.NumRequests))

	cases := make([]Case, cfg.NumRequests)
	for i := range cases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		cases[i] = generateSingleCase(uuid.NewString(), today)
	}

	stats.Generated = len(cases)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(cases)))
	return cases, nil
}

// generateSingleCase draws every field from its option set or range.
func generateSingleCase(customerID string, today time.Time) Case {
	signup := today.AddDate(0, 0, -randomInt(maxSignupAgeDays))
	last := today.AddDate(0, 0, -randomInt(maxInteractionDays))

	var nps *string
	switch randomInt(3) {
	case 0:
		// missing
	case 1:
		s := ""
		nps = &s
	default:
		s := pick(npsSamples)
		nps = &s
	}

	steps := int(math.Round((decision.MaxThreshold - decision.MinThreshold) * 100))
	threshold := math.Round((decision.MinThreshold+float64(randomInt(steps+1))/100)*100) / 100

	return Case{
		CustomerID: customerID,
		Threshold:  threshold,
		Form: model.FormInput{
			SignupDate:          signup.Format(model.DateLayout),
			LastInteractionDate: last.Format(model.DateLayout),
			TenureMonths:        int(inRange(model.ColTenureMonths)),
			MonthlyCharge:       inRange(model.ColMonthlyCharge),
			TotalCharges:        inRange(model.ColTotalCharges) * 20,
			SupportTickets30d:   int(inRange(model.ColSupportTickets30d)),
			NumServices:         int(inRange(model.ColNumServices)),
			AvgDownloadMbps:     inRange(model.ColAvgDownloadMbps),
			DowntimeHrs30d:      inRange(model.ColDowntimeHrs30d) / 10,
			LatePayments12m:     int(inRange(model.ColLatePayments12m)),
			ContractType:        pick(model.ContractTypes),
			PaymentMethod:       pick(model.PaymentMethods),
			InternetService:     pick(model.InternetServices),
			PromoApplied:        pick(model.PromoOptions),
			Region:              pick(model.Regions),
			DeviceType:          pick(model.DeviceTypes),
			NPSText:             nps,
		},
	}
}

var npsSamples = []string{
	"Todo bien",
	"El internet es muy lento",
	"Muchos cortes este mes",
	"Excelente servicio, recomendado",
	"Quiero cancelar, muy caro",
	"Soporte tardó en responder",
}
