// Package features turns a form submission into the feature row the
// scoring pipeline was fit on.
package features

import (
	"strings"
	"time"

	"github.com/okian/churn/internal/domain/model"
)

const secondsPerDay = 24 * 60 * 60

// Column is one named cell of the feature row.
type Column struct {
	Name  string
	Value any
}

// Build assembles exactly one ScoringRequest from the form, deriving the
// day counts relative to today. Nothing else is transformed.
func Build(in model.FormInput, today time.Time) model.ScoringRequest {
	nps := ""
	if in.NPSText != nil {
		nps = *in.NPSText
	}

	return model.ScoringRequest{
		TenureMonths:             in.TenureMonths,
		MonthlyCharge:            in.MonthlyCharge,
		TotalCharges:             in.TotalCharges,
		SupportTickets30d:        in.SupportTickets30d,
		NumServices:              in.NumServices,
		AvgDownloadMbps:          in.AvgDownloadMbps,
		DowntimeHrs30d:           in.DowntimeHrs30d,
		LatePayments12m:          in.LatePayments12m,
		DaysSinceSignup:          DaysSince(in.SignupDate, today),
		DaysSinceLastInteraction: DaysSince(in.LastInteractionDate, today),
		ContractType:             in.ContractType,
		PaymentMethod:            in.PaymentMethod,
		InternetService:          in.InternetService,
		PromoApplied:             in.PromoApplied,
		Region:                   in.Region,
		DeviceType:               in.DeviceType,
		NPSText:                  nps,
	}
}

// DaysSince returns the whole days between date and today's calendar date,
// or nil when date does not parse. Dates after today give negative counts.
func DaysSince(date string, today time.Time) *int {
	d, ok := parseDate(date)
	if !ok {
		return nil
	}
	// Unix seconds, since a time.Duration saturates after about 292 years.
	days := int((calendarDay(today).Unix() - d.Unix()) / secondsPerDay)
	return &days
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp, keeping only the
// calendar date as written.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return calendarDay(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return calendarDay(t), true
	}
	return time.Time{}, false
}

// calendarDay maps t to UTC midnight of its own calendar date, so that
// differences are exact multiples of 24h regardless of zone offsets.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Row returns the request as an ordered single-row table matching
// model.FeatureColumns. Nil day counts are carried as nil values.
func Row(r model.ScoringRequest) []Column {
	return []Column{
		{model.ColTenureMonths, r.TenureMonths},
		{model.ColMonthlyCharge, r.MonthlyCharge},
		{model.ColTotalCharges, r.TotalCharges},
		{model.ColSupportTickets30d, r.SupportTickets30d},
		{model.ColNumServices, r.NumServices},
		{model.ColAvgDownloadMbps, r.AvgDownloadMbps},
		{model.ColDowntimeHrs30d, r.DowntimeHrs30d},
		{model.ColLatePayments12m, r.LatePayments12m},
		{model.ColDaysSinceSignup, optionalInt(r.DaysSinceSignup)},
		{model.ColDaysSinceLastInteraction, optionalInt(r.DaysSinceLastInteraction)},
		{model.ColContractType, r.ContractType},
		{model.ColPaymentMethod, r.PaymentMethod},
		{model.ColInternetService, r.InternetService},
		{model.ColPromoApplied, r.PromoApplied},
		{model.ColRegion, r.Region},
		{model.ColDeviceType, r.DeviceType},
		{model.ColNPSText, r.NPSText},
	}
}

func optionalInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
