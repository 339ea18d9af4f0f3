package model

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// DateLayout is the wire format of form dates.
const DateLayout = "2006-01-02"

// ErrInvalidField is wrapped by every Validate failure.
var ErrInvalidField = errors.New("invalid field")

// Option sets of the categorical form fields. The values are the category
// labels the pipeline was trained on and must not be translated.
var (
	ContractTypes    = []string{"Mes a mes", "1 año", "2 años"}
	PaymentMethods   = []string{"Tarjeta", "Débito", "Efectivo", "Billetera", "Cheque"}
	InternetServices = []string{"Fibra", "Cable", "DSL", "Satélite"}
	PromoOptions     = []string{"Sí", "No"}
	Regions          = []string{"Norte", "Centro", "Sur", "Oriente", "Lima Metropolitana"}
	DeviceTypes      = []string{"Modem", "Router", "Combo", "ONT", "Otro"}
)

// Range bounds a numeric form field. A nil Max means unbounded.
type Range struct {
	Min  float64  `json:"min"`
	Max  *float64 `json:"max,omitempty"`
	Step float64  `json:"step"`
}

func bounded(minV, maxV, step float64) Range { return Range{Min: minV, Max: &maxV, Step: step} }
func atLeast(minV, step float64) Range      { return Range{Min: minV, Step: step} }

// Ranges lists the numeric widget bounds keyed by column name.
var Ranges = map[string]Range{
	ColTenureMonths:      bounded(0, 240, 1),
	ColMonthlyCharge:     atLeast(0, 0.1),
	ColTotalCharges:      atLeast(0, 0.1),
	ColSupportTickets30d: bounded(0, 30, 1),
	ColNumServices:       bounded(1, 5, 1),
	ColAvgDownloadMbps:   atLeast(1, 1),
	ColDowntimeHrs30d:    atLeast(0, 0.1),
	ColLatePayments12m:   bounded(0, 24, 1),
}

// Options maps each categorical column to its allowed values.
func Options() map[string][]string {
	return map[string][]string{
		ColContractType:    ContractTypes,
		ColPaymentMethod:   PaymentMethods,
		ColInternetService: InternetServices,
		ColPromoApplied:    PromoOptions,
		ColRegion:          Regions,
		ColDeviceType:      DeviceTypes,
	}
}

// DefaultForm returns the form as first shown, with the last interaction
// date set to today.
func DefaultForm(today time.Time) FormInput {
	nps := "Todo bien"
	return FormInput{
		SignupDate:          "2023-01-15",
		LastInteractionDate: today.Format(DateLayout),
		TenureMonths:        24,
		MonthlyCharge:       65.0,
		TotalCharges:        1560.0,
		SupportTickets30d:   1,
		NumServices:         3,
		AvgDownloadMbps:     180.0,
		DowntimeHrs30d:      1.5,
		LatePayments12m:     0,
		ContractType:        ContractTypes[0],
		PaymentMethod:       PaymentMethods[0],
		InternetService:     InternetServices[0],
		PromoApplied:        PromoOptions[1],
		Region:              Regions[4],
		DeviceType:          DeviceTypes[1],
		NPSText:             &nps,
	}
}

// Validate enforces the widget ranges and option sets. Dates are not
// checked here; an unparseable date surfaces as a missing derived feature.
func (f FormInput) Validate() error {
	numeric := []struct {
		col string
		v   float64
	}{
		{ColTenureMonths, float64(f.TenureMonths)},
		{ColMonthlyCharge, f.MonthlyCharge},
		{ColTotalCharges, f.TotalCharges},
		{ColSupportTickets30d, float64(f.SupportTickets30d)},
		{ColNumServices, float64(f.NumServices)},
		{ColAvgDownloadMbps, f.AvgDownloadMbps},
		{ColDowntimeHrs30d, f.DowntimeHrs30d},
		{ColLatePayments12m, float64(f.LatePayments12m)},
	}
	for _, n := range numeric {
		r := Ranges[n.col]
		if n.v < r.Min {
			return fmt.Errorf("%w: %s must be >= %g", ErrInvalidField, n.col, r.Min)
		}
		if r.Max != nil && n.v > *r.Max {
			return fmt.Errorf("%w: %s must be <= %g", ErrInvalidField, n.col, *r.Max)
		}
	}

	categorical := []struct {
		col string
		v   string
	}{
		{ColContractType, f.ContractType},
		{ColPaymentMethod, f.PaymentMethod},
		{ColInternetService, f.InternetService},
		{ColPromoApplied, f.PromoApplied},
		{ColRegion, f.Region},
		{ColDeviceType, f.DeviceType},
	}
	opts := Options()
	for _, c := range categorical {
		if !slices.Contains(opts[c.col], c.v) {
			return fmt.Errorf("%w: %s %q is not one of %v", ErrInvalidField, c.col, c.v, opts[c.col])
		}
	}
	return nil
}
