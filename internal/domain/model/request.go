// Package model contains the domain types passed between layers.
package model

import "time"

// FeatureContractVersion identifies the column set and order below. An
// artifact fit on a different contract must not be loaded.
const FeatureContractVersion = "telco-churn/v1"

// Feature column names, in the order the scoring pipeline was fit on.
const (
	ColTenureMonths             = "tenure_months"
	ColMonthlyCharge            = "monthly_charge"
	ColTotalCharges             = "total_charges"
	ColSupportTickets30d        = "support_tickets_30d"
	ColNumServices              = "num_services"
	ColAvgDownloadMbps          = "avg_download_mbps"
	ColDowntimeHrs30d           = "downtime_hrs_30d"
	ColLatePayments12m          = "late_payments_12m"
	ColDaysSinceSignup          = "days_since_signup"
	ColDaysSinceLastInteraction = "days_since_last_interaction"
	ColContractType             = "contract_type"
	ColPaymentMethod            = "payment_method"
	ColInternetService          = "internet_service"
	ColPromoApplied             = "promo_applied"
	ColRegion                   = "region"
	ColDeviceType               = "device_type"
	ColNPSText                  = "nps_text"
)

// FeatureColumns is the ordered feature contract.
var FeatureColumns = []string{
	ColTenureMonths,
	ColMonthlyCharge,
	ColTotalCharges,
	ColSupportTickets30d,
	ColNumServices,
	ColAvgDownloadMbps,
	ColDowntimeHrs30d,
	ColLatePayments12m,
	ColDaysSinceSignup,
	ColDaysSinceLastInteraction,
	ColContractType,
	ColPaymentMethod,
	ColInternetService,
	ColPromoApplied,
	ColRegion,
	ColDeviceType,
	ColNPSText,
}

// ScoringRequest is the single feature row handed to a scorer.
// Derived day counts are nil when the source date could not be parsed.
type ScoringRequest struct {
	TenureMonths             int     `json:"tenure_months"`
	MonthlyCharge            float64 `json:"monthly_charge"`
	TotalCharges             float64 `json:"total_charges"`
	SupportTickets30d        int     `json:"support_tickets_30d"`
	NumServices              int     `json:"num_services"`
	AvgDownloadMbps          float64 `json:"avg_download_mbps"`
	DowntimeHrs30d           float64 `json:"downtime_hrs_30d"`
	LatePayments12m          int     `json:"late_payments_12m"`
	DaysSinceSignup          *int    `json:"days_since_signup"`
	DaysSinceLastInteraction *int    `json:"days_since_last_interaction"`
	ContractType             string  `json:"contract_type"`
	PaymentMethod            string  `json:"payment_method"`
	InternetService          string  `json:"internet_service"`
	PromoApplied             string  `json:"promo_applied"`
	Region                   string  `json:"region"`
	DeviceType               string  `json:"device_type"`
	NPSText                  string  `json:"nps_text"`
}

// FormInput is one raw form submission. Dates are YYYY-MM-DD strings.
type FormInput struct {
	SignupDate          string  `json:"signup_date"`
	LastInteractionDate string  `json:"last_interaction_date"`
	TenureMonths        int     `json:"tenure_months"`
	MonthlyCharge       float64 `json:"monthly_charge"`
	TotalCharges        float64 `json:"total_charges"`
	SupportTickets30d   int     `json:"support_tickets_30d"`
	NumServices         int     `json:"num_services"`
	AvgDownloadMbps     float64 `json:"avg_download_mbps"`
	DowntimeHrs30d      float64 `json:"downtime_hrs_30d"`
	LatePayments12m     int     `json:"late_payments_12m"`
	ContractType        string  `json:"contract_type"`
	PaymentMethod       string  `json:"payment_method"`
	InternetService     string  `json:"internet_service"`
	PromoApplied        string  `json:"promo_applied"`
	Region              string  `json:"region"`
	DeviceType          string  `json:"device_type"`
	NPSText             *string `json:"nps_text"`
}

// Prediction is the rendered outcome of one submission.
type Prediction struct {
	ID                 string    `json:"id"`
	Probability        float64   `json:"probability"`
	ProbabilityDisplay string    `json:"probability_display"`
	Threshold          float64   `json:"threshold"`
	Churn              bool      `json:"churn"`
	Label              string    `json:"label"`
	Recommendations    []string  `json:"recommendations"`
	ScoredAt           time.Time `json:"scored_at"`
}
