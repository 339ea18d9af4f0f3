package smoke

import (
	"time"

	"github.com/okian/churn/internal/domain/model"
)

// Config holds configuration for the smoke run
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRequests int           // Number of submissions to generate
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for results
	LogFile     string        // Log file for run output
	Verbose     bool          // Enable verbose logging
}

// Case is one generated submission.
type Case struct {
	CustomerID string          `json:"customer_id"`
	Form       model.FormInput `json:"form"`
	Threshold  float64         `json:"threshold"`
}

// Result pairs a case with the service's answer.
type Result struct {
	Case       Case              `json:"case"`
	StatusCode int               `json:"status_code"`
	RequestID  string            `json:"request_id"`
	Prediction *model.Prediction `json:"prediction,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// predictRequest is the wire shape of POST /predict.
type predictRequest struct {
	model.FormInput
	Threshold float64 `json:"threshold"`
}

// Stats holds run statistics
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Failed     int
	Churn      int
	Violations int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
