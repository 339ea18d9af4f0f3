package api

import (
	"net/http"

	"github.com/okian/churn/internal/domain/decision"
	"github.com/okian/churn/internal/domain/model"
)

const thresholdStep = 0.01

type thresholdRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// formResponse describes every widget of the submission form.
type formResponse struct {
	Columns   []string               `json:"columns"`
	Options   map[string][]string    `json:"options"`
	Ranges    map[string]model.Range `json:"ranges"`
	Threshold thresholdRange         `json:"threshold"`
	Defaults  model.FormInput        `json:"defaults"`
}

// FormHandler serves the form description.
type FormHandler struct {
	deps Dependencies
}

// NewFormHandler creates a new form handler.
func NewFormHandler(deps Dependencies) *FormHandler {
	return &FormHandler{deps: deps}
}

// HandleGetForm handles GET /form requests.
func (h *FormHandler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{
		Columns: model.FeatureColumns,
		Options: model.Options(),
		Ranges:  model.Ranges,
		Threshold: thresholdRange{
			Min:     decision.MinThreshold,
			Max:     decision.MaxThreshold,
			Step:    thresholdStep,
			Default: h.deps.DefaultThreshold(),
		},
		Defaults: model.DefaultForm(h.deps.Today()),
	})
}
