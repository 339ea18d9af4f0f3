package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/churn/internal/domain/decision"
	"github.com/okian/churn/internal/domain/model"
	"github.com/okian/churn/internal/domain/scoring"
	"github.com/okian/churn/pkg/logger"
)

const defaultMaxBodyBytes = 64 << 10

// predictRequest mirrors the OpenAPI schema for POST /predict.
type predictRequest struct {
	model.FormInput
	Threshold *float64 `json:"threshold"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, maxBodyBytes int64) *PredictHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req predictRequest
	if err := h.decode(w, r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	pred, err := h.deps.Predict(r.Context(), PredictInput{Form: req.FormInput, Threshold: req.Threshold})
	if err != nil {
		status, code, kind := classify(err)
		if status >= http.StatusInternalServerError {
			logger.Get().Error(r.Context(), "prediction failed",
				logger.String("requestID", RequestIDFromContext(r.Context())),
				logger.Error(Wrap(op, err)),
			)
		}
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// decode reads exactly one JSON object from the limited body. Anything but
// whitespace after it is rejected.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errors.New("unexpected data after the JSON object")
	}
}

// classify maps a prediction failure to its HTTP status, code and kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, model.ErrInvalidField), errors.Is(err, decision.ErrThresholdRange):
		return http.StatusBadRequest, "invalid_input", ErrBadRequest
	case errors.Is(err, scoring.ErrMissingFeature), errors.Is(err, scoring.ErrContractMismatch):
		return http.StatusUnprocessableEntity, "unprocessable", ErrUnprocessable
	case errors.Is(err, scoring.ErrNonFiniteScore):
		return http.StatusUnprocessableEntity, "unprocessable", ErrUnprocessable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled", ErrInternal
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}
