package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/churn/internal/adapters/http/api"
	app "github.com/okian/churn/internal/app"
	"github.com/okian/churn/internal/config"
	"github.com/okian/churn/internal/domain/model"
	"github.com/okian/churn/internal/domain/scoring"
	"github.com/okian/churn/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given churn environment variables", t, func() {
		_ = os.Setenv("CHURN_ADDR", ":8080")
		_ = os.Setenv("CHURN_DEFAULT_THRESHOLD", "0.35")
		defer func() {
			_ = os.Unsetenv("CHURN_ADDR")
			_ = os.Unsetenv("CHURN_DEFAULT_THRESHOLD")
		}()

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.DefaultThreshold, convey.ShouldEqual, 0.35)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		_ = os.Setenv("CHURN_ADDR", "")
		defer func() { _ = os.Unsetenv("CHURN_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestLoadPipeline(t *testing.T) {
	convey.Convey("Given the bundled artifact", t, func() {
		pipeline, err := loadPipeline(context.Background(), "../model.yaml")

		convey.Convey("Then it loads with the current contract", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(pipeline.Info().ContractVersion, convey.ShouldEqual, model.FeatureContractVersion)
		})
	})

	convey.Convey("Given a missing artifact", t, func() {
		_, err := loadPipeline(context.Background(), "does-not-exist.yaml")

		convey.Convey("Then startup must fail", func() {
			convey.So(errors.Is(err, scoring.ErrArtifactNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the full route table over the bundled artifact", t, func() {
		ctx := context.Background()
		pipeline, err := loadPipeline(ctx, "../model.yaml")
		convey.So(err, convey.ShouldBeNil)

		svc := app.New(app.WithScorer(pipeline))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		cfg := config.New()
		h := newHandler(ctx, cfg, svc)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
			return w
		}

		convey.Convey("Then every route answers with a request ID", func() {
			for _, path := range []string{"/", "/form", "/stats", "/healthz", "/api-docs", "/openapi.yaml"} {
				w := get(path)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get(api.RequestIDHeader), convey.ShouldNotBeEmpty)
			}
		})

		convey.Convey("When the default form is submitted", func() {
			body, err := json.Marshal(model.DefaultForm(svc.Today()))
			convey.So(err, convey.ShouldBeNil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("POST", "/predict", bytes.NewReader(body)))

			convey.Convey("Then a prediction comes back", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var pred model.Prediction
				convey.So(json.NewDecoder(w.Body).Decode(&pred), convey.ShouldBeNil)
				convey.So(pred.Probability, convey.ShouldBeBetweenOrEqual, 0, 1)
				convey.So(pred.Threshold, convey.ShouldEqual, cfg.DefaultThreshold)
			})

			convey.Convey("And the model metadata is exported", func() {
				convey.So(get("/healthz").Body.String(), convey.ShouldContainSubstring, "churn_scoring_model_info")
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then it returns when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
