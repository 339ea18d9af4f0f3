package smoke

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/churn/internal/adapters/http/api"
	service "github.com/okian/churn/internal/app"
	"github.com/okian/churn/internal/domain/decision"
	"github.com/okian/churn/internal/domain/model"
	"github.com/okian/churn/internal/domain/scoring"
	"github.com/okian/churn/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		panic(err)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	pipeline, err := scoring.Load(context.Background(), "../../model.yaml")
	if err != nil {
		t.Fatalf("load pipeline: %v", err)
	}
	svc := service.New(service.WithScorer(pipeline))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(api.RequestIDMiddleware(mux))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateCases(t *testing.T) {
	Convey("Given a generator", t, func() {
		today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		stats := &Stats{}
		cases, err := generateCases(context.Background(), &Config{NumRequests: 200}, today, stats)
		So(err, ShouldBeNil)

		Convey("Then every case is a valid submission", func() {
			So(cases, ShouldHaveLength, 200)
			So(stats.Generated, ShouldEqual, 200)
			seen := make(map[string]bool, len(cases))
			for _, c := range cases {
				So(c.Form.Validate(), ShouldBeNil)
				So(decision.ValidateThreshold(c.Threshold), ShouldBeNil)
				So(seen[c.CustomerID], ShouldBeFalse)
				seen[c.CustomerID] = true

				signup, err := time.Parse(model.DateLayout, c.Form.SignupDate)
				So(err, ShouldBeNil)
				So(signup.After(today), ShouldBeFalse)
			}
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := generateCases(ctx, &Config{NumRequests: 5}, time.Now(), &Stats{})
		So(err, ShouldNotBeNil)
	})
}

func TestCheckPrediction(t *testing.T) {
	Convey("Given a consistent churn result", t, func() {
		r := Result{
			Case: Case{Threshold: 0.5, Form: model.FormInput{LatePayments12m: 1, AvgDownloadMbps: 200}},
			Prediction: &model.Prediction{
				ID:              "x",
				Probability:     0.7,
				Threshold:       0.5,
				Churn:           true,
				Label:           decision.LabelChurn,
				Recommendations: []string{"a", "b", "c", "d"},
			},
		}
		So(checkPrediction(r), ShouldBeNil)

		Convey("When the label contradicts the decision", func() {
			r.Prediction.Label = decision.LabelNoChurn
			So(checkPrediction(r), ShouldNotBeNil)
		})

		Convey("When churn is set below the threshold", func() {
			r.Prediction.Probability = 0.2
			So(checkPrediction(r), ShouldNotBeNil)
		})

		Convey("When the probability leaves [0,1]", func() {
			r.Prediction.Probability = 1.2
			So(checkPrediction(r), ShouldNotBeNil)
		})

		Convey("When the payment reminder is missing", func() {
			r.Prediction.Recommendations = r.Prediction.Recommendations[:3]
			So(checkPrediction(r), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a live service", t, func() {
		srv := newTestServer(t)
		out := filepath.Join(t.TempDir(), "results.json")
		cfg := &Config{
			BaseURL:     srv.URL,
			NumRequests: 50,
			Workers:     4,
			Timeout:     5 * time.Second,
			OutputFile:  out,
		}

		Convey("When running the smoke checks", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every submission succeeds consistently", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 50)
				So(stats.Successful, ShouldEqual, 50)
				So(stats.Violations, ShouldEqual, 0)
			})

			Convey("And the results file is written", func() {
				info, err := os.Stat(out)
				So(err, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given an unreachable service", t, func() {
		cfg := &Config{BaseURL: "http://127.0.0.1:1", NumRequests: 1, Workers: 1, Timeout: time.Second}
		_, err := Run(context.Background(), cfg)
		So(err, ShouldNotBeNil)
	})
}

func TestPredictEchoesRequestID(t *testing.T) {
	Convey("Given a live service", t, func() {
		srv := newTestServer(t)
		client := newHTTPClient(time.Second)
		c := generateSingleCase("customer-42", time.Now())

		res := client.predict(context.Background(), srv.URL+"/predict", c.CustomerID, c.Form, c.Threshold)

		So(res.StatusCode, ShouldEqual, http.StatusOK)
		So(res.RequestID, ShouldEqual, "customer-42")
		So(res.Prediction, ShouldNotBeNil)
	})
}
