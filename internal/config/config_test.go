package config_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/churn/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ModelPath, convey.ShouldEqual, "model.yaml")
			convey.So(cfg.DefaultThreshold, convey.ShouldEqual, 0.50)
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.RateLimitRPS, convey.ShouldBeGreaterThan, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the threshold is below the slider minimum", func() {
			cfg.DefaultThreshold = 0.01
			err := cfg.Validate()

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "default_threshold")
			})
		})

		convey.Convey("When the threshold is NaN", func() {
			cfg.DefaultThreshold = math.NaN()
			err := cfg.Validate()

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "default_threshold")
			})
		})

		convey.Convey("When the threshold sits on either bound", func() {
			cfg.DefaultThreshold = config.MinThreshold
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			cfg.DefaultThreshold = config.MaxThreshold
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the model path is blank", func() {
			cfg.ModelPath = "  "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When rate limiting is enabled without burst", func() {
			cfg.RateLimitBurst = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)

			convey.Convey("And disabling the limiter makes it valid again", func() {
				cfg.RateLimitRPS = 0
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the body limit is zero", func() {
			cfg.MaxBodyBytes = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
