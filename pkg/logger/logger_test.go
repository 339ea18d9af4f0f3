package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFormats(t *testing.T) {
	for _, format := range []string{FormatText, FormatJSON, "", " JSON "} {
		require.NoError(t, Init(WithFormat(format)), "format %q", format)
		assert.NotNil(t, Get())
	}
	assert.Error(t, Init(WithFormat("xml")))
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(WithFormat(FormatJSON), WithOutput(&buf)))

	Named("scoring").Info(context.Background(), "scored", String("label", "Churn"), Float64("probability", 0.73))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scored", line["msg"])
	assert.Equal(t, "scoring", line["component"])
	assert.Equal(t, "Churn", line["label"])
	assert.InDelta(t, 0.73, line["probability"], 1e-9)
	assert.Contains(t, line["source"], "logger_test.go")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(WithOutput(&buf)))
	ctx := context.Background()

	Get().Debug(ctx, "hidden")
	assert.Empty(t, buf.String())

	require.NoError(t, SetLevelString("debug"))
	Get().Debug(ctx, "visible")
	assert.True(t, strings.Contains(buf.String(), "visible"))

	require.NoError(t, SetLevelString("ERROR"))
	buf.Reset()
	Get().Warn(ctx, "suppressed")
	assert.Empty(t, buf.String())
}

func TestSetLevelString(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"", false},
		{"warning", false},
		{"warn", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tt := range tests {
		err := SetLevelString(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
	require.NoError(t, Sync())
}
