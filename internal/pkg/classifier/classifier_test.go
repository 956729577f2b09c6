package classifier

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/sensor-rewards/internal/pkg/model"
)

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		sensorID string
		expected model.DataType
	}{
		"temperature sensor": {
			sensorID: "sensor-tmp-1",
			expected: model.DataTypeTemperature,
		},
		"humidity sensor": {
			sensorID: "sensor-hum-4",
			expected: model.DataTypeHumidity,
		},
		"co2 sensor": {
			sensorID: "sensor-co2-2",
			expected: model.DataTypeCO2,
		},
		"sunlight sensor": {
			sensorID: "sensor-sun-3",
			expected: model.DataTypeSunlight,
		},
		"unrecognised prefix": {
			sensorID: "sensor-xyz-1",
			expected: model.DataTypeUnknown,
		},
		"empty id": {
			sensorID: "",
			expected: model.DataTypeUnknown,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.sensorID))
			// deterministic, same input always classifies identically.
			assert.Equal(t, Classify(tt.sensorID), Classify(tt.sensorID))
		})
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	got, err := NormalizeTimestamp(1700000000.250)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.November, 14, 22, 13, 20, 250_000_000, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestNormalizeTimestamp_RoundTrip(t *testing.T) {
	inputs := []float64{0, 1, 1700000000.001, 1700000000.999, 123456789.5}
	for _, input := range inputs {
		got, err := NormalizeTimestamp(input)
		require.NoError(t, err)
		roundTripped := float64(got.UnixMilli()) / 1000.0
		assert.InDelta(t, input, roundTripped, 0.001)
	}
}

func TestNormalizeTimestamp_Invalid(t *testing.T) {
	tests := map[string]float64{
		"negative":          -1,
		"nan":               math.NaN(),
		"positive infinity": math.Inf(1),
		"negative infinity": math.Inf(-1),
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeTimestamp(input)
			assert.ErrorIs(t, err, ErrInvalidTimestamp)
		})
	}
}
