package classifier

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/anicoll/sensor-rewards/internal/pkg/model"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// prefixes are mutually exclusive, extend with care.
var prefixes = []struct {
	prefix   string
	dataType model.DataType
}{
	{"sensor-tmp", model.DataTypeTemperature},
	{"sensor-hum", model.DataTypeHumidity},
	{"sensor-co2", model.DataTypeCO2},
	{"sensor-sun", model.DataTypeSunlight},
}

// Classify maps a sensor id onto its data type. It is total, anything
// unrecognised comes back as DataTypeUnknown.
func Classify(sensorID string) model.DataType {
	for _, p := range prefixes {
		if strings.HasPrefix(sensorID, p.prefix) {
			return p.dataType
		}
	}
	return model.DataTypeUnknown
}

// NormalizeTimestamp converts a fractional unix epoch into a UTC calendar time
// with millisecond precision. Negative and non-finite values are rejected.
func NormalizeTimestamp(epochSeconds float64) (time.Time, error) {
	if math.IsNaN(epochSeconds) || math.IsInf(epochSeconds, 0) || epochSeconds < 0 {
		return time.Time{}, ErrInvalidTimestamp
	}
	secs := math.Floor(epochSeconds)
	millis := math.Round((epochSeconds - secs) * 1000)
	return time.Unix(int64(secs), int64(millis)*int64(time.Millisecond)).UTC(), nil
}
