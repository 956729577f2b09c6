package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DataType string

func (d DataType) String() string {
	return string(d)
}

const (
	DataTypeTemperature DataType = "temperature"
	DataTypeHumidity    DataType = "humidity"
	DataTypeCO2         DataType = "co2"
	DataTypeSunlight    DataType = "sunlight"
	DataTypeUnknown     DataType = "unknown"
)

// RawReading is the wire shape published by the sensors. It is validated and
// normalized before anything is persisted.
type RawReading struct {
	SensorID  string  `json:"sensor_id"`
	Value     float64 `json:"value"`
	Timestamp float64 `json:"timestamp"` // unix epoch seconds, fractional
}

// Measurement is the persisted record derived from a RawReading. It is written
// exactly once and never mutated afterwards.
type Measurement struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DataType        DataType           `bson:"data_type" json:"dataType"`
	SensorID        string             `bson:"sensor_id" json:"sensorId"`
	Value           float64            `bson:"value" json:"value"`
	SourceTimestamp time.Time          `bson:"source_timestamp" json:"sourceTimestamp"` // the sensor's claimed time
	SavedAt         time.Time          `bson:"timestamp" json:"savedAt"`                // local receipt time, may diverge from the above
}

type Measurements []Measurement
