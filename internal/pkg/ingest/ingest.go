package ingest

import (
	"context"
	"encoding/json"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/sensor-rewards/internal/pkg/classifier"
	"github.com/anicoll/sensor-rewards/internal/pkg/model"
	"github.com/anicoll/sensor-rewards/internal/pkg/wallet"
)

type inserter interface {
	InsertMeasurement(ctx context.Context, m *model.Measurement) error
}

type dispatcher interface {
	Dispatch(sensorID, walletAddress string)
}

// Pipeline turns one raw broker message into one persisted measurement and, if
// a wallet is configured, one queued reward credit. Every failure is terminal
// for that message only, the subscription keeps running regardless.
type Pipeline struct {
	store   inserter
	wallets *wallet.Directory
	rewards dispatcher
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func New(store inserter, wallets *wallet.Directory, rewards dispatcher, timeout time.Duration) *Pipeline {
	return &Pipeline{
		store:   store,
		wallets: wallets,
		rewards: rewards,
		logger:  zap.L(),
		timeout: timeout,
		now:     time.Now,
	}
}

// Handle is the broker message callback. It never propagates an error.
func (p *Pipeline) Handle(_ paho_mqtt.Client, msg paho_mqtt.Message) {
	p.ingest(context.Background(), msg.Topic(), msg.Payload())
}

func (p *Pipeline) ingest(ctx context.Context, topic string, payload []byte) {
	var raw model.RawReading
	if err := json.Unmarshal(payload, &raw); err != nil {
		p.logger.Error("decode error, dropping message",
			zap.String("topic", topic),
			zap.Error(err))
		return
	}

	sourceTimestamp, err := classifier.NormalizeTimestamp(raw.Timestamp)
	if err != nil {
		p.logger.Error("invalid timestamp, dropping message",
			zap.String("sensor_id", raw.SensorID),
			zap.Float64("timestamp", raw.Timestamp),
			zap.Error(err))
		return
	}

	measurement := &model.Measurement{
		DataType:        classifier.Classify(raw.SensorID),
		SensorID:        raw.SensorID,
		Value:           raw.Value,
		SourceTimestamp: sourceTimestamp,
		SavedAt:         p.now().UTC(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.store.InsertMeasurement(insertCtx, measurement); err != nil {
		// at-most-once, a failed write is not retried.
		p.logger.Error("persistence error, dropping message",
			zap.String("sensor_id", raw.SensorID),
			zap.Error(err))
		return
	}
	p.logger.Debug("measurement persisted",
		zap.String("sensor_id", measurement.SensorID),
		zap.String("data_type", measurement.DataType.String()))

	address, ok := p.wallets.Lookup(raw.SensorID)
	if !ok {
		p.logger.Info("no wallet configured for sensor, reward skipped",
			zap.String("sensor_id", raw.SensorID))
		return
	}
	p.rewards.Dispatch(raw.SensorID, address)
}
