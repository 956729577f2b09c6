package mqtt

import (
	"errors"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/sensor-rewards/internal/pkg/config"
)

type service struct {
	client paho_mqtt.Client
	topic  string
	logger *zap.Logger
}

// New builds a subscribing client. The handler is re-attached on every
// (re)connect so a broker restart does not silently stop ingestion.
func New(cfg *config.MqttConfig, handler paho_mqtt.MessageHandler) *service {
	s := &service{
		topic:  cfg.Topic,
		logger: zap.L(),
	}

	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(client paho_mqtt.Client) {
			s.logger.Info("connected to broker, subscribing", zap.String("topic", s.topic))
			token := client.Subscribe(s.topic, 0, handler)
			if !token.WaitTimeout(time.Second * 10) {
				s.logger.Error("subscribe did not complete in time", zap.String("topic", s.topic))
				return
			}
			if err := token.Error(); err != nil {
				s.logger.Error("subscribe failed", zap.String("topic", s.topic), zap.Error(err))
			}
		})

	s.client = paho_mqtt.NewClient(opts)
	return s
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(time.Second * 5)
	if res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return errors.New("unable to connect in time")
}

func (s *service) Disconnect() {
	s.client.Disconnect(250)
}
