package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	MqttCfg   *MqttConfig
	StoreCfg  *StoreConfig
	LedgerCfg *LedgerConfig
	ServerCfg *ServerConfig
	RewardCfg *RewardConfig
	LogLevel  string
}

type MqttConfig struct {
	Host     string
	Username string
	Password string
	ClientID string
	Topic    string
}

type StoreConfig struct {
	URL        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type LedgerConfig struct {
	RPCURL          string
	ContractAddress string
	ChainID         int64
	CallTimeout     time.Duration
	SendTimeout     time.Duration
	// PrivateKey signs reward transactions and is never accepted as a flag.
	PrivateKey string `env:"ETH_PRIVATE_KEY"`
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RewardConfig struct {
	QueueSize        int
	Workers          int
	SnapshotSchedule string
}

// ApplyEnv fills in the secret values that only travel via environment.
func ApplyEnv(cfg *Config) error {
	return env.Parse(cfg.LedgerCfg)
}
