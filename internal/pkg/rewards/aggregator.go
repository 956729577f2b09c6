package rewards

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/anicoll/sensor-rewards/internal/pkg/wallet"
)

type balanceReader interface {
	BalanceOf(ctx context.Context, walletAddress string) (*big.Int, error)
	Decimals(ctx context.Context) (uint8, error)
}

// ReportEntry is one wallet's scaled balance. Error is set instead of Balance
// when that wallet's ledger read failed.
type ReportEntry struct {
	Sensor  string  `json:"sensor"`
	Wallet  string  `json:"wallet"`
	Balance float64 `json:"balance"`
	Error   string  `json:"error,omitempty"`
}

// Aggregator reads every directory wallet's on-ledger balance. Failures are
// isolated per wallet, one unreadable balance does not abort the report.
type Aggregator struct {
	ledger  balanceReader
	wallets *wallet.Directory
	logger  *zap.Logger
}

func NewAggregator(ledger balanceReader, wallets *wallet.Directory) *Aggregator {
	return &Aggregator{
		ledger:  ledger,
		wallets: wallets,
		logger:  zap.L(),
	}
}

func (a *Aggregator) Report(ctx context.Context) ([]ReportEntry, error) {
	decimals, err := a.ledger.Decimals(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]ReportEntry, 0, a.wallets.Len())
	for _, sensorID := range a.wallets.SensorIDs() {
		address, _ := a.wallets.Lookup(sensorID)
		entry := ReportEntry{Sensor: sensorID, Wallet: address}

		balance, err := a.ledger.BalanceOf(ctx, address)
		if err != nil {
			a.logger.Error("balance read failed",
				zap.String("sensor_id", sensorID),
				zap.String("wallet", address),
				zap.Error(err))
			entry.Error = "balance unavailable"
		} else {
			entry.Balance = scale(balance, decimals)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// scale converts base units to the token's human unit.
func scale(raw *big.Int, decimals uint8) float64 {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), new(big.Float).SetInt(divisor)).Float64()
	return scaled
}
