package rewards

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type creditor interface {
	Credit(ctx context.Context, walletAddress string) (string, error)
}

type job struct {
	sensorID      string
	walletAddress string
}

// Dispatcher credits wallets asynchronously to ingestion. Jobs go through a
// bounded queue worked by a fixed pool, a full queue drops the credit with a
// warning rather than blocking the pipeline.
type Dispatcher struct {
	ledger  creditor
	jobs    chan job
	workers int
	logger  *zap.Logger
}

func NewDispatcher(ledger creditor, queueSize, workers int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		ledger:  ledger,
		jobs:    make(chan job, queueSize),
		workers: workers,
		logger:  zap.L(),
	}
}

// Dispatch enqueues one credit. It never blocks.
func (d *Dispatcher) Dispatch(sensorID, walletAddress string) {
	select {
	case d.jobs <- job{sensorID: sensorID, walletAddress: walletAddress}:
	default:
		d.logger.Warn("reward queue full, dropping credit",
			zap.String("sensor_id", sensorID),
			zap.String("wallet", walletAddress))
	}
}

// Run works the queue until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			d.credit(ctx, j)
		}
	}
}

func (d *Dispatcher) credit(ctx context.Context, j job) {
	txHash, err := d.ledger.Credit(ctx, j.walletAddress)
	if err != nil {
		// logged and dropped, a reward failure never touches the persisted
		// measurement.
		d.logger.Error("reward dispatch failed",
			zap.String("sensor_id", j.sensorID),
			zap.String("wallet", j.walletAddress),
			zap.Error(err))
		return
	}
	d.logger.Debug("reward credited",
		zap.String("sensor_id", j.sensorID),
		zap.String("tx", txHash))
}
