package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCreditor struct {
	mu       sync.Mutex
	credited []string
	err      error
	done     chan struct{}
}

func (f *fakeCreditor) Credit(_ context.Context, walletAddress string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credited = append(f.credited, walletAddress)
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	if f.err != nil {
		return "", f.err
	}
	return "0xtxhash", nil
}

func (f *fakeCreditor) walletsCredited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.credited...)
}

func TestDispatcher_CreditsQueuedJobs(t *testing.T) {
	creditor := &fakeCreditor{done: make(chan struct{})}
	done := creditor.done
	d := NewDispatcher(creditor, 8, 1)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(runDone)
	}()

	d.Dispatch("sensor-tmp-1", "0xabc")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("credit was never attempted")
	}
	cancel()
	<-runDone

	assert.Equal(t, []string{"0xabc"}, creditor.walletsCredited())
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	creditor := &fakeCreditor{}
	d := NewDispatcher(creditor, 1, 1)
	// no workers running, the queue holds one job and the second is dropped.

	finished := make(chan struct{})
	go func() {
		d.Dispatch("sensor-tmp-1", "0xabc")
		d.Dispatch("sensor-tmp-2", "0xdef")
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a full queue")
	}
	assert.Empty(t, creditor.walletsCredited())
}

func TestDispatcher_CreditFailureIsSwallowed(t *testing.T) {
	creditor := &fakeCreditor{err: errors.New("ledger down"), done: make(chan struct{})}
	done := creditor.done
	d := NewDispatcher(creditor, 8, 2)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(runDone)
	}()

	d.Dispatch("sensor-tmp-1", "0xabc")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("credit was never attempted")
	}
	cancel()
	<-runDone
}
