package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/sensor-rewards/internal/pkg/model"
	"github.com/anicoll/sensor-rewards/internal/pkg/wallet"
)

type fakeStore struct {
	inserted []*model.Measurement
	err      error
}

func (f *fakeStore) InsertMeasurement(_ context.Context, m *model.Measurement) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, m)
	return nil
}

type fakeDispatcher struct {
	dispatched []string
}

func (f *fakeDispatcher) Dispatch(sensorID, _ string) {
	f.dispatched = append(f.dispatched, sensorID)
}

func newTestPipeline(store *fakeStore, dispatcher *fakeDispatcher) *Pipeline {
	wallets := wallet.NewDirectory(map[string]string{
		"sensor-tmp-1": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	p := New(store, wallets, dispatcher, time.Second)
	p.now = func() time.Time {
		return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	}
	return p
}

func TestIngest_PersistsAndRewards(t *testing.T) {
	store := &fakeStore{}
	dispatcher := &fakeDispatcher{}
	p := newTestPipeline(store, dispatcher)

	p.ingest(context.Background(), "sensors/data", []byte(`{"sensor_id":"sensor-tmp-1","value":21.5,"timestamp":1700000000.250}`))

	require.Len(t, store.inserted, 1)
	m := store.inserted[0]
	assert.Equal(t, model.DataTypeTemperature, m.DataType)
	assert.Equal(t, "sensor-tmp-1", m.SensorID)
	assert.Equal(t, 21.5, m.Value)
	assert.Equal(t, time.Date(2023, time.November, 14, 22, 13, 20, 250_000_000, time.UTC), m.SourceTimestamp)
	assert.Equal(t, time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC), m.SavedAt)

	assert.Equal(t, []string{"sensor-tmp-1"}, dispatcher.dispatched)
}

func TestIngest_NoWalletStillPersists(t *testing.T) {
	store := &fakeStore{}
	dispatcher := &fakeDispatcher{}
	p := newTestPipeline(store, dispatcher)

	p.ingest(context.Background(), "sensors/data", []byte(`{"sensor_id":"sensor-xyz-9","value":1,"timestamp":1700000000}`))

	require.Len(t, store.inserted, 1)
	assert.Equal(t, model.DataTypeUnknown, store.inserted[0].DataType)
	assert.Empty(t, dispatcher.dispatched)
}

func TestIngest_MalformedPayloadDropped(t *testing.T) {
	store := &fakeStore{}
	dispatcher := &fakeDispatcher{}
	p := newTestPipeline(store, dispatcher)

	p.ingest(context.Background(), "sensors/data", []byte(`not-json`))

	assert.Empty(t, store.inserted)
	assert.Empty(t, dispatcher.dispatched)
}

func TestIngest_InvalidTimestampDropped(t *testing.T) {
	store := &fakeStore{}
	dispatcher := &fakeDispatcher{}
	p := newTestPipeline(store, dispatcher)

	p.ingest(context.Background(), "sensors/data", []byte(`{"sensor_id":"sensor-tmp-1","value":21.5,"timestamp":-5}`))

	assert.Empty(t, store.inserted)
	assert.Empty(t, dispatcher.dispatched)
}

func TestIngest_PersistenceFailureSkipsReward(t *testing.T) {
	store := &fakeStore{err: errors.New("store down")}
	dispatcher := &fakeDispatcher{}
	p := newTestPipeline(store, dispatcher)

	p.ingest(context.Background(), "sensors/data", []byte(`{"sensor_id":"sensor-tmp-1","value":21.5,"timestamp":1700000000}`))

	assert.Empty(t, store.inserted)
	assert.Empty(t, dispatcher.dispatched)
}
