package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestQuery_Filter(t *testing.T) {
	tests := map[string]struct {
		query    Query
		expected bson.M
	}{
		"no filters matches everything": {
			query:    Query{},
			expected: bson.M{},
		},
		"data type only": {
			query:    Query{DataType: "temperature"},
			expected: bson.M{"data_type": "temperature"},
		},
		"sensors only": {
			query:    Query{SensorIDs: []string{"sensor-tmp-1", "sensor-tmp-2"}},
			expected: bson.M{"sensor_id": bson.M{"$in": []string{"sensor-tmp-1", "sensor-tmp-2"}}},
		},
		"filters combine conjunctively": {
			query: Query{DataType: "co2", SensorIDs: []string{"sensor-co2-1"}},
			expected: bson.M{
				"data_type": "co2",
				"sensor_id": bson.M{"$in": []string{"sensor-co2-1"}},
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.query.filter())
		})
	}
}

func TestQuery_FindOptions(t *testing.T) {
	opts := Query{SortBy: "source_timestamp", Ascending: true, Page: 2, PageSize: 10}.findOptions()

	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(10), *opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "source_timestamp", Value: 1}}, opts.Sort)
}

func TestQuery_FindOptionsDescending(t *testing.T) {
	opts := Query{SortBy: "timestamp", Page: 1, PageSize: 100}.findOptions()

	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(0), *opts.Skip)
	assert.Equal(t, bson.D{{Key: "timestamp", Value: -1}}, opts.Sort)
}
