package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anicoll/sensor-rewards/internal/pkg/model"
)

// Query describes one measurements read: conjunctive filters, a sort spec and
// offset pagination. SortBy is already a store field name, callers translate
// their external names before building a Query.
type Query struct {
	DataType  string
	SensorIDs []string
	SortBy    string
	Ascending bool
	Page      int64
	PageSize  int64
}

func (q Query) filter() bson.M {
	filter := bson.M{}
	if q.DataType != "" {
		filter["data_type"] = q.DataType
	}
	if len(q.SensorIDs) > 0 {
		filter["sensor_id"] = bson.M{"$in": q.SensorIDs}
	}
	return filter
}

func (q Query) findOptions() *options.FindOptions {
	direction := -1
	if q.Ascending {
		direction = 1
	}
	skip := (q.Page - 1) * q.PageSize
	if skip < 0 {
		skip = 0
	}
	return options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: direction}}).
		SetSkip(skip).
		SetLimit(q.PageSize)
}

func (s *Store) FindMeasurements(ctx context.Context, q Query) (model.Measurements, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, q.filter(), q.findOptions())
	if err != nil {
		return nil, fmt.Errorf("find measurements: %w", err)
	}
	defer cursor.Close(ctx)

	measurements := model.Measurements{}
	if err := cursor.All(ctx, &measurements); err != nil {
		return nil, fmt.Errorf("decode measurements: %w", err)
	}
	return measurements, nil
}
