package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anicoll/sensor-rewards/internal/pkg/model"
)

// InsertMeasurement writes a single measurement and backfills the
// store-assigned id on success.
func (s *Store) InsertMeasurement(ctx context.Context, m *model.Measurement) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.collection.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("insert measurement: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}
