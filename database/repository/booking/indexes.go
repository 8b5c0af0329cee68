// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the booking collection relies on. The
// unique window index turns a concurrent double booking into a duplicate key error.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "start_time", Value: 1}, {Key: "end_time", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_window"),
		},
		{
			Keys:    bson.D{{Key: "booker_email", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("booker_created_idx"),
		},
	}

	if _, err := db.Collection("calendar_bookings").Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
