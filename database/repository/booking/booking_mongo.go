package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"bookly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a BookingRepository over the calendar_bookings collection.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{coll: db.Collection("calendar_bookings")}
}

func overlapFilter(start, end time.Time) bson.M {
	return bson.M{
		"start_time": bson.M{"$lt": end.UTC()},
		"end_time":   bson.M{"$gt": start.UTC()},
	}
}

func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := *booking
	doc.StartTime = doc.StartTime.UTC()
	doc.EndTime = doc.EndTime.UTC()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) ExistsOverlapping(ctx context.Context, start, end time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, overlapFilter(start, end), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking overlapping bookings: %w", err)
	}
	return n > 0, nil
}

func (r *mongoBookingRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.coll.Find(ctx, overlapFilter(from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
