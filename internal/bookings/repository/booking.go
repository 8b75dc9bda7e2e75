package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "slotly/internal/bookings/errors"
	"slotly/pkg/config"
	"slotly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	FindSlot(ctx context.Context, hostEmail, date, slot string) (*model.Booking, error)
	Create(ctx context.Context, booking *model.Booking) error
	UpdateOwned(ctx context.Context, id, hostEmail string, update *model.BookingUpdate) (int64, error)
	DeleteOwned(ctx context.Context, id, hostEmail string) (int64, error)
	FindByHost(ctx context.Context, hostEmail string) ([]*model.Booking, error)
	FindByGuest(ctx context.Context, guestEmail string) ([]*model.Booking, error)
	FindByParticipant(ctx context.Context, email string) ([]*model.Booking, error)
	FindByParticipantOnDates(ctx context.Context, email string, dates []string) ([]*model.Booking, error)
}

type mongoBookingRepository struct {
	collection   *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return NewBookingRepository(db.Collection(CollectionName), cfg.ReadTimeout, cfg.WriteTimeout)
}

func NewBookingRepository(collection *mongo.Collection, readTimeout, writeTimeout time.Duration) BookingRepository {
	return &mongoBookingRepository{
		collection:   collection,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// withTimeout bounds a single store call without extending a tighter caller deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func participantFilter(email string) bson.M {
	return bson.M{
		"$or": []bson.M{
			{"guest_email": email},
			{"host_email": email},
		},
	}
}

func ownedFilter(id, hostEmail string) (bson.M, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return bson.M{"_id": objectID, "host_email": hostEmail}, nil
}

func (r *mongoBookingRepository) FindSlot(ctx context.Context, hostEmail, date, slot string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	filter := bson.M{
		"host_email": hostEmail,
		"date":       date,
		"slot":       slot,
	}

	var booking model.Booking
	if err := r.collection.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking slot: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", bookingserrors.ErrSlotTaken, err)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) UpdateOwned(ctx context.Context, id, hostEmail string, update *model.BookingUpdate) (int64, error) {
	filter, err := ownedFilter(id, hostEmail)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	set := bson.M{
		"date": update.Date,
		"slot": update.Slot,
		"note": update.Note,
	}
	if update.GuestName != "" {
		set["guest_name"] = update.GuestName
	}
	if update.HostName != "" {
		set["host_name"] = update.HostName
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: %v", bookingserrors.ErrSlotTaken, err)
		}
		return 0, fmt.Errorf("failed to update booking: %w", err)
	}
	return result.MatchedCount, nil
}

func (r *mongoBookingRepository) DeleteOwned(ctx context.Context, id, hostEmail string) (int64, error) {
	filter, err := ownedFilter(id, hostEmail)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete booking: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoBookingRepository) FindByHost(ctx context.Context, hostEmail string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"host_email": hostEmail})
}

func (r *mongoBookingRepository) FindByGuest(ctx context.Context, guestEmail string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"guest_email": guestEmail})
}

func (r *mongoBookingRepository) FindByParticipant(ctx context.Context, email string) ([]*model.Booking, error) {
	return r.find(ctx, participantFilter(email))
}

func (r *mongoBookingRepository) FindByParticipantOnDates(ctx context.Context, email string, dates []string) ([]*model.Booking, error) {
	filter := participantFilter(email)
	filter["date"] = bson.M{"$in": dates}
	return r.find(ctx, filter)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
