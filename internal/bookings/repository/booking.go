package repository

import (
	"context"
	"fmt"
	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// Filter narrows booking listings. Zero fields are ignored; From is
// inclusive and To exclusive.
type Filter struct {
	CustomerID string
	ProviderID string
	From       time.Time
	To         time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	CountActiveAt(ctx context.Context, providerID string, dateTime time.Time) (int64, error)
	ActiveStartsBetween(ctx context.Context, providerID string, from, to time.Time) ([]time.Time, error)

	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error)
	AddReview(ctx context.Context, id string, rating int, review string) (*model.Booking, error)
	FindRatings(ctx context.Context, providerID string) ([]int, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *mongoBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	b.ID = ""
	ts := now()
	b.CreatedAt = ts
	b.UpdatedAt = ts
	b.DateTime = b.DateTime.UTC()
	b.Active = b.Status.IsActive()

	result, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: provider %s at %s", bookingserrors.ErrDuplicate, b.ProviderID, b.DateTime.Format(time.RFC3339))
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var b model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&b); err != nil {
		if mongotx.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &b, nil
}

func (f Filter) bson() bson.M {
	m := bson.M{}
	if f.CustomerID != "" {
		m["customer_id"] = f.CustomerID
	}
	if f.ProviderID != "" {
		m["provider_id"] = f.ProviderID
	}
	rng := bson.M{}
	if !f.From.IsZero() {
		rng["$gte"] = f.From.UTC()
	}
	if !f.To.IsZero() {
		rng["$lt"] = f.To.UTC()
	}
	if len(rng) > 0 {
		m["date_time"] = rng
	}
	return m
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "date_time", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.bson())
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func activeStatuses() bson.M {
	return bson.M{"$in": bson.A{model.Pending, model.Confirmed}}
}

// CountActiveAt counts pending or confirmed bookings holding exactly dateTime.
func (r *mongoBookingRepository) CountActiveAt(ctx context.Context, providerID string, dateTime time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"provider_id": providerID,
		"date_time":   dateTime.UTC(),
		"status":      activeStatuses(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) ActiveStartsBetween(ctx context.Context, providerID string, from, to time.Time) ([]time.Time, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"date_time":   bson.M{"$gte": from.UTC(), "$lt": to.UTC()},
		"status":      activeStatuses(),
	}
	opts := options.Find().SetProjection(bson.M{"date_time": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query occupied slots: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		DateTime time.Time `bson:"date_time"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode occupied slots: %w", err)
	}

	starts := make([]time.Time, len(rows))
	for i, row := range rows {
		starts[i] = row.DateTime
	}
	return starts, nil
}

// UpdateStatus moves a booking from -> to only if it is still in from.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"status":     to,
		"active":     to.IsActive(),
		"updated_at": now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b model.Booking
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid, "status": from}, update, opts).Decode(&b)
	if err != nil {
		if mongotx.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s expected %s", bookingserrors.ErrStatusConflict, id, from)
		}
		if mongotx.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrDuplicate, id)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &b, nil
}

// AddReview sets rating and review once, and only on completed bookings.
func (r *mongoBookingRepository) AddReview(ctx context.Context, id string, rating int, review string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ts := now()
	set := bson.M{
		"rating":      rating,
		"reviewed_at": ts,
		"updated_at":  ts,
	}
	if review != "" {
		set["review"] = review
	}
	filter := bson.M{
		"_id":    oid,
		"status": model.Completed,
		"rating": bson.M{"$exists": false},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&b)
	if err != nil {
		if mongotx.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrReviewConflict, id)
		}
		return nil, fmt.Errorf("failed to add review: %w", err)
	}
	return &b, nil
}

// FindRatings returns every rating left on the provider's bookings.
func (r *mongoBookingRepository) FindRatings(ctx context.Context, providerID string) ([]int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"status":      model.Completed,
		"rating":      bson.M{"$exists": true},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"rating": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Rating int `bson:"rating"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}

	ratings := make([]int, len(rows))
	for i, row := range rows {
		ratings[i] = row.Rating
	}
	return ratings, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
