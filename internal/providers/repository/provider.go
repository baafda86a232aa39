package repository

import (
	"context"
	"errors"
	"fmt"
	providerserrors "slotbook/internal/providers/errors"
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
	CollectionName = "Providers"
)

type mongoProviderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ProviderRepository interface {
	Create(ctx context.Context, p *model.Provider) error
	FindByID(ctx context.Context, id string) (*model.Provider, error)
	FindAll(ctx context.Context, category model.Category, limit int, offset int64) ([]*model.Provider, error)
	Count(ctx context.Context, category model.Category) (int64, error)
	Update(ctx context.Context, id string, update *model.ProviderUpdate) error

	SetWorkingHours(ctx context.Context, id string, hours []model.DayHours) error
	AddException(ctx context.Context, id string, exc model.AvailabilityException) error
	RemoveException(ctx context.Context, id string, date time.Time) (bool, error)
	AddService(ctx context.Context, id string, svc model.Service) error
	UpdateService(ctx context.Context, id string, svc model.Service) error
	UpdateRating(ctx context.Context, id string, rating float64, total int64) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoProviderRepository(cfg *config.Config) ProviderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoProviderRepository) Create(ctx context.Context, p *model.Provider) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *mongoProviderRepository) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var p model.Provider
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err != nil {
		if mongotx.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", providerserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}
	return &p, nil
}

func categoryFilter(category model.Category) bson.M {
	if category == "" {
		return bson.M{}
	}
	return bson.M{"category": category}
}

func (r *mongoProviderRepository) FindAll(ctx context.Context, category model.Category, limit int, offset int64) ([]*model.Provider, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "business_name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, categoryFilter(category), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer cursor.Close(ctx)

	providers := []*model.Provider{}
	if err = cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}

	return providers, nil
}

func (r *mongoProviderRepository) Count(ctx context.Context, category model.Category) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, categoryFilter(category))
	if err != nil {
		return 0, fmt.Errorf("failed to count providers: %w", err)
	}
	return count, nil
}

func (r *mongoProviderRepository) updateOne(ctx context.Context, filter bson.M, set bson.M, op string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return providerserrors.ErrNotFound
	}
	return nil
}

func (r *mongoProviderRepository) Update(ctx context.Context, id string, update *model.ProviderUpdate) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	if update.BusinessName != "" {
		set["business_name"] = update.BusinessName
	}
	if update.Category != "" {
		set["category"] = update.Category
	}
	if update.TimeZone != "" {
		set["time_zone"] = update.TimeZone
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, set, "update provider")
}

func (r *mongoProviderRepository) SetWorkingHours(ctx context.Context, id string, hours []model.DayHours) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, bson.M{"working_hours": hours}, "set working hours")
}

func (r *mongoProviderRepository) AddException(ctx context.Context, id string, exc model.AvailabilityException) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{"availability_exceptions": bson.M{
			"$each": bson.A{exc},
			"$sort": bson.M{"date": 1},
		}},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to add availability exception: %w", err)
	}
	if result.MatchedCount == 0 {
		return providerserrors.ErrNotFound
	}
	return nil
}

// RemoveException pulls the exception stored for date and reports whether one existed.
func (r *mongoProviderRepository) RemoveException(ctx context.Context, id string, date time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	update := bson.M{
		"$pull": bson.M{"availability_exceptions": bson.M{"date": date}},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid, "availability_exceptions.date": date}, update)
	if err != nil {
		return false, fmt.Errorf("failed to remove availability exception: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoProviderRepository) AddService(ctx context.Context, id string, svc model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{"services": svc},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to add service: %w", err)
	}
	if result.MatchedCount == 0 {
		return providerserrors.ErrNotFound
	}
	return nil
}

func (r *mongoProviderRepository) UpdateService(ctx context.Context, id string, svc model.Service) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	err = r.updateOne(ctx, bson.M{"_id": oid, "services.id": svc.ID}, bson.M{"services.$": svc}, "update service")
	if errors.Is(err, providerserrors.ErrNotFound) {
		return providerserrors.ErrServiceNotFound
	}
	return err
}

// UpdateRating overwrites the derived rating summary. Only the rating
// aggregator calls this.
func (r *mongoProviderRepository) UpdateRating(ctx context.Context, id string, rating float64, total int64) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, bson.M{"rating": rating, "total_ratings": total}, "update provider rating")
}

func (r *mongoProviderRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
