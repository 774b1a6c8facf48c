package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

const (
	herdsCollection   = "herds"
	goalsCollection   = "daily_goals"
	recordsCollection = "daily_records"
)

// MongoDBRepository implements repository.Repository on MongoDB. Multi-document writes
// run inside transactions, so the server must be a replica set (Atlas clusters are).
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ repository.Repository = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects, verifies the connection and ensures the day indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "day", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, name := range []string{goalsCollection, recordsCollection} {
		if _, err := r.db.Collection(name).Indexes().CreateOne(ctx, unique); err != nil {
			return fmt.Errorf("create day index on %s: %w", name, err)
		}
	}
	return nil
}

func (r *MongoDBRepository) ListHerds(ctx context.Context) ([]models.Herd, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.db.Collection(herdsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list herds: %w", err)
	}
	var herds []models.Herd
	if err := cur.All(ctx, &herds); err != nil {
		return nil, fmt.Errorf("failed to decode herds: %w", err)
	}
	return herds, nil
}

func (r *MongoDBRepository) InsertHerd(ctx context.Context, herd models.Herd) error {
	if _, err := r.db.Collection(herdsCollection).InsertOne(ctx, herd); err != nil {
		return fmt.Errorf("failed to insert herd: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) UpdateHerd(ctx context.Context, herd models.Herd) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: herd.Name},
		{Key: "cows", Value: herd.Cows},
		{Key: "chickens", Value: herd.Chickens},
		{Key: "sheep", Value: herd.Sheep},
		{Key: "goats", Value: herd.Goats},
	}}}
	res, err := r.db.Collection(herdsCollection).UpdateByID(ctx, herd.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update herd %s: %w", herd.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update herd %s: %w", herd.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoDBRepository) DeleteHerd(ctx context.Context, id string) error {
	res, err := r.db.Collection(herdsCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete herd %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete herd %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoDBRepository) GetGoal(ctx context.Context, day string) (models.DailyGoal, error) {
	var goal models.DailyGoal
	err := r.db.Collection(goalsCollection).FindOne(ctx, bson.D{{Key: "day", Value: day}}).Decode(&goal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DailyGoal{}, repository.ErrNotFound
	}
	if err != nil {
		return models.DailyGoal{}, fmt.Errorf("failed to get goal %s: %w", day, err)
	}
	return goal, nil
}

func (r *MongoDBRepository) UpsertGoal(ctx context.Context, goal models.DailyGoal) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.db.Collection(goalsCollection).ReplaceOne(ctx, bson.D{{Key: "day", Value: goal.Day}}, goal, opts); err != nil {
		return fmt.Errorf("failed to upsert goal %s: %w", goal.Day, err)
	}
	return nil
}

func (r *MongoDBRepository) ListGoals(ctx context.Context, from, to string) ([]models.DailyGoal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}})
	cur, err := r.db.Collection(goalsCollection).Find(ctx, dayRange(from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	var goals []models.DailyGoal
	if err := cur.All(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}
	return goals, nil
}

func (r *MongoDBRepository) GetRecord(ctx context.Context, day string) (models.DailyRecord, error) {
	var record models.DailyRecord
	err := r.db.Collection(recordsCollection).FindOne(ctx, bson.D{{Key: "day", Value: day}}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DailyRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return models.DailyRecord{}, fmt.Errorf("failed to get record %s: %w", day, err)
	}
	return record, nil
}

func (r *MongoDBRepository) UpsertRecord(ctx context.Context, record models.DailyRecord) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.db.Collection(recordsCollection).ReplaceOne(ctx, bson.D{{Key: "day", Value: record.Day}}, record, opts); err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", record.Day, err)
	}
	return nil
}

func (r *MongoDBRepository) ListRecords(ctx context.Context, from, to string) ([]models.DailyRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: -1}})
	cur, err := r.db.Collection(recordsCollection).Find(ctx, dayRange(from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	var records []models.DailyRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

func (r *MongoDBRepository) SaveCompletions(ctx context.Context, records []models.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}
	coll := r.db.Collection(recordsCollection)
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, rec := range records {
			update := bson.D{{Key: "$set", Value: bson.D{{Key: "is_completed", Value: rec.IsCompleted}}}}
			res, err := coll.UpdateOne(sc, bson.D{{Key: "day", Value: rec.Day}}, update)
			if err != nil {
				return fmt.Errorf("failed to save completion %s: %w", rec.Day, err)
			}
			if res.MatchedCount == 0 {
				return fmt.Errorf("save completion %s: %w", rec.Day, repository.ErrNotFound)
			}
		}
		return nil
	})
}

func (r *MongoDBRepository) Reset(ctx context.Context) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, name := range []string{herdsCollection, goalsCollection, recordsCollection} {
			if _, err := r.db.Collection(name).DeleteMany(sc, bson.D{}); err != nil {
				return fmt.Errorf("failed to reset %s: %w", name, err)
			}
		}
		return nil
	})
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		r.logger.Error("mongodb transaction aborted", zap.Error(err))
	}
	return err
}

func dayRange(from, to string) bson.D {
	return bson.D{{Key: "day", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lt", Value: to}}}}
}
