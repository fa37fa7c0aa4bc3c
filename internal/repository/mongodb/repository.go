package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/racane123/schoolboard/internal/domain/models"
)

const snapshotsCollection = "report_snapshots"

// ErrSnapshotNotFound is returned when a class has no stored snapshot.
var ErrSnapshotNotFound = models.ErrSnapshotNotFound

// Repository defines the interface for snapshot storage.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error
	LatestSnapshot(ctx context.Context, classID string) (models.ReportSnapshot, error)
}

var _ Repository = (*MongoDBRepository)(nil)

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository and ensures the
// lookup index on (class_id, day).
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotsCollection,
	}

	_, err = repo.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "class_id", Value: 1}, {Key: "day", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveSnapshot saves a report snapshot to the database.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error {
	_, err := r.collection().InsertOne(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot for class %s: %w", snapshot.ClassID, err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot stored for a class.
func (r *MongoDBRepository) LatestSnapshot(ctx context.Context, classID string) (models.ReportSnapshot, error) {
	var snapshot models.ReportSnapshot
	opts := options.FindOne().SetSort(bson.D{{Key: "day", Value: -1}, {Key: "created_at", Value: -1}})

	err := r.collection().FindOne(ctx, bson.M{"class_id": classID}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ReportSnapshot{}, fmt.Errorf("class %s: %w", classID, ErrSnapshotNotFound)
	}
	if err != nil {
		return models.ReportSnapshot{}, fmt.Errorf("failed to load snapshot for class %s: %w", classID, err)
	}
	return snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
