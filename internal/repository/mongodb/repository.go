package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
)

const (
	ownersCollection      = "owners"
	rentalsCollection     = "rentals"
	occurrencesCollection = "occurrences"
	settingsCollection    = "settings"

	pixSettingsID = "pix_config"
)

// MongoDBRepository implements repository.Store on MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Store = (*MongoDBRepository)(nil)

type pixSettings struct {
	ID     string           `bson:"_id"`
	Config models.PixConfig `bson:"config"`
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri).SetRegistry(NewRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (r *MongoDBRepository) SaveOwner(ctx context.Context, owner models.Owner) error {
	return r.upsert(ctx, ownersCollection, owner.ID, owner)
}

func (r *MongoDBRepository) GetOwner(ctx context.Context, id string) (models.Owner, error) {
	var owner models.Owner
	err := r.findOne(ctx, ownersCollection, id, &owner)
	return owner, err
}

func (r *MongoDBRepository) ListOwners(ctx context.Context) ([]models.Owner, error) {
	owners := make([]models.Owner, 0)
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := r.findAll(ctx, ownersCollection, bson.M{}, &owners, opts); err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *MongoDBRepository) DeleteOwner(ctx context.Context, id string) error {
	return r.deleteOne(ctx, ownersCollection, id)
}

func (r *MongoDBRepository) SaveRental(ctx context.Context, rental models.Rental) error {
	return r.upsert(ctx, rentalsCollection, rental.ID, rental)
}

func (r *MongoDBRepository) GetRental(ctx context.Context, id string) (models.Rental, error) {
	var rental models.Rental
	err := r.findOne(ctx, rentalsCollection, id, &rental)
	return rental, err
}

func (r *MongoDBRepository) ListRentals(ctx context.Context, filter models.RentalFilter) ([]models.Rental, error) {
	rentals := make([]models.Rental, 0)
	if err := r.findAll(ctx, rentalsCollection, rentalQuery(filter), &rentals); err != nil {
		return nil, err
	}
	models.SortByRef(rentals)
	return rentals, nil
}

func (r *MongoDBRepository) DeleteRental(ctx context.Context, id string) error {
	return r.deleteOne(ctx, rentalsCollection, id)
}

func (r *MongoDBRepository) DeleteRentals(ctx context.Context, filter models.RentalFilter) (int64, error) {
	res, err := r.db.Collection(rentalsCollection).DeleteMany(ctx, rentalQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to delete rentals: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoDBRepository) SaveOccurrence(ctx context.Context, occurrence models.Occurrence) error {
	return r.upsert(ctx, occurrencesCollection, occurrence.ID, occurrence)
}

func (r *MongoDBRepository) GetOccurrence(ctx context.Context, id string) (models.Occurrence, error) {
	var occ models.Occurrence
	err := r.findOne(ctx, occurrencesCollection, id, &occ)
	return occ, err
}

func (r *MongoDBRepository) ListOccurrences(ctx context.Context) ([]models.Occurrence, error) {
	occurrences := make([]models.Occurrence, 0)
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if err := r.findAll(ctx, occurrencesCollection, bson.M{}, &occurrences, opts); err != nil {
		return nil, err
	}
	return occurrences, nil
}

func (r *MongoDBRepository) GetPixConfig(ctx context.Context) (*models.PixConfig, error) {
	var doc pixSettings
	err := r.findOne(ctx, settingsCollection, pixSettingsID, &doc)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc.Config, nil
}

func (r *MongoDBRepository) SavePixConfig(ctx context.Context, cfg models.PixConfig) error {
	return r.upsert(ctx, settingsCollection, pixSettingsID, pixSettings{ID: pixSettingsID, Config: cfg})
}

// ReplaceAll clears every collection and inserts the snapshot contents. It is not
// transactional; a failure midway leaves a partial state that a second restore repairs.
func (r *MongoDBRepository) ReplaceAll(ctx context.Context, snapshot models.Snapshot) error {
	for _, name := range []string{ownersCollection, rentalsCollection, occurrencesCollection, settingsCollection} {
		if _, err := r.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}

	if err := r.insertMany(ctx, ownersCollection, toDocs(snapshot.Owners)); err != nil {
		return err
	}
	if err := r.insertMany(ctx, rentalsCollection, toDocs(snapshot.Rentals)); err != nil {
		return err
	}
	if err := r.insertMany(ctx, occurrencesCollection, toDocs(snapshot.Occurrences)); err != nil {
		return err
	}
	if snapshot.PixConfig != nil {
		return r.SavePixConfig(ctx, *snapshot.PixConfig)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) upsert(ctx context.Context, collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("failed to save %s %s: %w", collection, id, err)
	}
	return nil
}

func (r *MongoDBRepository) findOne(ctx context.Context, collection, id string, out any) error {
	err := r.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", collection, id, err)
	}
	return nil
}

func (r *MongoDBRepository) findAll(ctx context.Context, collection string, filter any, out any, opts ...*options.FindOptions) error {
	cursor, err := r.db.Collection(collection).Find(ctx, filter, opts...)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (r *MongoDBRepository) deleteOne(ctx context.Context, collection, id string) error {
	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoDBRepository) insertMany(ctx context.Context, collection string, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := r.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert %s: %w", collection, err)
	}
	return nil
}

func rentalQuery(filter models.RentalFilter) bson.M {
	q := bson.M{}
	if filter.Month != "" {
		q["month"] = filter.Month
	}
	if filter.Year != 0 {
		q["year"] = filter.Year
	}
	if filter.OwnerID != "" {
		q["owner_id"] = filter.OwnerID
	}
	return q
}

func toDocs[T any](items []T) []any {
	docs := make([]any, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	return docs
}
