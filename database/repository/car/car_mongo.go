package carRepo

import (
	"context"
	"fmt"
	"time"

	"rentx/database"
	"rentx/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CarRepository defines the data access the booking core needs from the
// car catalogue: rate lookup and the availability flag.
type CarRepository interface {
	GetByID(ctx context.Context, id string) (*models.Car, error)
	GetAvailable(ctx context.Context) ([]models.Car, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

// MongoCarRepo implements CarRepository using MongoDB.
type MongoCarRepo struct {
	coll *mongo.Collection
}

// NewMongoCarRepo creates a new instance of CarRepository using MongoDB.
func NewMongoCarRepo() CarRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("cars")
	repo := &MongoCarRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create car indexes: %v\n", err)
	}
	return repo
}

func (r *MongoCarRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "available", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoCarRepo) GetByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&car); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch car %s: %w", id, err)
	}
	return &car, nil
}

func (r *MongoCarRepo) GetAvailable(ctx context.Context) ([]models.Car, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"available": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer cursor.Close(ctx)

	var cars []models.Car
	for cursor.Next(ctx) {
		var c models.Car
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode car: %w", err)
		}
		cars = append(cars, c)
	}
	return cars, nil
}

func (r *MongoCarRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	update := bson.M{"$set": bson.M{"available": available, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update car %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("car %s not found", id)
	}
	return nil
}
