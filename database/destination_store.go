package database

import (
	"context"
	"errors"
	"fmt"

	"travelmate/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DestinationStore 旅遊指南條目的存取
type DestinationStore struct {
	coll *mongo.Collection
}

func NewDestinationStore(db *MongoDB) *DestinationStore {
	return &DestinationStore{coll: db.Collection(destinationsCollection)}
}

func (s *DestinationStore) Insert(ctx context.Context, d *models.Destination) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert destination: %w", err)
	}
	return nil
}

func (s *DestinationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Destination, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var d models.Destination
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find destination %s: %w", id.Hex(), err)
	}
	return &d, nil
}

func (s *DestinationStore) List(ctx context.Context, f models.DestinationFilter) ([]models.Destination, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, DestinationListFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Destination{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode destinations: %w", err)
	}
	return out, nil
}

func (s *DestinationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete destination %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DestinationListFilter builds the query for GET /destinations.
func DestinationListFilter(f models.DestinationFilter) bson.M {
	filter := bson.M{}
	if f.Query != "" {
		q := containsIgnoreCase(f.Query)
		filter["$or"] = bson.A{
			bson.M{"name": q},
			bson.M{"details": q},
			bson.M{"tags": bson.M{"$in": bson.A{q}}},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Continent != "" {
		filter["continent"] = f.Continent
	}
	if f.Expense != "" {
		filter["expense"] = f.Expense
	}
	return filter
}
