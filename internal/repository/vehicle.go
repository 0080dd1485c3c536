package repository

import (
	"context"
	"errors"
	"time"

	"enforcement-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleRepository is the persistence contract for vehicle records. The
// fine issuer and settlement processor depend on this interface so they can
// run against the in-memory implementation in tests.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindByRFIDTag(ctx context.Context, rfidTag string) (*models.Vehicle, error)
	FindByVehicleNo(ctx context.Context, vehicleNo string) (*models.Vehicle, error)
	FindByAccessToken(ctx context.Context, token string) (*models.Vehicle, error)
	FindAll(ctx context.Context) ([]*models.Vehicle, error)
	Update(ctx context.Context, id string, vehicle *models.Vehicle) (*models.Vehicle, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	// SetAccessTokenIfUnset assigns token to the vehicle only if no token is
	// set yet and returns the token that ended up on the record. Concurrent
	// callers all receive the same winning value.
	SetAccessTokenIfUnset(ctx context.Context, id string, token string) (string, error)
}

type MongoVehicleRepository struct {
	collection *mongo.Collection
}

func NewMongoVehicleRepository(db *mongo.Database) *MongoVehicleRepository {
	return &MongoVehicleRepository{
		collection: db.Collection("vehicles"),
	}
}

func (r *MongoVehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	vehicle.ID = result.InsertedID.(primitive.ObjectID)
	return vehicle, nil
}

func (r *MongoVehicleRepository) FindByID(ctx context.Context, id string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *MongoVehicleRepository) FindByRFIDTag(ctx context.Context, rfidTag string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.findOne(ctx, bson.M{"rfid_tag": rfidTag})
}

func (r *MongoVehicleRepository) FindByVehicleNo(ctx context.Context, vehicleNo string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.findOne(ctx, bson.M{"vehicle_no": vehicleNo})
}

func (r *MongoVehicleRepository) FindByAccessToken(ctx context.Context, token string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.findOne(ctx, bson.M{"access_token": token})
}

func (r *MongoVehicleRepository) findOne(ctx context.Context, filter bson.M) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, filter).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return &vehicle, nil
}

func (r *MongoVehicleRepository) FindAll(ctx context.Context) ([]*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []*models.Vehicle
	for cursor.Next(ctx) {
		var vehicle models.Vehicle
		if err := cursor.Decode(&vehicle); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &vehicle)
	}

	return vehicles, cursor.Err()
}

func (r *MongoVehicleRepository) Update(ctx context.Context, id string, vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	vehicle.UpdatedAt = time.Now()

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": vehicle},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Vehicle
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *MongoVehicleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

func (r *MongoVehicleRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoVehicleRepository) SetAccessTokenIfUnset(ctx context.Context, id string, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", errors.New("invalid vehicle ID")
	}

	// Conditional write: only a vehicle with no token yet matches, so exactly
	// one of any concurrent callers wins the assignment.
	filter := bson.M{
		"_id": objectID,
		"$or": []bson.M{
			{"access_token": bson.M{"$exists": false}},
			{"access_token": ""},
		},
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": bson.M{"access_token": token, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Vehicle
	err = result.Decode(&updated)
	if err == nil {
		return updated.AccessToken, nil
	}
	if err != mongo.ErrNoDocuments {
		return "", err
	}

	// Lost the race or the token was already set; read back the winner.
	existing, err := r.findOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return "", err
	}

	return existing.AccessToken, nil
}

// CreateIndexes creates the indexes the lookup paths rely on.
func (r *MongoVehicleRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "rfid_tag", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "vehicle_no", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "access_token", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
