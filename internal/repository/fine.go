package repository

import (
	"context"
	"time"

	"enforcement-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FineRepository is the persistence contract for the fine ledger. Fines are
// inserted by the fine issuer and bulk-transitioned by the settlement
// processor; nothing ever deletes or re-opens them.
type FineRepository interface {
	Insert(ctx context.Context, fine *models.Fine) (*models.Fine, error)
	FindByToken(ctx context.Context, token string) ([]*models.Fine, error)
	FindUnpaidByToken(ctx context.Context, token string) ([]*models.Fine, error)

	// MarkPaidByToken transitions every fine matching token that is still
	// UNPAID at write time and returns how many were transitioned. The
	// UNPAID predicate is re-checked by the update itself so a fine settled
	// by a concurrent call is never transitioned twice.
	MarkPaidByToken(ctx context.Context, token, paymentMethod string, paidAt time.Time) (int64, error)

	CountByStatus(ctx context.Context, status string) (int64, error)
	CollectionStatistics(ctx context.Context) (*CollectionStatistics, error)
}

// CollectionStatistics is the aggregate report over the fine ledger.
type CollectionStatistics struct {
	TotalFines        int64 `bson:"total_fines" json:"totalFines"`
	UnpaidFines       int64 `bson:"unpaid_fines" json:"unpaidFines"`
	PaidFines         int64 `bson:"paid_fines" json:"paidFines"`
	AmountCollected   int64 `bson:"amount_collected" json:"amountCollected"`
	AmountOutstanding int64 `bson:"amount_outstanding" json:"amountOutstanding"`
}

type MongoFineRepository struct {
	collection *mongo.Collection
}

func NewMongoFineRepository(db *mongo.Database) *MongoFineRepository {
	return &MongoFineRepository{
		collection: db.Collection("fines"),
	}
}

func (r *MongoFineRepository) Insert(ctx context.Context, fine *models.Fine) (*models.Fine, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, fine)
	if err != nil {
		return nil, err
	}

	fine.ID = result.InsertedID.(primitive.ObjectID)
	return fine, nil
}

func (r *MongoFineRepository) FindByToken(ctx context.Context, token string) ([]*models.Fine, error) {
	return r.find(ctx, bson.M{"token": token})
}

func (r *MongoFineRepository) FindUnpaidByToken(ctx context.Context, token string) ([]*models.Fine, error) {
	return r.find(ctx, bson.M{"token": token, "status": models.FineStatusUnpaid})
}

func (r *MongoFineRepository) find(ctx context.Context, filter bson.M) ([]*models.Fine, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "issued_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fines []*models.Fine
	for cursor.Next(ctx) {
		var fine models.Fine
		if err := cursor.Decode(&fine); err != nil {
			return nil, err
		}
		fines = append(fines, &fine)
	}

	return fines, cursor.Err()
}

func (r *MongoFineRepository) MarkPaidByToken(ctx context.Context, token, paymentMethod string, paidAt time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Settlement is per-document, not transactional: the status predicate in
	// the filter is the only guard against double-transition. A storage
	// failure mid-batch can leave the batch partially settled; a retry picks
	// up whatever is still UNPAID.
	filter := bson.M{"token": token, "status": models.FineStatusUnpaid}
	update := bson.M{"$set": bson.M{
		"status":         models.FineStatusPaid,
		"paid_at":        paidAt,
		"payment_method": paymentMethod,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *MongoFineRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

func (r *MongoFineRepository) CollectionStatistics(ctx context.Context) (*CollectionStatistics, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":         nil,
				"total_fines": bson.M{"$sum": 1},
				"unpaid_fines": bson.M{"$sum": bson.M{
					"$cond": []interface{}{bson.M{"$eq": []interface{}{"$status", models.FineStatusUnpaid}}, 1, 0},
				}},
				"paid_fines": bson.M{"$sum": bson.M{
					"$cond": []interface{}{bson.M{"$eq": []interface{}{"$status", models.FineStatusPaid}}, 1, 0},
				}},
				"amount_collected": bson.M{"$sum": bson.M{
					"$cond": []interface{}{bson.M{"$eq": []interface{}{"$status", models.FineStatusPaid}}, "$total_amount", 0},
				}},
				"amount_outstanding": bson.M{"$sum": bson.M{
					"$cond": []interface{}{bson.M{"$eq": []interface{}{"$status", models.FineStatusUnpaid}}, "$total_amount", 0},
				}},
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := &CollectionStatistics{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(stats); err != nil {
			return nil, err
		}
	}

	return stats, cursor.Err()
}

// CreateIndexes creates the indexes the settlement and lookup paths rely on.
func (r *MongoFineRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "token", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "rfid_tag", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "issued_at", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
