package notice

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("notice not found")

// Repository persists notices across the two sibling collections. The target
// collection is always derived from the status tag.
type Repository interface {
	Get(ctx context.Context, status Status, id string) (*Notice, error)
	List(ctx context.Context, status Status) ([]Notice, error)
	Insert(ctx context.Context, n *Notice) error
	Upsert(ctx context.Context, n *Notice) error
	Delete(ctx context.Context, status Status, id string) error
}

type mongoRepository struct {
	db *mongo.Database
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{db: db}
}

func (r *mongoRepository) collectionFor(status Status) *mongo.Collection {
	if status == StatusApproved {
		return r.db.Collection("approved_notices")
	}
	return r.db.Collection("unapproved_notices")
}

func (r *mongoRepository) Get(ctx context.Context, status Status, id string) (*Notice, error) {
	var n Notice
	err := r.collectionFor(status).FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n.Status = status
	return &n, nil
}

func (r *mongoRepository) List(ctx context.Context, status Status) ([]Notice, error) {
	cursor, err := r.collectionFor(status).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	notices := []Notice{}
	if err := cursor.All(ctx, &notices); err != nil {
		return nil, err
	}
	for i := range notices {
		notices[i].Status = status
	}
	return notices, nil
}

func (r *mongoRepository) Insert(ctx context.Context, n *Notice) error {
	n.IsApproved = n.Status == StatusApproved
	_, err := r.collectionFor(n.Status).InsertOne(ctx, n)
	return err
}

func (r *mongoRepository) Upsert(ctx context.Context, n *Notice) error {
	n.IsApproved = n.Status == StatusApproved
	_, err := r.collectionFor(n.Status).ReplaceOne(
		ctx,
		bson.M{"_id": n.ID},
		n,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *mongoRepository) Delete(ctx context.Context, status Status, id string) error {
	res, err := r.collectionFor(status).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
