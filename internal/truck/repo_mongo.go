package truck

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "trucks"

// MongoRepo 基于文档数据库的持久化实现（与 Repo 互为可替换后端）。
type MongoRepo struct {
	client   *mongo.Client
	database string
}

func NewMongoRepo(client *mongo.Client, database string) *MongoRepo {
	if database == "" {
		database = "yardlink"
	}
	return &MongoRepo{client: client, database: database}
}

func (r *MongoRepo) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(mongoCollection)
}

func (r *MongoRepo) Load(ctx context.Context) ([]Truck, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("mongo client is nil")
	}
	cur, err := r.coll().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var trucks []Truck
	if err := cur.All(ctx, &trucks); err != nil {
		return nil, err
	}
	return trucks, nil
}

func (r *MongoRepo) Save(ctx context.Context, t *Truck) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	_, err := r.coll().ReplaceOne(
		ctx,
		bson.M{"_id": t.ID},
		t,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	_, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
