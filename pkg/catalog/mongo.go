package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shelfworks/shelfstack/pkg/errors"
)

// MongoSource serves catalog entries from a MongoDB collection. Documents
// use the bson field names declared on SKU; the collection should carry a
// unique index on "sku".
type MongoSource struct {
	coll *mongo.Collection
}

// NewMongoSource wraps an existing collection handle.
func NewMongoSource(coll *mongo.Collection) *MongoSource {
	return &MongoSource{coll: coll}
}

// Lookup implements Source.
func (m *MongoSource) Lookup(ctx context.Context, sku string) (SKU, error) {
	var s SKU
	err := m.coll.FindOne(ctx, bson.M{"sku": sku}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return SKU{}, errors.New(errors.ErrCodeSKUNotFound, "sku %s not in catalog", sku)
	}
	if err != nil {
		return SKU{}, errors.Wrap(errors.ErrCodeInternal, err, "query catalog for %s", sku)
	}
	if err := s.Validate(); err != nil {
		return SKU{}, err
	}
	return s, nil
}

// List implements Source.
func (m *MongoSource) List(ctx context.Context) ([]SKU, error) {
	cur, err := m.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list catalog")
	}
	defer cur.Close(ctx)

	var out []SKU
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode catalog entries")
	}
	return out, nil
}
