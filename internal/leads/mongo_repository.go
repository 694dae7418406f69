package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionLeads is the MongoDB collection holding lead documents.
const CollectionLeads = "leads"

type mongoLead struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name,omitempty"`
	Email         string    `bson:"email,omitempty"`
	Phone         string    `bson:"phone,omitempty"`
	Source        string    `bson:"source"`
	ProductFormat string    `bson:"productFormat"`
	Flavor        string    `bson:"flavor"`
	Quantity      int       `bson:"quantity"`
	Type          string    `bson:"type"`
	CreatedAt     time.Time `bson:"createdAt"`
}

func toMongoLead(l *Lead) mongoLead {
	return mongoLead{
		ID:            l.ID,
		Name:          l.Name,
		Email:         l.Email,
		Phone:         l.Phone,
		Source:        l.Source,
		ProductFormat: string(l.ProductFormat),
		Flavor:        string(l.Flavor),
		Quantity:      l.Quantity,
		Type:          string(l.Type),
		CreatedAt:     l.CreatedAt,
	}
}

func (d mongoLead) lead() *Lead {
	return &Lead{
		ID:            d.ID,
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		Source:        d.Source,
		ProductFormat: ProductFormat(d.ProductFormat),
		Flavor:        Flavor(d.Flavor),
		Quantity:      d.Quantity,
		Type:          LeadType(d.Type),
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

// mongoCollection is the subset of *mongo.Collection used by the repository.
type mongoCollection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error)
}

// mongoIndexer is satisfied by mongo.IndexView.
type mongoIndexer interface {
	CreateMany(ctx context.Context, models []mongo.IndexModel, opts ...options.Lister[options.CreateIndexesOptions]) ([]string, error)
}

// MongoRepository stores leads as documents in a MongoDB collection.
type MongoRepository struct {
	coll    mongoCollection
	indexes mongoIndexer
	now     func() time.Time
}

// NewMongoRepository wraps the leads collection of db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	if db == nil {
		panic("leads: mongo database required")
	}
	coll := db.Collection(CollectionLeads)
	return newMongoRepository(coll, coll.Indexes())
}

func newMongoRepository(coll mongoCollection, indexes mongoIndexer) *MongoRepository {
	return &MongoRepository{coll: coll, indexes: indexes, now: time.Now}
}

func leadIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{
			{Key: "type", Value: 1},
			{Key: "email", Value: 1},
			{Key: "productFormat", Value: 1},
			{Key: "flavor", Value: 1},
		}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
}

// EnsureIndexes creates the lookup indexes. The cart index is not unique:
// duplicate detection happens in DuplicateChecker.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.indexes.CreateMany(ctx, leadIndexModels())
	if err != nil {
		return fmt.Errorf("leads: create indexes: %w", err)
	}
	return nil
}

// Create inserts a new document.
func (r *MongoRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	// Mongo stores milliseconds; truncate so the returned value matches reads.
	stored, err := prepareLead(lead, r.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}
	if _, err := r.coll.InsertOne(ctx, toMongoLead(stored)); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return stored, nil
}

// FindOne returns one document matching filter.
func (r *MongoRepository) FindOne(ctx context.Context, filter Filter) (*Lead, error) {
	var doc mongoLead
	if err := r.coll.FindOne(ctx, mongoFilter(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: find failed: %w", err)
	}
	return doc.lead(), nil
}

// ListAll returns every document sorted by createdAt descending.
func (r *MongoRepository) ListAll(ctx context.Context) ([]*Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoLead
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("leads: decode failed: %w", err)
	}
	out := make([]*Lead, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.lead())
	}
	return out, nil
}

// DeleteAll removes every document in the collection.
func (r *MongoRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("leads: delete failed: %w", err)
	}
	return res.DeletedCount, nil
}

func mongoFilter(f Filter) bson.D {
	filter := bson.D{}
	if f.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: string(f.Type)})
	}
	if f.Email != "" {
		filter = append(filter, bson.E{Key: "email", Value: f.Email})
	}
	if f.ProductFormat != "" {
		filter = append(filter, bson.E{Key: "productFormat", Value: string(f.ProductFormat)})
	}
	if f.Flavor != "" {
		filter = append(filter, bson.E{Key: "flavor", Value: string(f.Flavor)})
	}
	return filter
}
