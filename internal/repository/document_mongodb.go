package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

// inventoryDocumentID is the _id of the single stored document.
const inventoryDocumentID = "inventory"

// MongoDBDocumentRepository stores the inventory document in one MongoDB document.
type MongoDBDocumentRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
	logger     *zap.Logger
}

// NewMongoDBDocumentRepository connects to MongoDB.
func NewMongoDBDocumentRepository(uri, database, collection string, logger *zap.Logger) (*MongoDBDocumentRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger = logger.Named("document").With(zap.String("collection", database+"."+collection))
	logger.Info("connected to MongoDB")

	return &MongoDBDocumentRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
		now:        time.Now,
		logger:     logger,
	}, nil
}

// storedDocument wraps the inventory tree. The tree goes through extended JSON
// so that its shape matches the file representation exactly.
type storedDocument struct {
	ID        string    `bson:"_id"`
	Document  bson.Raw  `bson:"document"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Load reads the document, returning a new one when none is stored.
func (r *MongoDBDocumentRepository) Load(ctx context.Context) (*model.InventoryDocument, error) {
	var stored storedDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": inventoryDocumentID}).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.NewInventoryDocument(r.now()), nil
		}
		return nil, fmt.Errorf("failed to load inventory document: %w", err)
	}

	return decodeDocument(stored.Document)
}

// Save stamps and upserts the document.
func (r *MongoDBDocumentRepository) Save(ctx context.Context, doc *model.InventoryDocument) error {
	doc.Metadata.LastUpdated = r.now()

	tree, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"document":   tree,
			"updated_at": doc.Metadata.LastUpdated,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": inventoryDocumentID}, update, opts); err != nil {
		return fmt.Errorf("failed to save inventory document: %w", err)
	}
	return nil
}

func encodeDocument(doc *model.InventoryDocument) (bson.D, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inventory document: %w", err)
	}

	var tree bson.D
	if err := bson.UnmarshalExtJSON(data, false, &tree); err != nil {
		return nil, fmt.Errorf("failed to convert inventory document: %w", err)
	}
	return tree, nil
}

func decodeDocument(raw bson.Raw) (*model.InventoryDocument, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert inventory document: %w", err)
	}

	var doc model.InventoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse inventory document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// Close disconnects from MongoDB.
func (r *MongoDBDocumentRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

var _ DocumentRepository = (*MongoDBDocumentRepository)(nil)
