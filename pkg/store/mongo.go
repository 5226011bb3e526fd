package store

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// MongoStore persists diagrams as documents in a mongo collection, one
// document per diagram keyed by its id. It backs durable workspaces.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures a mongo-backed store.
type MongoOptions struct {
	// URI is the mongodb connection string.
	URI string
	// Database name, defaults to "schemadraw".
	Database string
	// Collection name, defaults to "diagrams".
	Collection string
}

// NewMongoStore connects to mongo and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	db := opts.Database
	if db == "" {
		db = "schemadraw"
	}
	coll := opts.Collection
	if coll == "" {
		coll = "diagrams"
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

// diagramDoc wraps a diagram with the mongo primary key.
type diagramDoc struct {
	ID      string           `bson:"_id"`
	Diagram *diagram.Diagram `bson:"diagram"`
}

// GetDiagram loads a diagram document.
func (s *MongoStore) GetDiagram(ctx context.Context, id string) (*diagram.Diagram, error) {
	var doc diagramDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Diagram, nil
}

// PutDiagram upserts a diagram document.
func (s *MongoStore) PutDiagram(ctx context.Context, d *diagram.Diagram) error {
	doc := diagramDoc{ID: d.ID, Diagram: d}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// DeleteDiagram removes a diagram document.
func (s *MongoStore) DeleteDiagram(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDiagrams returns all diagram ids.
func (s *MongoStore) ListDiagrams(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// CreateShapes adds shapes via read-modify-write on the document.
func (s *MongoStore) CreateShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyCreateShapes(d, shapes)
	})
}

// UpdateShape replaces a shape in place.
func (s *MongoStore) UpdateShape(ctx context.Context, diagramID string, sh *diagram.Shape) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyUpdateShape(d, sh)
	})
}

// DeleteShapes removes shapes by id.
func (s *MongoStore) DeleteShapes(ctx context.Context, diagramID string, shapeIDs []string) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyDeleteShapes(d, shapeIDs)
	})
}

// RestoreShapes reinserts deleted shapes at their original positions.
func (s *MongoStore) RestoreShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape, at []int) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyRestoreShapes(d, shapes, at)
	})
}

// CreateConnectors adds connectors to the document.
func (s *MongoStore) CreateConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyCreateConnectors(d, conns)
	})
}

// UpdateConnector replaces a connector in place.
func (s *MongoStore) UpdateConnector(ctx context.Context, diagramID string, c *diagram.Connector) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyUpdateConnector(d, c)
	})
}

// DeleteConnectors removes connectors by id.
func (s *MongoStore) DeleteConnectors(ctx context.Context, diagramID string, connIDs []string) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyDeleteConnectors(d, connIDs)
	})
}

// RestoreConnectors reinserts deleted connectors at their original
// positions.
func (s *MongoStore) RestoreConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector, at []int) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyRestoreConnectors(d, conns, at)
	})
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
