package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// RedisStore persists diagrams as JSON documents in redis, one key per
// diagram. It backs the hosted editor where sessions are short-lived and
// mirrored to a durable store separately.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures a redis-backed store.
type RedisOptions struct {
	// Addr is the redis host:port.
	Addr string
	// Password, optional.
	Password string
	// DB selects the redis database number.
	DB int
	// Prefix namespaces keys, defaults to "schemadraw".
	Prefix string
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "schemadraw"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":diagram:" + id
}

// GetDiagram loads and decodes a diagram document.
func (s *RedisStore) GetDiagram(ctx context.Context, id string) (*diagram.Diagram, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var d diagram.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PutDiagram encodes and stores a diagram document.
func (s *RedisStore) PutDiagram(ctx context.Context, d *diagram.Diagram) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(d.ID), data, 0).Err()
}

// DeleteDiagram removes a diagram document.
func (s *RedisStore) DeleteDiagram(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDiagrams scans the key namespace for diagram ids.
func (s *RedisStore) ListDiagrams(ctx context.Context) ([]string, error) {
	pattern := s.prefix + ":diagram:*"
	var ids []string
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			ids = append(ids, strings.TrimPrefix(k, s.prefix+":diagram:"))
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

// CreateShapes adds shapes via read-modify-write on the document.
func (s *RedisStore) CreateShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyCreateShapes(d, shapes)
	})
}

// UpdateShape replaces a shape in place.
func (s *RedisStore) UpdateShape(ctx context.Context, diagramID string, sh *diagram.Shape) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyUpdateShape(d, sh)
	})
}

// DeleteShapes removes shapes by id.
func (s *RedisStore) DeleteShapes(ctx context.Context, diagramID string, shapeIDs []string) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyDeleteShapes(d, shapeIDs)
	})
}

// RestoreShapes reinserts deleted shapes at their original positions.
func (s *RedisStore) RestoreShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape, at []int) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyRestoreShapes(d, shapes, at)
	})
}

// CreateConnectors adds connectors to the document.
func (s *RedisStore) CreateConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyCreateConnectors(d, conns)
	})
}

// UpdateConnector replaces a connector in place.
func (s *RedisStore) UpdateConnector(ctx context.Context, diagramID string, c *diagram.Connector) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyUpdateConnector(d, c)
	})
}

// DeleteConnectors removes connectors by id.
func (s *RedisStore) DeleteConnectors(ctx context.Context, diagramID string, connIDs []string) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyDeleteConnectors(d, connIDs)
	})
}

// RestoreConnectors reinserts deleted connectors at their original
// positions.
func (s *RedisStore) RestoreConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector, at []int) error {
	return mutate(ctx, s, diagramID, func(d *diagram.Diagram) error {
		return applyRestoreConnectors(d, conns, at)
	})
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
