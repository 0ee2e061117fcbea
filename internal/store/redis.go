package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"showdeck/pkg/errors"
)

const txRetries = 5

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStore implements DocumentStore over Redis: one JSON document per key,
// merge and set-algebra writes performed as optimistic WATCH transactions, and
// the full document published on a per-document channel after every write.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewStoreError("failed to connect to Redis", "", "", err)
	}

	logger.Info("Document store connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

func docKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}

func docChannel(collection, id string) string {
	return "docs:" + collection + ":" + id
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error) {
	value, err := s.client.Get(ctx, docKey(collection, id)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("Document read failed",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, false, errors.NewStoreError("get failed", collection, id, err)
	}
	return json.RawMessage(value), true, nil
}

// SetMerge writes only the given fields, creating the document if absent.
func (s *RedisStore) SetMerge(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.mutate(ctx, collection, id, func(doc map[string]any) error {
		for k, v := range fields {
			doc[k] = v
		}
		return nil
	})
}

// AddToSet appends member to the list-valued field iff it is not already
// present.
func (s *RedisStore) AddToSet(ctx context.Context, collection, id, field, member string) error {
	return s.mutate(ctx, collection, id, func(doc map[string]any) error {
		members, err := fieldMembers(doc, field)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m == member {
				return nil
			}
		}
		doc[field] = append(members, member)
		return nil
	})
}

// RemoveFromSet removes every occurrence of member from the list-valued field.
func (s *RedisStore) RemoveFromSet(ctx context.Context, collection, id, field, member string) error {
	return s.mutate(ctx, collection, id, func(doc map[string]any) error {
		members, err := fieldMembers(doc, field)
		if err != nil {
			return err
		}
		kept := make([]string, 0, len(members))
		for _, m := range members {
			if m != member {
				kept = append(kept, m)
			}
		}
		doc[field] = kept
		return nil
	})
}

// mutate runs a read-modify-write of the whole document under WATCH so that
// concurrent writers serialize, then publishes the new document.
func (s *RedisStore) mutate(ctx context.Context, collection, id string, apply func(doc map[string]any) error) error {
	key := docKey(collection, id)

	txn := func(tx *redis.Tx) error {
		doc := make(map[string]any)

		current, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			if uerr := json.Unmarshal([]byte(current), &doc); uerr != nil {
				return fmt.Errorf("stored document is not valid JSON: %w", uerr)
			}
		}

		if err := apply(doc); err != nil {
			return err
		}

		payload, err := json.Marshal(doc)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.Publish(ctx, docChannel(collection, id), payload)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < txRetries; attempt++ {
		err = s.client.Watch(ctx, txn, key)
		if err != redis.TxFailedErr {
			break
		}
	}
	if err != nil {
		s.logger.Error("Document mutation failed",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err),
		)
		return errors.NewStoreError("mutation failed", collection, id, err)
	}

	return nil
}

func fieldMembers(doc map[string]any, field string) ([]string, error) {
	raw, ok := doc[field]
	if !ok || raw == nil {
		return []string{}, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not a list", field)
	}

	members := make([]string, 0, len(list))
	for _, entry := range list {
		str, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("field %q holds a non-string member", field)
		}
		members = append(members, str)
	}

	return members, nil
}

// Subscribe delivers the current document once (when present) and then every
// published update until cancel is called or ctx ends. A dropped pub/sub
// connection is re-established with backoff; the last delivered value stays
// authoritative in the meantime.
func (s *RedisStore) Subscribe(ctx context.Context, collection, id string, onUpdate func(json.RawMessage)) (func(), error) {
	channel := docChannel(collection, id)

	subCtx, cancelCtx := context.WithCancel(ctx)

	pubsub, err := s.openPubSub(subCtx, channel)
	if err != nil {
		cancelCtx()
		return nil, errors.NewStoreError("subscribe failed", collection, id, err)
	}

	if snapshot, exists, err := s.Get(subCtx, collection, id); err == nil && exists {
		onUpdate(snapshot)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pump(subCtx, pubsub, channel, onUpdate)
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			_ = pubsub.Close()
			wg.Wait()
			s.logger.Debug("Document subscription closed",
				zap.String("collection", collection),
				zap.String("id", id),
			)
		})
	}

	return cancel, nil
}

// openPubSub subscribes and waits for the subscription confirmation, retrying
// with backoff so a briefly unreachable store does not fail the caller.
func (s *RedisStore) openPubSub(ctx context.Context, channel string) (*redis.PubSub, error) {
	var pubsub *redis.PubSub

	err := retry.Do(
		func() error {
			ps := s.client.Subscribe(ctx, channel)
			if _, err := ps.Receive(ctx); err != nil {
				_ = ps.Close()
				return err
			}
			pubsub = ps
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("Subscription attempt failed",
				zap.String("channel", channel),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}

	return pubsub, nil
}

func (s *RedisStore) pump(ctx context.Context, pubsub *redis.PubSub, channel string, onUpdate func(json.RawMessage)) {
	defer func() {
		_ = pubsub.Close()
	}()

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				// Connection lost: re-establish and keep pumping. Until that
				// succeeds the consumer keeps its last delivered value.
				replacement, err := s.openPubSub(ctx, channel)
				if err != nil {
					s.logger.Error("Subscription re-establishment failed",
						zap.String("channel", channel),
						zap.Error(err),
					)
					return
				}
				pubsub = replacement
				messages = pubsub.Channel()
				continue
			}
			onUpdate(json.RawMessage(msg.Payload))
		}
	}
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close document store", zap.Error(err))
		return err
	}
	s.logger.Info("Document store disconnected")
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
