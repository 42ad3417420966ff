package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const defaultStreamMaxLen = 100_000

// RedisStreamSink agrega cada evento a un stream de Redis (XADD) para consumidores externos.
// Un fallo de Redis se registra y se descarta; nunca llega al caller.
type RedisStreamSink struct {
	client  redis.UniversalClient
	stream  string
	maxLen  int64
	timeout time.Duration
	log     *logger.Logger
}

// NewRedisStreamSink construye el sink. stream vacío usa "inventory:audit".
func NewRedisStreamSink(client redis.UniversalClient, stream string, log *logger.Logger) *RedisStreamSink {
	if stream == "" {
		stream = "inventory:audit"
	}
	return &RedisStreamSink{
		client:  client,
		stream:  stream,
		maxLen:  defaultStreamMaxLen,
		timeout: 2 * time.Second,
		log:     log,
	}
}

// NewRedisClient crea el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("audit: conectar redis %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStreamSink) Publish(ctx context.Context, e audit.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: streamValues(e),
	}).Err()
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(e.Kind)).Str("entity_id", e.EntityID).Msg("audit: no se pudo publicar en redis")
	}
}

func streamValues(e audit.Event) map[string]interface{} {
	values := map[string]interface{}{
		"kind":      string(e.Kind),
		"actor_id":  e.ActorID,
		"entity_id": e.EntityID,
		"summary":   e.Summary,
		"at":        e.At.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range e.Fields {
		values["f_"+k] = v
	}
	return values
}
