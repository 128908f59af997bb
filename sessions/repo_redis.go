package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gadash:session:"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo keeps sealed sessions in Redis with a TTL matching ExpiresAt,
// letting several proxy instances share logins.
type RedisRepo struct {
	client redis.UniversalClient
	sealer *Sealer
}

func NewRedisRepo(client redis.UniversalClient, sealer *Sealer) *RedisRepo {
	return &RedisRepo{client: client, sealer: sealer}
}

// ConnectRedis parses url, pings the server and returns a client.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("[sessions ConnectRedis] parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[sessions ConnectRedis] ping: %w", err)
	}
	return client, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *RedisRepo) Upsert(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	ttl := time.Duration(0)
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(NowTimeFunc())
		if ttl <= 0 {
			return r.Delete(ctx, session.ID)
		}
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("[sessions RedisRepo] marshal: %w", err)
	}
	sealed, err := r.sealer.Seal(session.ID, raw)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKey(session.ID), sealed, ttl).Err(); err != nil {
		return fmt.Errorf("[sessions RedisRepo] set: %w", err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	sealed, err := r.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[sessions RedisRepo] get: %w", err)
	}

	raw, err := r.sealer.Open(sessionID, sealed)
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("[sessions RedisRepo] unmarshal: %w", err)
	}
	if session.IsExpired(NowTimeFunc()) {
		return nil, apperrors.ErrSessionExpired
	}
	return &session, nil
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("[sessions RedisRepo] delete: %w", err)
	}
	return nil
}
