package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paylinkr/gatekeeper/core"
)

const (
	sessionKeyPrefix = "paylinkr:session:"
	addressKeyPrefix = "paylinkr:sessions:addr:"
	nonceKeyPrefix   = "paylinkr:nonce:"
)

// RedisSessionStore keeps session records in Redis, keyed by session ID
// with a TTL matching the session lifetime. A per-address set indexes
// live sessions for logout-everywhere. Revocation flips the record's
// Valid flag in place, keeping the record until natural expiry.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, session *core.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return storageErr("sessionStore.Create", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return core.E(core.KindInvalidInput, "session already expired")
	}

	addrKey := addressKeyPrefix + session.WalletAddress
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl)
	pipe.SAdd(ctx, addrKey, session.ID)
	pipe.Expire(ctx, addrKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return storageErr("sessionStore.Create", err)
	}
	return nil
}

func (s *RedisSessionStore) Find(ctx context.Context, id string) (*core.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, core.E(core.KindNotFound, "session not found")
	}
	if err != nil {
		return nil, storageErr("sessionStore.Find", err)
	}

	session := new(core.Session)
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, storageErr("sessionStore.Find", err)
	}
	return session, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, id string) error {
	session, err := s.Find(ctx, id)
	if err != nil {
		if core.IsKind(err, core.KindNotFound) {
			return nil
		}
		return err
	}
	session.Valid = false

	payload, err := json.Marshal(session)
	if err != nil {
		return storageErr("sessionStore.Revoke", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+id, payload, redis.KeepTTL).Err(); err != nil {
		return storageErr("sessionStore.Revoke", err)
	}
	return nil
}

func (s *RedisSessionStore) RevokeAddress(ctx context.Context, address string) (int, error) {
	ids, err := s.client.SMembers(ctx, addressKeyPrefix+address).Result()
	if err != nil {
		return 0, storageErr("sessionStore.RevokeAddress", err)
	}

	revoked := 0
	for _, id := range ids {
		if err := s.Revoke(ctx, id); err != nil {
			return revoked, err
		}
		revoked++
	}
	return revoked, nil
}

// RedisReplayGuard enforces single-use challenge nonces with SETNX.
type RedisReplayGuard struct {
	client *redis.Client
}

func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client}
}

func (g *RedisReplayGuard) Remember(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	fresh, err := g.client.SetNX(ctx, nonceKeyPrefix+nonce, "1", ttl).Result()
	if err != nil {
		return false, storageErr("replayGuard.Remember", err)
	}
	return fresh, nil
}
