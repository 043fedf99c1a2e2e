package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SessionStore persists session records outside the process.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	// Find returns ErrSessionNotFound when no record exists.
	Find(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID uint) error
	PurgeExpired(ctx context.Context, now time.Time) error
}

// DatabaseSessionStore keeps sessions in the sessions table.
type DatabaseSessionStore struct {
	db *database.Database
}

func NewDatabaseSessionStore(db *database.Database) *DatabaseSessionStore {
	return &DatabaseSessionStore{db: db}
}

func (s *DatabaseSessionStore) Save(ctx context.Context, session models.Session) error {
	return s.db.DB.WithContext(ctx).Create(&session).Error
}

func (s *DatabaseSessionStore) Find(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	if err := s.db.DB.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (s *DatabaseSessionStore) Delete(ctx context.Context, id string) error {
	return s.db.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (s *DatabaseSessionStore) DeleteByUser(ctx context.Context, userID uint) error {
	return s.db.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

func (s *DatabaseSessionStore) PurgeExpired(ctx context.Context, now time.Time) error {
	return s.db.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{}).Error
}

// RedisSessionStore keeps each session under session:<id> with a TTL and indexes the ids
// of a user under user_sessions:<user id>.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisSessionStore) userKey(userID uint) string {
	return "user_sessions:" + strconv.FormatUint(uint64(userID), 10)
}

func (s *RedisSessionStore) Save(ctx context.Context, session models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.ID), data, ttl)
		pipe.SAdd(ctx, s.userKey(session.UserID), session.ID)
		pipe.Expire(ctx, s.userKey(session.UserID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Find(ctx context.Context, id string) (models.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("redis find session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(id))
		pipe.SRem(ctx, s.userKey(session.UserID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) DeleteByUser(ctx context.Context, userID uint) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis list sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, s.userKey(userID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete sessions: %w", err)
	}
	return nil
}

// PurgeExpired is a no-op: Redis expires session keys on its own.
func (s *RedisSessionStore) PurgeExpired(ctx context.Context, now time.Time) error {
	return nil
}

// ConnectRedis initialises a Redis client and validates connectivity with a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
