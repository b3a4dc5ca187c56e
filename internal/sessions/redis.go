package sessions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

const (
	timeFormat            = "2006-01-02 15:04:05"
	DefaultRedisKeyFormat = "session:{token}"
)

// RedisStore keeps each session in a hash keyed by its token and lets Redis
// expire it.
type RedisStore struct {
	redis       *redis.Client
	keyTemplate string
	ttl         time.Duration
	now         func() time.Time
}

func NewRedisStore(client *redis.Client, keyTemplate string, ttl time.Duration) *RedisStore {
	if keyTemplate == "" {
		keyTemplate = DefaultRedisKeyFormat
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis:       client,
		keyTemplate: keyTemplate,
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// DialRedis parses the URL and pings the server before handing out a client.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (rs *RedisStore) key(token string) string {
	return strings.NewReplacer("{token}", token).Replace(rs.keyTemplate)
}

func (rs *RedisStore) Create(ctx context.Context, s models.Session) (string, error) {
	if !validSession(&s) {
		return "", errInvalidSession
	}

	token := newToken()
	key := rs.key(token)

	pipe := rs.redis.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"role":             string(s.Role),
		"course":           s.Course,
		"user_id":          s.UserID,
		"fullname":         s.FullName,
		"created_dttm_utc": rs.now().Format(timeFormat),
	})
	pipe.Expire(ctx, key, rs.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

func (rs *RedisStore) Get(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}

	values, err := rs.redis.HGetAll(ctx, rs.key(token)).Result()
	if err == redis.Nil || (err == nil && len(values) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	s := &models.Session{
		Role:     models.Role(values["role"]),
		Course:   values["course"],
		UserID:   values["user_id"],
		FullName: values["fullname"],
	}
	if !validSession(s) {
		return nil, nil
	}
	return s, nil
}

func (rs *RedisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := rs.redis.Del(ctx, rs.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	if rs.redis != nil {
		return rs.redis.Close()
	}
	return nil
}
