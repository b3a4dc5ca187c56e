package app

import (
	"context"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Phairoj-Ja/student-score-web/internal/sessions"
)

func NewSessionStore(ctx context.Context, config *Config) (sessions.Store, error) {
	ttl := config.SessionTTL()

	switch config.Sessions.Backend {
	case SessionsRedis:
		client, err := sessions.DialRedis(ctx, config.Sessions.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info.Printf("Sessions are kept in redis")
		return sessions.NewRedisStore(client, config.Sessions.RedisKeyFormat, ttl), nil
	case SessionsJWT:
		logger.Info.Printf("Sessions are signed cookies")
		return sessions.NewJWTStore(config.Sessions.JWTSecret, ttl)
	case SessionsMemory:
		logger.Info.Printf("Sessions are kept in memory, they do not survive a restart")
		return sessions.NewMemoryStore(ttl), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", config.Sessions.Backend)
	}
}
