// Package sessions maps the opaque token kept in the browser cookie to the
// Session a login established.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

type Store interface {
	Create(ctx context.Context, s models.Session) (string, error)
	// Get returns nil, nil for unknown or expired tokens.
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	Close() error
}

const DefaultTTL = 12 * time.Hour

var errInvalidSession = errors.New("session payload is incomplete")

func newToken() string {
	return uuid.NewString()
}

func validSession(s *models.Session) bool {
	return (s.Role == models.RoleAdmin || s.Role == models.RoleStudent) && s.Course != "" && s.UserID != ""
}
