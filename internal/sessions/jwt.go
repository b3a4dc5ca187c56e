package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

type Claims struct {
	Role     string `json:"role"`
	Course   string `json:"course"`
	UserID   string `json:"uid"`
	FullName string `json:"name"`
	jwt.RegisteredClaims
}

// JWTStore keeps nothing server side: the token is the session, signed with
// HS256. Delete cannot revoke a token, logging out relies on the cookie
// being dropped and on the expiry.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTStore(secret string, ttl time.Duration) (*JWTStore, error) {
	if secret == "" {
		return nil, errors.New("jwt session store needs a secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWTStore{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (js *JWTStore) Create(ctx context.Context, s models.Session) (string, error) {
	if !validSession(&s) {
		return "", errInvalidSession
	}

	now := js.now()
	claims := Claims{
		Role:     string(s.Role),
		Course:   s.Course,
		UserID:   s.UserID,
		FullName: s.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newToken(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(js.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(js.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// Get treats any token that fails to parse or verify as no session.
func (js *JWTStore) Get(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}

	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return js.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(js.now),
	)
	if err != nil {
		return nil, nil
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, nil
	}

	s := &models.Session{
		Role:     models.Role(c.Role),
		Course:   c.Course,
		UserID:   c.UserID,
		FullName: c.FullName,
	}
	if !validSession(s) {
		return nil, nil
	}
	return s, nil
}

func (js *JWTStore) Delete(ctx context.Context, token string) error {
	return nil
}

func (js *JWTStore) Close() error {
	return nil
}
