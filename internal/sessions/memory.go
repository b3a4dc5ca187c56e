package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

type memoryEntry struct {
	session models.Session
	expires time.Time
}

// MemoryStore is a process-local store for development and tests. Expired
// entries are dropped lazily on Get.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

func (ms *MemoryStore) Create(ctx context.Context, s models.Session) (string, error) {
	if !validSession(&s) {
		return "", errInvalidSession
	}

	token := newToken()
	ms.mu.Lock()
	ms.entries[token] = memoryEntry{session: s, expires: ms.now().Add(ms.ttl)}
	ms.mu.Unlock()
	return token, nil
}

func (ms *MemoryStore) Get(ctx context.Context, token string) (*models.Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	e, ok := ms.entries[token]
	if !ok {
		return nil, nil
	}
	if !ms.now().Before(e.expires) {
		delete(ms.entries, token)
		return nil, nil
	}
	s := e.session
	return &s, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, token string) error {
	ms.mu.Lock()
	delete(ms.entries, token)
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
