package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/pkg/logger"
	"github.com/tunaskarier/portal-api/pkg/metrics"
	"go.uber.org/zap"
)

// Store keeps portal sessions server-side. The browser cookie only carries
// a signed reference; the upstream bearer token never leaves this store.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a session store with the given TTL. Expired entries are
// swept every ten minutes.
func NewStore(ttlHours int) *Store {
	ttl := time.Duration(ttlHours) * time.Hour
	return &Store{
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Create builds a session from a successful upstream login and stores it.
func (s *Store) Create(token string, role models.Role, userID, studentID string) (*models.Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &models.Session{
		ID:        id,
		Token:     token,
		Role:      role,
		UserID:    userID,
		StudentID: studentID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	// A partial session is never stored: absent beats inconsistent.
	if !sess.IsComplete() {
		return nil, fmt.Errorf("refusing to store incomplete session")
	}

	s.cache.Set(id, sess, s.ttl)
	metrics.SessionsCreated.WithLabelValues(role.String()).Inc()

	logger.Info("Session created",
		zap.String("session_id", id),
		zap.String("role", role.String()),
		zap.String("user_id", userID))

	return sess, nil
}

// Get returns the session for id, or nil when absent, expired or partial.
func (s *Store) Get(id string) *models.Session {
	if id == "" {
		return nil
	}
	val, found := s.cache.Get(id)
	if !found {
		return nil
	}
	sess, ok := val.(*models.Session)
	if !ok || !sess.IsComplete() {
		// Treat anything short of a complete session as absent.
		s.cache.Delete(id)
		return nil
	}
	return sess
}

// Invalidate removes a session. reason feeds the invalidation metric
// (logout, upstream_unauthorized, expired).
func (s *Store) Invalidate(id, reason string) {
	if id == "" {
		return
	}
	if _, found := s.cache.Get(id); !found {
		return
	}
	s.cache.Delete(id)
	metrics.SessionsInvalidated.WithLabelValues(reason).Inc()

	logger.Info("Session invalidated",
		zap.String("session_id", id),
		zap.String("reason", reason))
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func generateSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
