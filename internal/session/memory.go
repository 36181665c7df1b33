package session

import (
	"context"
	"sync"
	"time"

	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/prediction"
)

type entry struct {
	patient   *patient.Data
	report    *prediction.RiskReport
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when no Redis URL is
// configured. Expired sessions are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) SavePatient(_ context.Context, sessionID string, p patient.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.touch(sessionID)
	e.patient = &p
	return nil
}

func (s *MemoryStore) LoadPatient(_ context.Context, sessionID string) (patient.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(sessionID)
	if e == nil || e.patient == nil {
		return patient.Data{}, ErrNotFound
	}
	return *e.patient, nil
}

func (s *MemoryStore) SaveReport(_ context.Context, sessionID string, r prediction.RiskReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.touch(sessionID)
	e.report = &r
	return nil
}

func (s *MemoryStore) LoadReport(_ context.Context, sessionID string) (*prediction.RiskReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(sessionID)
	if e == nil || e.report == nil {
		return nil, ErrNotFound
	}
	r := *e.report
	return &r, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) lookup(sessionID string) *entry {
	e, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.entries, sessionID)
		return nil
	}
	return e
}

func (s *MemoryStore) touch(sessionID string) *entry {
	e := s.lookup(sessionID)
	if e == nil {
		e = &entry{}
		s.entries[sessionID] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}
