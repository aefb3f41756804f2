package repositories

import (
	"context"
	"sync"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
)

// MemoryStore keeps installations and ledgers in process memory. It backs
// the "memory" store backend and the service tests, and counts calls so
// tests can assert which store operations a request performed.
type MemoryStore struct {
	mu            sync.Mutex
	installations map[string]string
	feedbacks     map[string]string

	GetTokenCalls   int
	LoadTokensCalls int
	PutTokensCalls  int
	CASCalls        int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		installations: make(map[string]string),
		feedbacks:     make(map[string]string),
	}
}

// Installations returns the store as an InstallationRepository.
func (s *MemoryStore) Installations() InstallationRepository {
	return memoryInstallations{s}
}

// Feedbacks returns the store as a FeedbackRepository.
func (s *MemoryStore) Feedbacks() FeedbackRepository {
	return memoryFeedbacks{s}
}

// Writes returns the number of ledger writes, plain and conditional.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PutTokensCalls + s.CASCalls
}

type memoryInstallations struct{ s *MemoryStore }

func (r memoryInstallations) GetToken(_ context.Context, webhookID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.GetTokenCalls++
	token, ok := r.s.installations[webhookID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return token, nil
}

func (r memoryInstallations) PutToken(_ context.Context, webhookID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.installations[webhookID] = token
	return nil
}

type memoryFeedbacks struct{ s *MemoryStore }

func (r memoryFeedbacks) LoadTokens(_ context.Context, webhookID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.LoadTokensCalls++
	raw, ok := r.s.feedbacks[webhookID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return raw, nil
}

func (r memoryFeedbacks) PutTokens(_ context.Context, webhookID, raw string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.PutTokensCalls++
	r.s.feedbacks[webhookID] = raw
	return nil
}

func (r memoryFeedbacks) CompareAndSwapTokens(_ context.Context, webhookID, expected, raw string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.CASCalls++
	current, ok := r.s.feedbacks[webhookID]
	if expected == "" && ok {
		return apperrors.ErrConflict
	}
	if expected != "" && (!ok || current != expected) {
		return apperrors.ErrConflict
	}

	r.s.feedbacks[webhookID] = raw
	return nil
}
