// Package confirmation keeps documents that need a user decision before they
// are stored: exhausted extractions and records that failed validation.
package confirmation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
)

// ErrNotFound is returned when no pending entry exists for an id.
var ErrNotFound = errors.New("pending document not found")

// Pending is one document awaiting confirmation.
type Pending struct {
	Document   domain.ExtractedDocument   `json:"document"`
	State      domain.ExtractionState     `json:"state"`
	Attempts   []domain.Attempt           `json:"attempts,omitempty"`
	Validation domain.ValidationResult    `json:"validation"`
	Category   *domain.CategorySuggestion `json:"category,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
}

// ID returns the document id the entry is keyed by.
func (p Pending) ID() string {
	return p.Document.ID
}

// Store holds pending confirmations keyed by document id.
type Store interface {
	Put(ctx context.Context, p Pending) error
	Get(ctx context.Context, documentID string) (Pending, error)
	List(ctx context.Context) ([]Pending, error)
	// Take returns the entry and removes it atomically, so a document is
	// confirmed at most once.
	Take(ctx context.Context, documentID string) (Pending, error)
	Delete(ctx context.Context, documentID string) error
}

// MemoryStore is an in-memory Store. It is safe for concurrent use.
// Entries are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	pending map[string]Pending
	onSize  func(n int)
}

// NewMemoryStore creates an empty store. onSize, when not nil, is called with
// the number of entries after every change.
func NewMemoryStore(onSize func(n int)) *MemoryStore {
	return &MemoryStore{pending: make(map[string]Pending), onSize: onSize}
}

func (s *MemoryStore) Put(ctx context.Context, p Pending) error {
	if p.ID() == "" {
		return fmt.Errorf("document ID is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Attempts = append([]domain.Attempt(nil), p.Attempts...)

	s.mu.Lock()
	s.pending[p.ID()] = p
	n := len(s.pending)
	s.mu.Unlock()

	s.report(n)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, documentID string) (Pending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pending[documentID]
	if !ok {
		return Pending{}, fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}
	return p, nil
}

// List returns the entries oldest first.
func (s *MemoryStore) List(ctx context.Context) ([]Pending, error) {
	s.mu.RLock()
	out := make([]Pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Take(ctx context.Context, documentID string) (Pending, error) {
	s.mu.Lock()
	p, ok := s.pending[documentID]
	if ok {
		delete(s.pending, documentID)
	}
	n := len(s.pending)
	s.mu.Unlock()

	if !ok {
		return Pending{}, fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}
	s.report(n)
	return p, nil
}

func (s *MemoryStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.Take(ctx, documentID)
	return err
}

func (s *MemoryStore) report(n int) {
	if s.onSize != nil {
		s.onSize(n)
	}
}

var _ Store = (*MemoryStore)(nil)
