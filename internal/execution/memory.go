package execution

import (
	"context"
	"fmt"
	"sync"

	"swapscout/internal/domain"
	"swapscout/internal/swapper"
)

type tradeState struct {
	hops      map[int]domain.ExecutionState
	active    *swapper.ApiQuote
	confirmed *swapper.ApiQuote
	aborted   bool
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	trades map[string]*tradeState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trades: make(map[string]*tradeState)}
}

func (s *MemoryStore) trade(tradeID string) *tradeState {
	t, ok := s.trades[tradeID]
	if !ok {
		t = &tradeState{hops: make(map[int]domain.ExecutionState)}
		s.trades[tradeID] = t
	}
	return t
}

func (s *MemoryStore) HopState(_ context.Context, tradeID string, hopIndex int) (domain.ExecutionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trades[tradeID]
	if !ok {
		return "", ErrHopNotFound
	}
	state, ok := t.hops[hopIndex]
	if !ok {
		return "", ErrHopNotFound
	}
	return state, nil
}

func (s *MemoryStore) SetHopState(_ context.Context, tradeID string, hopIndex int, state domain.ExecutionState) error {
	if !state.IsValid() {
		return fmt.Errorf("invalid execution state %q", state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trade(tradeID).hops[hopIndex] = state
	return nil
}

func (s *MemoryStore) SetConfirmedQuote(_ context.Context, tradeID string, quote *swapper.ApiQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trade(tradeID).confirmed = quote
	return nil
}

func (s *MemoryStore) SetActiveQuote(_ context.Context, tradeID string, quote *swapper.ApiQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trade(tradeID).active = quote
	return nil
}

func (s *MemoryStore) SetIsTradeQuoteRequestAborted(_ context.Context, tradeID string, aborted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trade(tradeID).aborted = aborted
	return nil
}

func (s *MemoryStore) IsTradeQuoteRequestAborted(_ context.Context, tradeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.trades[tradeID]; ok {
		return t.aborted, nil
	}
	return false, nil
}

func (s *MemoryStore) ActiveQuote(_ context.Context, tradeID string) (*swapper.ApiQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.trades[tradeID]; ok {
		return t.active, nil
	}
	return nil, nil
}

func (s *MemoryStore) ConfirmedQuote(_ context.Context, tradeID string) (*swapper.ApiQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.trades[tradeID]; ok {
		return t.confirmed, nil
	}
	return nil, nil
}
