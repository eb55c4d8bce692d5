package tradequote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"swapscout/internal/domain"
	"swapscout/internal/execution"
	"swapscout/internal/fees"
	"swapscout/internal/telemetry"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("quote session not found")

// SessionOptions start a quote session. An empty TradeID starts a new trade
// at hop 0; a known TradeID resumes it from the store.
type SessionOptions struct {
	TradeID          string `json:"trade_id,omitempty"`
	HopIndex         int    `json:"hop_index"`
	PreferredSwapper string `json:"preferred_swapper,omitempty"`
}

// Sessions owns one Engine per live trade.
type Sessions struct {
	agg   *Aggregator
	store execution.Store
	fees  *fees.Calculator
	sink  telemetry.Sink

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewSessions(agg *Aggregator, store execution.Store, calc *fees.Calculator, sink telemetry.Sink) *Sessions {
	return &Sessions{
		agg:     agg,
		store:   store,
		fees:    calc,
		sink:    sink,
		engines: make(map[string]*Engine),
	}
}

// Create starts a session. A trade without a recorded hop state is put in
// HopAwaitingSwap so quoting can begin.
func (s *Sessions) Create(ctx context.Context, opts SessionOptions) (*Engine, error) {
	tradeID := opts.TradeID
	if tradeID == "" {
		tradeID = uuid.NewString()
	}

	s.mu.Lock()
	_, exists := s.engines[tradeID]
	s.mu.Unlock()
	if exists {
		return nil, fmt.Errorf("session %s already open", tradeID)
	}

	if _, err := s.store.HopState(ctx, tradeID, opts.HopIndex); err != nil {
		if !errors.Is(err, execution.ErrHopNotFound) {
			return nil, fmt.Errorf("read hop state: %w", err)
		}
		if err := s.store.SetHopState(ctx, tradeID, opts.HopIndex, domain.HopAwaitingSwap); err != nil {
			return nil, fmt.Errorf("init hop state: %w", err)
		}
	}

	snapshot, err := CaptureSnapshot(ctx, s.store, tradeID, opts.HopIndex)
	if err != nil {
		return nil, err
	}
	if snapshot.ConfirmedSwapper == "" {
		snapshot.ConfirmedSwapper = opts.PreferredSwapper
	}

	engine := NewEngine(s.agg, s.store, s.fees, s.sink, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.engines[tradeID]; ok {
		engine.Close()
		return nil, fmt.Errorf("session %s already open", tradeID)
	}
	s.engines[tradeID] = engine
	return engine, nil
}

func (s *Sessions) Get(tradeID string) (*Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	engine, ok := s.engines[tradeID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return engine, nil
}

// Close stops and forgets one session.
func (s *Sessions) Close(tradeID string) error {
	s.mu.Lock()
	engine, ok := s.engines[tradeID]
	delete(s.engines, tradeID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	engine.Close()
	return nil
}

// CloseAll stops every session; used on shutdown.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	engines := s.engines
	s.engines = make(map[string]*Engine)
	s.mu.Unlock()
	for _, engine := range engines {
		engine.Close()
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.engines)
}
