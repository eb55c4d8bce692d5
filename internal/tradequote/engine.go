package tradequote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"swapscout/internal/domain"
	"swapscout/internal/execution"
	"swapscout/internal/fees"
	"swapscout/internal/logger"
	"swapscout/internal/metrics"
	"swapscout/internal/swapper"
	"swapscout/internal/telemetry"
)

var (
	ErrQuotingNotPermitted = errors.New("quote fetching is not permitted in the current execution state")
	ErrQuoteNotFound       = errors.New("no quote available for swapper")
	ErrSelectionSuperseded = errors.New("selection superseded by a newer active quote")
	ErrEngineClosed        = errors.New("engine closed")
)

const mutationQueueSize = 32

// Snapshot is the trade identity and selection state read once when a
// session starts. The engine never re-reads these from the store.
type Snapshot struct {
	TradeID          string            `json:"trade_id"`
	HopIndex         int               `json:"hop_index"`
	ActiveQuote      *swapper.ApiQuote `json:"active_quote,omitempty"`
	ConfirmedSwapper string            `json:"confirmed_swapper,omitempty"`
}

// CaptureSnapshot reads the trade's current selection from store.
func CaptureSnapshot(ctx context.Context, store execution.Store, tradeID string, hopIndex int) (Snapshot, error) {
	active, err := store.ActiveQuote(ctx, tradeID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read active quote: %w", err)
	}
	confirmed, err := store.ConfirmedQuote(ctx, tradeID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read confirmed quote: %w", err)
	}

	s := Snapshot{TradeID: tradeID, HopIndex: hopIndex, ActiveQuote: active}
	switch {
	case confirmed != nil:
		s.ConfirmedSwapper = confirmed.SwapperName
	case active != nil:
		s.ConfirmedSwapper = active.SwapperName
	}
	return s, nil
}

// EntryStatus is the fetch state of one swapper's ApiQuoteSet entry.
type EntryStatus string

const (
	StatusLoading EntryStatus = "loading"
	StatusSettled EntryStatus = "settled"
)

// Entry is one swapper's latest answer. A loading entry keeps the previous
// answer until the new one settles.
type Entry struct {
	Status   EntryStatus       `json:"status"`
	ApiQuote *swapper.ApiQuote `json:"api_quote,omitempty"`
	Seq      uint64            `json:"seq"`
}

// ApiQuoteSet is a point-in-time copy of a session's quotes.
type ApiQuoteSet struct {
	TradeID    string                      `json:"trade_id"`
	Generation uint64                      `json:"generation"`
	Skipped    bool                        `json:"skipped"`
	Input      *swapper.GetTradeQuoteInput `json:"input,omitempty"`
	Entries    map[string]Entry            `json:"entries"`
	Active     *swapper.ApiQuote           `json:"active,omitempty"`
}

// Ranked returns the settled answers, best first.
func (s ApiQuoteSet) Ranked() []swapper.ApiQuote {
	out := make([]swapper.ApiQuote, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.ApiQuote != nil {
			out = append(out, *e.ApiQuote)
		}
	}
	SortApiQuotes(out)
	return out
}

// Loading reports whether any swapper still has a fetch in flight.
func (s ApiQuoteSet) Loading() bool {
	for _, e := range s.Entries {
		if e.Status == StatusLoading {
			return true
		}
	}
	return false
}

// mutation is a request to change the active quote. stamp orders mutations
// by when they were requested, not when they arrive.
type mutation struct {
	stamp  uint64
	quote  swapper.ApiQuote
	auto   bool
	result chan bool
}

// Engine polls every swapper for one trade, keeps the latest answer per
// swapper and serializes changes to the active quote.
type Engine struct {
	agg      *Aggregator
	store    execution.Store
	fees     *fees.Calculator
	sink     telemetry.Sink
	snapshot Snapshot
	log      *logger.Entry

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mutations chan mutation

	// updateMu serializes Update so the aborted flag in the store always
	// matches the newest generation.
	updateMu sync.Mutex

	mu               sync.Mutex
	closed           bool
	generation       uint64
	clock            uint64
	inputs           Inputs
	input            *swapper.GetTradeQuoteInput
	entries          map[string]*Entry
	seqs             map[string]uint64
	stopPollers      context.CancelFunc
	active           *swapper.ApiQuote
	confirmedSwapper string
	lastActiveStamp  uint64
	autoSelectedGen  uint64
	reported         bool
	subscribers      map[chan ApiQuoteSet]struct{}
}

func NewEngine(agg *Aggregator, store execution.Store, calc *fees.Calculator, sink telemetry.Sink, snapshot Snapshot) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		agg:              agg,
		store:            store,
		fees:             calc,
		sink:             sink,
		snapshot:         snapshot,
		log:              logger.GetLogger().WithComponent("tradequote").WithField("trade_id", snapshot.TradeID),
		ctx:              ctx,
		cancel:           cancel,
		mutations:        make(chan mutation, mutationQueueSize),
		entries:          make(map[string]*Entry),
		seqs:             make(map[string]uint64),
		active:           snapshot.ActiveQuote,
		confirmedSwapper: snapshot.ConfirmedSwapper,
		subscribers:      make(map[chan ApiQuoteSet]struct{}),
	}
	e.wg.Add(1)
	go e.runMutations()
	return e
}

func (e *Engine) Snapshot() Snapshot { return e.snapshot }

// Update applies new inputs: in-flight fetches for older inputs are
// abandoned, cached answers dropped, and pollers restarted for the new
// request. Requests that cannot be made yet are marked aborted in the store.
func (e *Engine) Update(ctx context.Context, in Inputs) error {
	e.updateMu.Lock()
	defer e.updateMu.Unlock()

	ctx, span := e.agg.tracer.Start(ctx, "tradequote.update")
	defer span.End()

	state, err := e.store.HopState(ctx, e.snapshot.TradeID, e.snapshot.HopIndex)
	if err != nil && !errors.Is(err, execution.ErrHopNotFound) {
		return fmt.Errorf("read hop state: %w", err)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	if state != domain.HopAwaitingSwap || (e.active != nil && e.active.Quote.IsExecutable()) {
		e.mu.Unlock()
		return ErrQuotingNotPermitted
	}
	e.generation++
	gen := e.generation
	if e.stopPollers != nil {
		e.stopPollers()
		e.stopPollers = nil
	}
	e.entries = make(map[string]*Entry)
	e.input = nil
	e.inputs = in
	e.reported = false
	e.mu.Unlock()

	input, skip, buildErr := BuildInput(e.fees, in)
	if skip || buildErr != nil {
		if err := e.store.SetIsTradeQuoteRequestAborted(ctx, e.snapshot.TradeID, true); err != nil {
			e.log.WithError(err).Warn("failed to flag aborted quote request")
		}
		e.publish()
		return buildErr
	}
	if err := e.store.SetIsTradeQuoteRequestAborted(ctx, e.snapshot.TradeID, false); err != nil {
		e.log.WithError(err).Warn("failed to clear aborted quote request")
	}

	e.mu.Lock()
	if gen != e.generation || e.closed {
		// a newer Update owns the pollers
		e.mu.Unlock()
		return nil
	}
	e.input = &input
	pollCtx, stop := context.WithCancel(e.ctx)
	e.stopPollers = stop
	for _, s := range e.agg.swappers {
		e.entries[s.Name()] = &Entry{Status: StatusLoading, Seq: e.seqs[s.Name()]}
	}
	for _, s := range e.agg.swappers {
		e.wg.Add(1)
		go e.poll(pollCtx, gen, s, input)
	}
	e.mu.Unlock()

	e.log.WithFields(logger.Fields{
		"generation":    gen,
		"sell_asset_id": input.SellAsset.AssetID,
		"buy_asset_id":  input.BuyAsset.AssetID,
		"affiliate_bps": input.AffiliateBps,
	}).Debug("quote input published")
	e.publish()
	return nil
}

func (e *Engine) poll(ctx context.Context, gen uint64, s swapper.QuoteProvider, input swapper.GetTradeQuoteInput) {
	defer e.wg.Done()

	interval := s.PollingInterval()
	if interval <= 0 {
		interval = swapper.DefaultPollingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		e.startFetch(ctx, gen, s, input)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// startFetch marks the swapper's entry loading under a new sequence number
// and fetches in the background, so a slow response can overlap the next
// poll. Only the newest sequence may settle the entry. Polling halts once
// the hop leaves AwaitingSwap or the active quote becomes executable.
func (e *Engine) startFetch(ctx context.Context, gen uint64, s swapper.QuoteProvider, input swapper.GetTradeQuoteInput) {
	name := s.Name()

	state, err := e.store.HopState(ctx, e.snapshot.TradeID, e.snapshot.HopIndex)
	if err != nil && !errors.Is(err, execution.ErrHopNotFound) {
		e.log.WithError(err).WithField("swapper", name).Warn("failed to read hop state, skipping poll")
		return
	}

	e.mu.Lock()
	if gen != e.generation || e.closed {
		e.mu.Unlock()
		return
	}
	if state != domain.HopAwaitingSwap || (e.active != nil && e.active.Quote.IsExecutable()) {
		e.haltLocked()
		e.mu.Unlock()
		e.publish()
		return
	}
	e.seqs[name]++
	seq := e.seqs[name]
	e.clock++
	stamp := e.clock
	next := &Entry{Status: StatusLoading, Seq: seq}
	if prev := e.entries[name]; prev != nil {
		next.ApiQuote = prev.ApiQuote
	}
	e.entries[name] = next
	e.reported = false
	e.wg.Add(1)
	e.mu.Unlock()
	e.publish()

	go func() {
		defer e.wg.Done()
		res := e.agg.fetch(ctx, s, input)
		e.settle(gen, name, seq, stamp, res)
	}()
}

func (e *Engine) settle(gen uint64, name string, seq, stamp uint64, res swapper.ApiQuote) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if gen != e.generation || seq != e.seqs[name] {
		e.mu.Unlock()
		metrics.StaleQuoteDiscarded(name)
		e.log.WithFields(logger.Fields{"swapper": name, "seq": seq}).Debug("discarded superseded quote response")
		return
	}

	prev := e.entries[name]
	e.entries[name] = &Entry{Status: StatusSettled, ApiQuote: &res, Seq: seq}

	var auto *mutation
	if prev != nil && prev.Status == StatusLoading && name == e.confirmedSwapper &&
		res.IsActionable() && e.autoSelectedGen != gen {
		e.autoSelectedGen = gen
		auto = &mutation{stamp: stamp, quote: res, auto: true}
	}

	var event *telemetry.QuotesReceivedEvent
	if !e.loadingLocked() && !e.reported {
		e.reported = true
		ranked := e.quoteSetLocked().Ranked()
		ev := BuildQuotesReceivedEvent(ranked, e.inputs.SellAsset, e.inputs.BuyAsset, e.inputs.SellAmountUsd())
		event = &ev
	}
	e.mu.Unlock()

	if auto != nil {
		e.enqueue(*auto)
	}
	if event != nil && e.sink != nil {
		if err := e.sink.Emit(e.ctx, *event); err != nil {
			e.log.WithError(err).Warn("failed to emit quotes received event")
		}
	}
	e.publish()
}

// SelectQuote makes swapperName's current quote the active one. It waits
// until the mutation has been applied or rejected.
func (e *Engine) SelectQuote(ctx context.Context, swapperName string) (swapper.ApiQuote, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return swapper.ApiQuote{}, ErrEngineClosed
	}
	entry := e.entries[swapperName]
	if entry == nil || entry.ApiQuote == nil || entry.ApiQuote.Quote == nil {
		e.mu.Unlock()
		return swapper.ApiQuote{}, ErrQuoteNotFound
	}
	e.clock++
	m := mutation{stamp: e.clock, quote: *entry.ApiQuote, result: make(chan bool, 1)}
	e.mu.Unlock()

	if !e.enqueue(m) {
		return swapper.ApiQuote{}, ErrEngineClosed
	}
	select {
	case applied := <-m.result:
		if !applied {
			return swapper.ApiQuote{}, ErrSelectionSuperseded
		}
		return m.quote, nil
	case <-ctx.Done():
		return swapper.ApiQuote{}, ctx.Err()
	case <-e.ctx.Done():
		return swapper.ApiQuote{}, ErrEngineClosed
	}
}

func (e *Engine) enqueue(m mutation) bool {
	select {
	case e.mutations <- m:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (e *Engine) runMutations() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case m := <-e.mutations:
			applied := e.apply(m)
			if m.result != nil {
				m.result <- applied
			}
		}
	}
}

// apply is only called from runMutations. A mutation requested before the
// last applied one is dropped, and automatic selection never replaces an
// executable quote.
func (e *Engine) apply(m mutation) bool {
	e.mu.Lock()
	if m.stamp < e.lastActiveStamp {
		e.mu.Unlock()
		return false
	}
	if m.auto && e.active != nil && e.active.Quote.IsExecutable() {
		e.mu.Unlock()
		return false
	}
	q := m.quote
	e.active = &q
	e.lastActiveStamp = m.stamp
	if q.Quote.IsExecutable() {
		e.haltLocked()
	}
	e.mu.Unlock()

	if m.auto {
		if err := e.store.SetConfirmedQuote(e.ctx, e.snapshot.TradeID, &q); err != nil {
			e.log.WithError(err).Warn("failed to store confirmed quote")
		}
	}
	if err := e.store.SetActiveQuote(e.ctx, e.snapshot.TradeID, &q); err != nil {
		e.log.WithError(err).Warn("failed to store active quote")
	}
	e.log.WithFields(logger.Fields{"swapper": q.SwapperName, "auto": m.auto}).Info("active quote updated")
	e.publish()
	return true
}

// haltLocked stops the pollers and settles loading entries on their
// previous answer. Responses already in flight are discarded as stale.
func (e *Engine) haltLocked() {
	if e.stopPollers == nil {
		return
	}
	e.stopPollers()
	e.stopPollers = nil
	for name, entry := range e.entries {
		if entry.Status != StatusLoading {
			continue
		}
		e.seqs[name]++
		e.entries[name] = &Entry{Status: StatusSettled, ApiQuote: entry.ApiQuote, Seq: e.seqs[name]}
	}
	e.log.WithField("generation", e.generation).Info("quote polling stopped")
}

// Quotes returns a copy of the current ApiQuoteSet.
func (e *Engine) Quotes() ApiQuoteSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quoteSetLocked()
}

func (e *Engine) quoteSetLocked() ApiQuoteSet {
	set := ApiQuoteSet{
		TradeID:    e.snapshot.TradeID,
		Generation: e.generation,
		Skipped:    e.input == nil,
		Entries:    make(map[string]Entry, len(e.entries)),
		Active:     e.active,
	}
	if e.input != nil {
		in := *e.input
		set.Input = &in
	}
	for name, entry := range e.entries {
		set.Entries[name] = *entry
	}
	return set
}

func (e *Engine) loadingLocked() bool {
	for _, entry := range e.entries {
		if entry.Status == StatusLoading {
			return true
		}
	}
	return false
}

// Subscribe returns a channel that always holds the most recent
// ApiQuoteSet; intermediate sets are dropped for slow readers. The channel
// is closed by the returned cancel func or by Close.
func (e *Engine) Subscribe() (<-chan ApiQuoteSet, func()) {
	ch := make(chan ApiQuoteSet, 1)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	e.subscribers[ch] = struct{}{}
	ch <- e.quoteSetLocked()
	e.mu.Unlock()

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
	}
}

func (e *Engine) publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.subscribers) == 0 {
		return
	}
	set := e.quoteSetLocked()
	for ch := range e.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- set
	}
}

// Close stops every poller and the mutation loop and waits for them.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.stopPollers != nil {
		e.stopPollers()
	}
	for ch := range e.subscribers {
		delete(e.subscribers, ch)
		close(ch)
	}
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}
