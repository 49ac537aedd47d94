// ABOUTME: Asynchronous condensation pipeline for model turns
// ABOUTME: Summarize, embed, and index NEW rows with dedup and bounded retries
package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/harper/recall/internal/models"
	"github.com/harper/recall/internal/storage/sqlite"
	"github.com/harper/recall/internal/util"
)

// Summarizer produces a one-sentence summary of a model turn.
// Satisfied by llm.Client.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// PipelineConfig controls worker count, queue sizing, and the retry
// policy applied when summarization or embedding fails.
type PipelineConfig struct {
	Workers     int
	QueueDepth  int
	MaxAttempts int
	RetryDelay  time.Duration
}

// Pipeline drains NEW condensed rows in the background. Each model
// turn is summarized, the summary embedded, and the row flipped to
// INDEXED in one transaction. A turn is processed by at most one
// worker at a time; duplicate enqueues while a turn is queued or
// running are dropped. Any failure leaves the row NEW so a later
// retry or resweep can pick it up.
type Pipeline struct {
	store       *sqlite.Store
	summarizer  Summarizer
	embedder    Embedder
	workers     int
	maxAttempts int
	retryDelay  time.Duration

	queue  chan int64
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inFlight map[int64]bool
	attempts map[int64]int
}

func NewPipeline(store *sqlite.Store, summarizer Summarizer, embedder Embedder, cfg PipelineConfig) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 64
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Pipeline{
		store:       store,
		summarizer:  summarizer,
		embedder:    embedder,
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		queue:       make(chan int64, cfg.QueueDepth),
		inFlight:    make(map[int64]bool),
		attempts:    make(map[int64]int),
	}
}

// Start launches the worker pool and sweeps any rows left NEW by a
// previous run onto the queue.
func (p *Pipeline) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	if err := p.Resweep(); err != nil {
		log.Printf("[pipeline] startup resweep failed: %v", err)
	}
}

// Stop cancels in-progress work and waits for the workers to exit.
// Rows caught mid-flight stay NEW and are recovered on the next start.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Enqueue schedules condensation for the given model turn. Returns
// false when the turn is already queued or running, or when the queue
// is full; in both cases the row stays NEW and the resweep will find it.
func (p *Pipeline) Enqueue(rawMemoryID int64) bool {
	p.mu.Lock()
	if p.inFlight[rawMemoryID] {
		p.mu.Unlock()
		return false
	}
	p.inFlight[rawMemoryID] = true
	p.mu.Unlock()

	select {
	case p.queue <- rawMemoryID:
		return true
	default:
		p.clearInFlight(rawMemoryID)
		log.Printf("[pipeline] queue full, deferring turn %d to resweep", rawMemoryID)
		return false
	}
}

// Resweep enqueues every condensed row still in NEW status.
func (p *Pipeline) Resweep() error {
	pending, err := p.store.PendingCondensed()
	if err != nil {
		return err
	}
	for _, c := range pending {
		p.Enqueue(c.RawMemoryID)
	}
	return nil
}

// PendingCount reports how many condensed rows remain unindexed.
func (p *Pipeline) PendingCount() (int, error) {
	return p.store.PendingCount()
}

func (p *Pipeline) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case rawMemoryID := <-p.queue:
			err := p.process(ctx, rawMemoryID)
			p.clearInFlight(rawMemoryID)
			p.afterAttempt(ctx, rawMemoryID, err)
		}
	}
}

// process condenses one model turn. Already-indexed rows and rows
// whose turn was deleted mid-flight are treated as done.
func (p *Pipeline) process(ctx context.Context, rawMemoryID int64) error {
	condensed, err := p.store.GetCondensedByRawMemoryID(rawMemoryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	if condensed.Indexed() {
		return nil
	}

	raw, err := p.store.GetRawMemory(rawMemoryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}

	summary, err := p.summarizer.Summarize(ctx, raw.Text)
	if err != nil {
		return err
	}
	vector, err := p.embedder.Embed(ctx, summary)
	if err != nil {
		return err
	}

	if err := p.store.MarkIndexed(condensed.ID, summary, vector); err != nil {
		return err
	}
	log.Printf("[pipeline] indexed turn %d (condensed %d)", rawMemoryID, condensed.ID)
	return nil
}

// afterAttempt clears retry state on success and schedules a delayed
// re-enqueue on transient failure. Vector dimension problems are
// configuration errors, not transient ones, so those rows wait NEW
// until the operator fixes the embedding setup.
func (p *Pipeline) afterAttempt(ctx context.Context, rawMemoryID int64, err error) {
	if err == nil {
		p.mu.Lock()
		delete(p.attempts, rawMemoryID)
		p.mu.Unlock()
		return
	}
	if errors.Is(err, models.ErrInvalidVector) {
		log.Printf("[pipeline] turn %d left unindexed: %v", rawMemoryID, err)
		p.mu.Lock()
		delete(p.attempts, rawMemoryID)
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.attempts[rawMemoryID]++
	attempt := p.attempts[rawMemoryID]
	if attempt >= p.maxAttempts {
		delete(p.attempts, rawMemoryID)
		p.mu.Unlock()
		log.Printf("[pipeline] turn %d failed %d times, waiting for resweep: %v", rawMemoryID, attempt, err)
		return
	}
	p.mu.Unlock()

	delay := util.Backoff(p.retryDelay, attempt)
	log.Printf("[pipeline] turn %d failed (attempt %d), retrying in %s: %v", rawMemoryID, attempt, delay, err)
	time.AfterFunc(delay, func() {
		select {
		case <-ctx.Done():
		default:
			p.Enqueue(rawMemoryID)
		}
	})
}

func (p *Pipeline) clearInFlight(rawMemoryID int64) {
	p.mu.Lock()
	delete(p.inFlight, rawMemoryID)
	p.mu.Unlock()
}
