package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sedeval "github.com/jamesainslie/go-sedeval"
)

// ErrPoolClosed is returned when acquiring from a closed pool.
var ErrPoolClosed = errors.New("shard pool is closed")

// Shard is one independent set of accumulators. A shard is used by one
// goroutine at a time.
type Shard struct {
	Segment *sedeval.SegmentBasedMetrics
	Event   *sedeval.EventBasedMetrics
}

// NewShard creates empty segment and event engines from cfg.
func NewShard(cfg Config) (*Shard, error) {
	seg, err := sedeval.NewSegmentBasedMetrics(cfg.Labels, cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("segment engine: %w", err)
	}
	ev, err := sedeval.NewEventBasedMetrics(cfg.Labels, cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("event engine: %w", err)
	}
	return &Shard{Segment: seg, Event: ev}, nil
}

// Evaluate adds every file of a pair to both engines.
func (s *Shard) Evaluate(p Pair) error {
	for _, files := range splitByFile(p) {
		if err := s.Segment.Evaluate(files[0], files[1]); err != nil {
			return fmt.Errorf("segment: %w", err)
		}
		if err := s.Event.Evaluate(files[0], files[1]); err != nil {
			return fmt.Errorf("event: %w", err)
		}
	}
	return nil
}

// Merge adds the counts of other into s.
func (s *Shard) Merge(other *Shard) error {
	if err := s.Segment.Merge(other.Segment); err != nil {
		return err
	}
	return s.Event.Merge(other.Event)
}

// Pool hands out shards for concurrent evaluation and merges them when
// closed.
type Pool struct {
	shards chan *Shard
	size   int
	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool of n empty shards.
func NewPool(cfg Config, size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}

	pool := &Pool{
		shards: make(chan *Shard, size),
		size:   size,
	}
	for i := 0; i < size; i++ {
		shard, err := NewShard(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating shard %d: %w", i, err)
		}
		pool.shards <- shard
	}
	return pool, nil
}

// Acquire gets a shard from the pool, blocking if none is available.
// Respects context cancellation. Returns ErrPoolClosed if the pool is closed.
func (p *Pool) Acquire(ctx context.Context) (*Shard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case shard, ok := <-p.shards:
		if !ok {
			return nil, ErrPoolClosed
		}
		return shard, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a shard to the pool.
func (p *Pool) Release(s *Shard) {
	if s == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.shards <- s:
	default:
	}
}

// Close merges every shard into one and closes the pool. All acquired shards
// must have been released.
func (p *Pool) Close() (*Shard, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.closed = true
	close(p.shards)
	p.mu.Unlock()

	var total *Shard
	for shard := range p.shards {
		if total == nil {
			total = shard
			continue
		}
		if err := total.Merge(shard); err != nil {
			return nil, fmt.Errorf("merging shards: %w", err)
		}
	}
	if total == nil {
		return nil, errors.New("no shards to merge")
	}
	return total, nil
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}
