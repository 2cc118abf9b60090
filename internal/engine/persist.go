package engine

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Store is the persistent key/value collaborator.
//
//go:generate mockgen -source=persist.go -destination=mock_store_test.go -package=engine
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// persister performs store writes on its own goroutine so that engine
// commands never wait on I/O. Every payload is the full value for its key,
// so only the latest pending value per key is kept and enqueue never blocks.
type persister struct {
	store  Store
	logger hclog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string]string
	order   []string // pending keys, first queued first
	waiters []chan struct{}
	closed  bool

	done chan struct{}
}

func newPersister(store Store, logger hclog.Logger) *persister {
	p := &persister{
		store:   store,
		logger:  logger,
		pending: make(map[string]string),
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

func (p *persister) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for len(p.order) == 0 && len(p.waiters) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.order) == 0 {
			waiters, closed := p.waiters, p.closed
			p.waiters = nil
			p.mu.Unlock()

			for _, w := range waiters {
				close(w)
			}
			if closed {
				return
			}
			continue
		}
		key := p.order[0]
		p.order = p.order[1:]
		value := p.pending[key]
		delete(p.pending, key)
		p.mu.Unlock()

		p.write(key, value)
	}
}

func (p *persister) write(key, value string) {
	if err := p.store.Set(context.Background(), key, value); err != nil {
		p.logger.Error("persist failed", "key", key, "error", err)
		return
	}
	p.logger.Trace("persisted", "key", key, "bytes", len(value))
}

// enqueue records value as the next write for key, replacing any value
// still waiting for that key.
func (p *persister) enqueue(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if _, queued := p.pending[key]; !queued {
		p.order = append(p.order, key)
	} else {
		p.logger.Trace("coalesced write", "key", key)
	}
	p.pending[key] = value
	p.cond.Signal()
}

// flush returns once every write queued before it has been attempted.
func (p *persister) flush() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	done := make(chan struct{})
	p.waiters = append(p.waiters, done)
	p.cond.Signal()
	p.mu.Unlock()

	<-done
}

// close stops accepting writes and waits for pending ones to drain.
func (p *persister) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Signal()
	p.mu.Unlock()

	<-p.done
}
