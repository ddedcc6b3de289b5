package poller

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/technosupport/cctv-console/internal/metrics"
)

// Fetch issues exactly one GET and returns the payload.
type Fetch func(ctx context.Context) (interface{}, error)

// Apply replaces the destination state with a freshly fetched payload. It is
// never called with a partial value: replace, not merge.
type Apply func(v interface{})

// Poller runs one data feed: a fixed-interval ticker that issues one fetch
// per tick and replaces the owning view's state with the response.
//
// Semantics, all deliberate:
//   - a failed tick is logged and abandoned; previous state stays displayed
//     and the next tick retries at the same fixed interval, forever. No
//     backoff, no jitter;
//   - there is no queuing: if a tick's request is still outstanding when the
//     next tick fires, both run concurrently and apply in arrival order, so
//     the last-resolved response wins regardless of issue order;
//   - Stop cancels future ticks but not in-flight requests; a generation
//     counter makes late-arriving responses drop instead of writing into a
//     torn-down view.
type Poller struct {
	feed     string
	interval time.Duration
	fetch    Fetch
	apply    Apply

	gen      atomic.Uint64
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(feed string, interval time.Duration, fetch Fetch, apply Apply) *Poller {
	return &Poller{
		feed:     feed,
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		stopChan: make(chan struct{}),
	}
}

// Start begins the tick loop.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop cancels future ticks and invalidates the current generation, then
// waits for in-flight ticks to resolve (their responses are discarded).
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.gen.Add(1)
		close(p.stopChan)
	})
	p.wg.Wait()
}

func (p *Poller) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	gen := p.gen.Load()
	metrics.RecordTick(p.feed)

	// Each tick runs independently; overlapping requests are allowed.
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		v, err := p.fetch(context.Background())
		if err != nil {
			// Poll failures are never surfaced to the operator, only logged.
			log.Printf("[ERROR] Poller (%s): %v", p.feed, err)
			metrics.RecordFailure(p.feed)
			return
		}
		if p.gen.Load() != gen {
			metrics.RecordStale(p.feed)
			return
		}
		p.apply(v)
	}()
}
