// Package scheduler runs the periodic showing maintenance sweeps.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/movie-ticketing/internal/repository"
)

// Scheduler owns the background sweeps over the showings table: the expire
// sweep closes showings whose finish time has passed or whose seats are
// exhausted, and the purge sweep deletes showings already closed. Both run
// on their own ticker and skip a round if the previous one is still going,
// so a slow database never stacks sweeps.
type Scheduler struct {
	showings *repository.ShowingRepo

	expireEvery time.Duration
	purgeEvery  time.Duration

	expireBusy atomic.Bool
	purgeBusy  atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(showings *repository.ShowingRepo, expireEvery, purgeEvery time.Duration) *Scheduler {
	return &Scheduler{
		showings:    showings,
		expireEvery: expireEvery,
		purgeEvery:  purgeEvery,
	}
}

// Start launches both sweep loops. Each runs once immediately so a restart
// does not leave stale showings open for a full interval.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go s.loop(ctx, "expire-sweep", s.expireEvery, &s.expireBusy, s.runExpire)
	go s.loop(ctx, "purge-sweep", s.purgeEvery, &s.purgeBusy, s.runPurge)
}

// Stop cancels the loops and waits for in-flight sweeps to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, busy *atomic.Bool, run func(context.Context)) {
	defer s.wg.Done()

	s.fire(ctx, name, busy, run)

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.fire(ctx, name, busy, run)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, name string, busy *atomic.Bool, run func(context.Context)) {
	if !busy.CompareAndSwap(false, true) {
		log.Printf("%s: previous round still running, skipping", name)
		return
	}
	defer busy.Store(false)
	run(ctx)
}

func (s *Scheduler) runExpire(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	n, err := s.showings.CloseExpiredAndFull(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("expire-sweep: %v", err)
		return
	}
	if n > 0 {
		log.Printf("expire-sweep: closed %d showings", n)
	}
}

func (s *Scheduler) runPurge(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	n, err := s.showings.PurgeClosed(ctx)
	if err != nil {
		log.Printf("purge-sweep: %v", err)
		return
	}
	if n > 0 {
		log.Printf("purge-sweep: deleted %d closed showings", n)
	}
}
