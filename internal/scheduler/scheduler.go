// Package scheduler fans polling out across every ready group with
// bounded concurrency, guarded by a single process-wide lock so two
// overlapping "update" runs never trample each other -- spec.md §4.F,
// grounded on _examples/original_source/update.py's run_tasks.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/lockfile"
	"github.com/go-while/pnntprss/internal/poller"
	"github.com/go-while/pnntprss/internal/store"
)

// Scheduler dispatches poll work across groups.
type Scheduler struct {
	Settings *config.Settings
	Poller   *poller.Poller
	Lock     *lockfile.Lock
}

// New builds a Scheduler guarded by BaseDir/update.lock.
func New(settings *config.Settings) *Scheduler {
	return &Scheduler{
		Settings: settings,
		Poller:   poller.New(settings),
		Lock:     lockfile.New(filepath.Join(settings.BaseDir, "update.lock"), time.Duration(settings.LockExpirySecs)*time.Second),
	}
}

// Run polls every group whose ready_to_check is true, with at most
// Settings.FeedPollConcurrency concurrent pollers in flight. It
// refreshes the process-wide lock between dispatches and stops
// issuing new work (without erroring) if that lock is snatched out
// from under it mid-run.
func (s *Scheduler) Run(ctx context.Context) error {
	ok, err := s.Lock.TryLock()
	if err != nil {
		return fmt.Errorf("scheduler: trylock update.lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("scheduler: another update run is already in progress")
	}
	defer s.Lock.Unlock()

	names, err := store.ListGroups(s.Settings)
	if err != nil {
		return fmt.Errorf("scheduler: list groups: %w", err)
	}

	var ready []string
	now := time.Now()
	for _, name := range names {
		g, err := store.Load(s.Settings, name)
		if err != nil {
			log.Printf("scheduler: load %s: %v", name, err)
			continue
		}
		cfg, err := g.LoadConfig()
		if err != nil {
			log.Printf("scheduler: load config %s: %v", name, err)
			continue
		}
		if g.ReadyToCheck(cfg, now, s.Settings.FeedPollInterval) {
			ready = append(ready, name)
		}
	}

	s.dispatch(ctx, ready, true)
	return nil
}

// RunNames polls exactly the named groups, ignoring ready_to_check --
// the explicit-name form used by `pnntprss-update NAME...`.
func (s *Scheduler) RunNames(ctx context.Context, names []string) error {
	ok, err := s.Lock.TryLock()
	if err != nil {
		return fmt.Errorf("scheduler: trylock update.lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("scheduler: another update run is already in progress")
	}
	defer s.Lock.Unlock()

	s.dispatch(ctx, names, false)
	return nil
}

func (s *Scheduler) dispatch(ctx context.Context, names []string, touchBetween bool) {
	concurrency := s.Settings.FeedPollConcurrency
	if concurrency <= 0 {
		concurrency = config.DefaultFeedPollConcurrency
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, name := range names {
		if touchBetween {
			touched, err := s.Lock.Touch()
			if err != nil {
				log.Printf("scheduler: touch update.lock: %v", err)
			}
			if !touched {
				log.Printf("scheduler: update.lock snatched, stopping dispatch early")
				break
			}
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()

			g, err := store.Load(s.Settings, name)
			if err != nil {
				log.Printf("scheduler: load %s: %v", name, err)
				return
			}
			if err := s.Poller.Poll(ctx, g); err != nil {
				log.Printf("scheduler: poll %s: %v", name, err)
			}
		}(name)
	}

	wg.Wait()
}
