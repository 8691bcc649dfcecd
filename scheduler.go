package main

import (
	"context"
	"sync"
	"time"
)

// Scheduler reloads the city snapshot on a fixed interval.
type Scheduler struct {
	cfg        *apiConfig
	reloadChan <-chan time.Time
	ticker     *time.Ticker
	stop       chan struct{}
	done       chan struct{}
	reloadMu   sync.Mutex
	reloadJob  func(context.Context) (*snapshot, error)
}

func NewScheduler(cfg *apiConfig, interval time.Duration) *Scheduler {
	ticker := time.NewTicker(interval)
	s := &Scheduler{
		cfg:        cfg,
		reloadChan: ticker.C,
		ticker:     ticker,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.reloadJob = cfg.reloadSnapshot
	return s
}

func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.reloadChan:
				s.cfg.logger.Info("scheduler: reloading city data")
				if _, err := s.runReload(context.Background()); err != nil {
					s.cfg.logger.Error("scheduler: reload failed, keeping previous snapshot", "error", err)
				}
			case <-s.stop:
				s.cfg.logger.Info("scheduler: stopping")
				s.ticker.Stop()
				return
			}
		}
	}()
}

// Stop signals the scheduler to stop and waits until a reload in progress has finished.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// runReload runs one reload. Reloads never overlap.
func (s *Scheduler) runReload(ctx context.Context) (*snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.reloadJob(ctx)
}
