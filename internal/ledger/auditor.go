package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Auditor periodically re-verifies the whole ledger chain in the
// background. A failed sweep halts the manager (inside VerifyChain), so a
// tampered store stops accepting appends within one interval.
type Auditor struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewAuditor creates a background chain auditor. A zero interval disables
// the sweep; Start becomes a no-op.
func NewAuditor(manager *Manager, interval time.Duration, logger *slog.Logger) *Auditor {
	if manager == nil {
		panic("manager cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Auditor{
		manager:  manager,
		interval: interval,
		logger:   logger.With(slog.String("component", "ledger_auditor")),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the verification loop. It returns immediately; the loop
// runs until Stop is called.
func (a *Auditor) Start() {
	if a.interval <= 0 {
		a.logger.Info("periodic chain verification disabled")
		return
	}

	a.wg.Add(1)
	go a.run()

	a.logger.Info("ledger auditor started",
		slog.Duration("interval", a.interval))
}

// Stop signals the loop to exit and waits for it to finish. Safe to call
// multiple times and safe to call when Start was a no-op.
func (a *Auditor) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
	a.wg.Wait()
}

func (a *Auditor) run() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			a.logger.Info("ledger auditor stopped")
			return
		case <-ticker.C:
			a.sweep()
		}
	}
}

func (a *Auditor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	badSeq, err := a.manager.VerifyChain(ctx)
	if err != nil {
		a.logger.Error("periodic chain verification failed",
			slog.Uint64("first_bad_sequence", badSeq),
			slog.String("error", err.Error()))
		return
	}

	a.logger.Debug("periodic chain verification passed",
		slog.Duration("elapsed", time.Since(start)))
}
