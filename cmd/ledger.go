package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/store"
)

// withLedger records a command invocation in the run ledger around fn.
// Ledger failures are logged, never fatal: bookkeeping must not block a
// scrape.
func withLedger(ctx context.Context, command, args string, fn func() (int, error)) error {
	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		zap.L().Warn("run ledger unavailable", zap.Error(err))
		_, runErr := fn()
		return runErr
	}
	defer s.Close()

	id, err := s.StartRun(ctx, command, args)
	if err != nil {
		zap.L().Warn("run ledger insert failed", zap.Error(err))
	}

	films, runErr := fn()
	if id != "" {
		if err := s.FinishRun(ctx, id, films, runErr); err != nil {
			zap.L().Warn("run ledger update failed", zap.Error(err))
		}
	}
	return runErr
}
