package service

import (
	"context"
	"sync"

	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
)

// GenerateN runs n independent generations for keyword, each with its own
// retry budget, and returns the ones that succeeded in completion order.
// Exhausted runs are skipped. If ctx is done the results gathered so far are
// returned together with ctx.Err().
func (s *MemeService) GenerateN(ctx context.Context, keyword string, n, retryLimit int) ([]*domain.Generation, error) {
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if n <= 0 {
		return []*domain.Generation{}, nil
	}

	start := s.now()
	var (
		results []*domain.Generation
		err     error
	)
	if s.cfg.Workers <= 1 || n == 1 {
		results, err = s.generateSequential(ctx, keyword, n, retryLimit)
	} else {
		results, err = s.generateParallel(ctx, keyword, n, retryLimit)
	}

	logger.With(logger.Fields{
		logger.FieldKeyword: keyword,
		logger.FieldCount:   len(results),
		"requested":         n,
	}).WithDuration(start).Info(ctx, "Batch finished: %d/%d generated", len(results), n)

	return results, err
}

func (s *MemeService) generateSequential(ctx context.Context, keyword string, n, retryLimit int) ([]*domain.Generation, error) {
	results := make([]*domain.Generation, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		gen, err := s.Generate(ctx, keyword, retryLimit)
		if err != nil {
			return results, err
		}
		if gen == nil {
			logger.CtxWarn(ctx, "Run %d/%d produced no meme", i+1, n)
			continue
		}
		results = append(results, gen)
	}
	return results, nil
}

type batchResult struct {
	gen *domain.Generation
	err error
}

func (s *MemeService) generateParallel(ctx context.Context, keyword string, n, retryLimit int) ([]*domain.Generation, error) {
	workers := s.cfg.Workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	resultsChan := make(chan batchResult, n)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerCtx := logger.WithField(ctx, "worker_id", workerID)
			for range jobs {
				if workerCtx.Err() != nil {
					return
				}
				gen, err := s.Generate(workerCtx, keyword, retryLimit)
				resultsChan <- batchResult{gen: gen, err: err}
			}
		}(i)
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]*domain.Generation, 0, n)
	var firstErr error
	for r := range resultsChan {
		switch {
		case r.err != nil:
			if firstErr == nil {
				firstErr = r.err
			}
		case r.gen != nil:
			results = append(results, r.gen)
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, firstErr
}
