package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"estate_dashboard/internal/domain"
)

type ImportService struct {
	src  domain.ListingSource
	repo domain.ListingRepository
}

func NewImportService(src domain.ListingSource, r domain.ListingRepository) *ImportService {
	return &ImportService{src: src, repo: r}
}

// Import replaces the repository contents with the source table. Batches of
// batchSize rows are inserted by up to workers goroutines at a time. The
// repository only serves the table once every batch has landed.
func (s *ImportService) Import(ctx context.Context, batchSize, workers int) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("import: batch size must be positive, got %d", batchSize)
	}
	if workers <= 0 {
		workers = 1
	}

	t, err := s.src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("import: load source: %w", err)
	}

	// columns first so a reader never sees rows without their header
	if err := s.repo.Truncate(ctx); err != nil {
		return 0, fmt.Errorf("import: truncate: %w", err)
	}
	if err := s.repo.SaveColumns(ctx, t.Columns); err != nil {
		return 0, fmt.Errorf("import: save columns: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(t.Rows); start += batchSize {
		end := start + batchSize
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		batch := t.Rows[start:end]

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		go func(from int, rows []domain.Listing) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.repo.InsertListings(ctx, rows); err != nil {
				log.Warn().Int("from", from).Int("rows", len(rows)).Err(err).Msg("batch insert failed")
				fail(fmt.Errorf("import: insert rows %d-%d: %w", from, from+len(rows)-1, err))
				return
			}
			log.Debug().Int("from", from).Int("rows", len(rows)).Msg("batch inserted")
		}(start, batch)
	}
	wg.Wait()

	if firstErr != nil {
		return 0, firstErr
	}
	if err := s.repo.MarkComplete(ctx, t.Len()); err != nil {
		return 0, fmt.Errorf("import: mark complete: %w", err)
	}
	return t.Len(), nil
}
