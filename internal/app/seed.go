package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"minihotel/internal/domain"
)

// SeedService writes a set of rooms into the catalog store and drops the
// cached copies of whatever it wrote.
type SeedService struct {
	store   domain.RoomWriter
	catalog *CatalogService
	workers int64
}

func NewSeedService(store domain.RoomWriter, catalog *CatalogService, workers int) *SeedService {
	if workers < 1 {
		workers = 1
	}
	return &SeedService{store: store, catalog: catalog, workers: int64(workers)}
}

// Seed upserts rooms with at most `workers` writes in flight. Failed rooms
// are logged and skipped; the returned error reports how many failed.
func (s *SeedService) Seed(ctx context.Context, rooms []domain.Room) (int, error) {
	sem := semaphore.NewWeighted(s.workers)
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		seeded []int64
		failed int
	)

	for _, room := range rooms {
		// acquire before launching the goroutine; release inside it
		err := ctx.Err()
		if err == nil {
			err = sem.Acquire(ctx, 1)
		}
		if err != nil {
			wg.Wait()
			return len(seeded), fmt.Errorf("seed: %w", err)
		}

		wg.Add(1)
		go func(r domain.Room) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.store.UpsertRoom(ctx, r); err != nil {
				log.Warn().Int64("id", r.ID).Err(err).Msg("seed room failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			log.Info().Int64("id", r.ID).Str("name", r.Name).Msg("seed room ok")
			mu.Lock()
			seeded = append(seeded, r.ID)
			mu.Unlock()
		}(room)
	}
	wg.Wait()

	if s.catalog != nil {
		s.catalog.Invalidate(ctx, seeded...)
	}
	if failed > 0 {
		return len(seeded), fmt.Errorf("seed: %d of %d rooms failed", failed, len(rooms))
	}
	return len(seeded), nil
}
