package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

const (
	seedLockKey = "lock:catalog-seed"
	seedLockTTL = 30 * time.Second
	seedTimeout = 30 * time.Second
)

// CatalogService owns the car make/model catalog. Reads seed an empty catalog
// first; seeding runs at most once per process and once across processes
// sharing the lock.
type CatalogService struct {
	repo   domain.CatalogRepository
	locker domain.Locker // optional
	seed   []domain.SeedMake

	seeded atomic.Bool
	group  singleflight.Group
}

func NewCatalogService(r domain.CatalogRepository, l domain.Locker) *CatalogService {
	return &CatalogService{repo: r, locker: l, seed: DefaultSeed()}
}

// WithSeed replaces the dataset used by EnsureSeeded.
func (s *CatalogService) WithSeed(seed []domain.SeedMake) *CatalogService {
	s.seed = seed
	return s
}

// ListCars returns every model with its make name, seeding an empty catalog first.
func (s *CatalogService) ListCars(ctx context.Context) ([]domain.CarListing, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	if cars == nil {
		cars = []domain.CarListing{}
	}
	return cars, nil
}

// EnsureSeeded populates the catalog when it holds no makes. Concurrent callers
// share one run; a failed run is retried by the next caller.
func (s *CatalogService) EnsureSeeded(ctx context.Context) error {
	if s.seeded.Load() {
		return nil
	}
	_, err, shared := s.group.Do("seed", func() (any, error) {
		if s.seeded.Load() {
			return nil, nil
		}
		// one caller's cancellation must not fail the others waiting on this run
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), seedTimeout)
		defer cancel()

		var err error
		if s.locker != nil {
			err = s.locker.WithLock(runCtx, seedLockKey, seedLockTTL, s.seedIfEmpty)
		} else {
			err = s.seedIfEmpty(runCtx)
		}
		if err != nil {
			return nil, err
		}
		s.seeded.Store(true)
		return nil, nil
	})
	if err != nil {
		log.Error().Err(err).Bool("shared", shared).Msg("catalog seeding failed")
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func (s *CatalogService) seedIfEmpty(ctx context.Context) error {
	n, err := s.repo.CountMakes(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Debug().Int64("makes", n).Msg("catalog already populated")
		return nil
	}
	for _, sm := range s.seed {
		if err := validateStruct(sm.Make); err != nil {
			return fmt.Errorf("seed make %q: %w", sm.Make.Name, err)
		}
		for _, m := range sm.Models {
			if err := validateStruct(m); err != nil {
				return fmt.Errorf("seed model %q: %w", m.Name, err)
			}
		}
	}
	start := time.Now()
	if err := s.repo.SeedIfAbsent(ctx, s.seed); err != nil {
		return err
	}
	log.Info().Int("makes", len(s.seed)).Dur("took", time.Since(start)).Msg("catalog seeded")
	return nil
}

// AddMake stores a new make; names are unique.
func (s *CatalogService) AddMake(ctx context.Context, m domain.CarMake) (domain.CarMake, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := validateStruct(m); err != nil {
		return domain.CarMake{}, err
	}
	if _, err := s.repo.MakeByName(ctx, m.Name); err == nil {
		return domain.CarMake{}, fmt.Errorf("make %q: %w", m.Name, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.CarMake{}, err
	}
	id, err := s.repo.InsertMake(ctx, m)
	if err != nil {
		return domain.CarMake{}, err
	}
	m.ID = id
	return m, nil
}

// AddModel stores a model under the make called makeName. An empty type
// defaults to Sedan; the year must fall within the catalog's range.
func (s *CatalogService) AddModel(ctx context.Context, makeName string, m domain.CarModel) (domain.CarModel, error) {
	if strings.TrimSpace(m.Type) == "" {
		m.Type = domain.DefaultModelType
	}
	if err := validateStruct(m); err != nil {
		return domain.CarModel{}, err
	}
	mk, err := s.repo.MakeByName(ctx, strings.TrimSpace(makeName))
	if err != nil {
		return domain.CarModel{}, fmt.Errorf("make %q: %w", makeName, err)
	}
	m.MakeID = mk.ID
	id, err := s.repo.InsertModel(ctx, m)
	if err != nil {
		return domain.CarModel{}, err
	}
	m.ID = id
	return m, nil
}
