package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

// attachSentiments classifies every review with at most s.workers calls in
// flight. Results are written by index so the upstream order survives.
func (s *DealershipService) attachSentiments(ctx context.Context, reviews []domain.Review) error {
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup

	for i := range reviews {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return fmt.Errorf("enrich reviews: %w", err)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			res := s.analyzer.Analyze(ctx, reviews[i].Review)
			reviews[i].Sentiment = res.Label
			if res.Provenance != domain.ProvenanceAnalyzed {
				log.Debug().
					Int64("review_id", reviews[i].ID).
					Str("provenance", string(res.Provenance)).
					Msg("review defaulted to neutral")
			}
		}(i)
	}
	wg.Wait()
	return nil
}
