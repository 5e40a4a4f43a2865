package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/metrics"
	"github.com/pageza/ai-book/backend/internal/types"
)

// RecommendationService builds a prompt, calls the model once and extracts the result
type RecommendationService struct {
	completer Completer
	extractor *Extractor
	log       zerolog.Logger
}

// Ensure RecommendationService implements IRecommendationService
var _ IRecommendationService = (*RecommendationService)(nil)

// NewRecommendationService creates a new RecommendationService instance
func NewRecommendationService(completer Completer, extractor *Extractor) *RecommendationService {
	if extractor == nil {
		extractor = NewExtractor(ExtractorOptions{})
	}
	return &RecommendationService{
		completer: completer,
		extractor: extractor,
		log:       logging.With("recommendations"),
	}
}

// Recommend returns up to five recommendations for prefs.
// ErrTimeout and *UpstreamError are returned as-is; they never become an empty set.
func (s *RecommendationService) Recommend(ctx context.Context, prefs types.Preferences) (types.RecommendationSet, error) {
	start := time.Now()

	raw, err := s.completer.Complete(ctx, BuildPrompt(prefs))
	if err != nil {
		s.log.Warn().Err(err).Str("outcome", outcome(err)).Dur("elapsed", time.Since(start)).Msg("recommendation request failed")
		return types.RecommendationSet{}, err
	}

	set := s.extractor.Extract(raw)
	metrics.RecommendationsTotal.WithLabelValues(string(set.Tier)).Inc()

	s.log.Info().
		Str("tier", string(set.Tier)).
		Int("count", len(set.Items)).
		Bool("degraded", set.Degraded).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations served")
	return set, nil
}
