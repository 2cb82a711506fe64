package service

import (
	"context"
	"encoding/json"
	"time"

	"itumy-key-api/internal/cache"
	"itumy-key-api/internal/model"
	"itumy-key-api/internal/repository"
)

const statsCacheKey = "itumy:stats:overview"

// StatsService serves aggregate counts for the admin stats endpoint,
// read-through cached. Stats are a derived view of current stored state;
// no sweep runs here.
type StatsService struct {
	repo  repository.UserKeyRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewStatsService creates a stats service.
func NewStatsService(repo repository.UserKeyRepository, c cache.Cache, ttl time.Duration) *StatsService {
	return &StatsService{
		repo:  repo,
		cache: c,
		ttl:   ttl,
	}
}

// Overview returns the aggregate counts, from cache when fresh.
func (s *StatsService) Overview(ctx context.Context) (*model.Stats, error) {
	data, err := s.cache.GetOrSet(ctx, statsCacheKey, s.ttl, func() ([]byte, error) {
		stats, err := s.repo.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(stats)
	})
	if err != nil {
		return nil, err
	}

	var stats model.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
