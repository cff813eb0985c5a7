package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"otos_backend/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// rankingCacheTTL bounds leaderboard staleness. Rankings are read far more
// often than scores change, so short-lived caching is enough.
const rankingCacheTTL = 5 * time.Minute

const defaultRankingLimit = 50

// RankingService serves leaderboards, cached in Redis when available.
type RankingService struct {
	RankingRepo *repository.RankingRepository
	Redis       *redis.Client
	Logger      *zap.Logger
}

func NewRankingService(rankingRepo *repository.RankingRepository, rdb *redis.Client, logger *zap.Logger) *RankingService {
	return &RankingService{RankingRepo: rankingRepo, Redis: rdb, Logger: logger}
}

func (s *RankingService) OverallAverage(ctx context.Context, limit int) ([]repository.RankingRow, error) {
	return s.cached(ctx, "ranking:overall", limit, func(limit int) ([]repository.RankingRow, error) {
		return s.RankingRepo.OverallAverage(limit)
	})
}

func (s *RankingService) CategoryBest(ctx context.Context, categoryID uint, limit int) ([]repository.RankingRow, error) {
	key := fmt.Sprintf("ranking:category:%d:best", categoryID)
	return s.cached(ctx, key, limit, func(limit int) ([]repository.RankingRow, error) {
		return s.RankingRepo.CategoryBest(categoryID, limit)
	})
}

func (s *RankingService) CategoryAverage(ctx context.Context, categoryID uint, limit int) ([]repository.RankingRow, error) {
	key := fmt.Sprintf("ranking:category:%d:average", categoryID)
	return s.cached(ctx, key, limit, func(limit int) ([]repository.RankingRow, error) {
		return s.RankingRepo.CategoryAverage(categoryID, limit)
	})
}

func (s *RankingService) PackageBest(ctx context.Context, packageID uint, limit int) ([]repository.RankingRow, error) {
	key := fmt.Sprintf("ranking:package:%d:best", packageID)
	return s.cached(ctx, key, limit, func(limit int) ([]repository.RankingRow, error) {
		return s.RankingRepo.PackageBest(packageID, limit)
	})
}

// cached wraps a leaderboard query with a Redis JSON cache. Cache failures
// degrade to a direct query, never to an error.
func (s *RankingService) cached(ctx context.Context, key string, limit int, query func(int) ([]repository.RankingRow, error)) ([]repository.RankingRow, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultRankingLimit
	}
	key = fmt.Sprintf("%s:%d", key, limit)

	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var rows []repository.RankingRow
			if err := json.Unmarshal([]byte(raw), &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := query(limit)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(rows); err == nil {
			if err := s.Redis.Set(ctx, key, raw, rankingCacheTTL).Err(); err != nil {
				s.Logger.Warn("ranking cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return rows, nil
}
