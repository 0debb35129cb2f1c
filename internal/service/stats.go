package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"culfs/internal/core/cache"
	"culfs/internal/domain"
)

const statsKey = "stats:summary"

type StatsService struct {
	*base
	ttl time.Duration
}

type Summary struct {
	TotalReports  int64                        `json:"totalReports"`
	TotalFound    int64                        `json:"totalFound"`
	TotalMatched  int64                        `json:"totalMatched"`
	TotalClaimed  int64                        `json:"totalClaimed"`
	LostByStatus  map[domain.LostStatus]int64  `json:"lostByStatus"`
	FoundByStatus map[domain.FoundStatus]int64 `json:"foundByStatus"`
}

// Summary 管理端看板统计，经 Redis 短暂缓存
func (s *StatsService) Summary(ctx context.Context, actor domain.Session) (*Summary, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return cache.GetOrLoadJSON(s.cache, ctx, statsKey, ttl, s.compute)
}

func (s *StatsService) compute(ctx context.Context) (*Summary, error) {
	var (
		lost  map[domain.LostStatus]int64
		found map[domain.FoundStatus]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lost, err = s.store.LostItems.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		found, err = s.store.FoundItems.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Summary{LostByStatus: lost, FoundByStatus: found}
	for _, n := range lost {
		out.TotalReports += n
	}
	for _, n := range found {
		out.TotalFound += n
	}
	out.TotalMatched = lost[domain.LostMatched]
	out.TotalClaimed = lost[domain.LostClaimed]
	return out, nil
}
