package services

import (
	"coinbot/internal/providers"
	"context"
	"fmt"
)

type FollowerServiceInterface interface {
	Poll(ctx context.Context)
}

type FollowerService struct {
	source      FollowerSource
	stats       StatsServiceInterface
	broadcaster Broadcaster
	persister   Persister
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func NewFollowerService(source FollowerSource, stats StatsServiceInterface, broadcaster Broadcaster, persister Persister, logger providers.Logger, metrics providers.MetricsProviderInterface) *FollowerService {
	return &FollowerService{
		source:      source,
		stats:       stats,
		broadcaster: broadcaster,
		persister:   persister,
		logger:      logger,
		metrics:     metrics,
	}
}

// Poll checks the latest follower and samples the viewer count. Upstream
// failures are logged and the affected part is skipped.
func (s *FollowerService) Poll(ctx context.Context) {
	changed := false

	follower, err := s.source.LatestFollower(ctx)
	switch {
	case err != nil:
		s.logger.Warnf(providers.TypeTimer, "Follower poll error: %s", err)
	case follower != nil:
		if s.stats.RecordFollower(follower.ID) {
			s.logger.Infof(providers.TypeTimer, "New follower %s", follower.Name)
			s.metrics.IncBroadcasts("follow")
			s.broadcaster.Broadcast(fmt.Sprintf("Thank you for following @%s", follower.Name))
		}
		changed = true
	}

	count, live, err := s.source.ViewerCount(ctx)
	switch {
	case err != nil:
		s.logger.Warnf(providers.TypeTimer, "Viewer sample error: %s", err)
	case live:
		s.stats.RecordViewers(count)
		changed = true
	}

	if changed {
		_ = s.persister.Persist()
	}
}
