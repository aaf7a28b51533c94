package publisher

import (
	"context"

	"ChainPulse/pkg/logger"
)

// NoopPublisher logs posts instead of sending them. Used when publishing
// is disabled in config, typically for local runs.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Post(_ context.Context, text string) error {
	p.log.Info("publishing disabled, dropping post", logger.String("text", text))
	return nil
}

func (p *NoopPublisher) RecentPosts(context.Context) ([]string, error) {
	return nil, nil
}
