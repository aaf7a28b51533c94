//go:build wireinject
// +build wireinject

package di

import (
	"ChainPulse/pkg/config"
	"ChainPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		ProvideClickHouseClient,
		ProvideMarketStore,
		ProvideMarketSource,
		ProvideEventPublisher,

		ProvideAnalyzer,
		ProvideClassifier,
		ProvideMemeGenerator,
		ProvidePredictionTracker,
		ProvideTriggerEngine,
		ProvideNarrativeGenerator,
		ProvidePublisher,

		ProvideEngine,
		ProvideOpsHandler,
		ProvideApp,
	)
	return nil, nil
}
