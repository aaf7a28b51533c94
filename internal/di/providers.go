package di

import (
	"fmt"

	"ChainPulse/internal/domain/repository"
	domservice "ChainPulse/internal/domain/service"
	"ChainPulse/internal/handler/api"
	internalrepo "ChainPulse/internal/repository"
	"ChainPulse/internal/service/coingecko"
	"ChainPulse/internal/service/narrative"
	"ChainPulse/internal/service/publisher"
	"ChainPulse/internal/services/analytics"
	"ChainPulse/internal/usecase"
	"ChainPulse/pkg/cache"
	pkgch "ChainPulse/pkg/clickhouse"
	"ChainPulse/pkg/config"
	xhttp "ChainPulse/pkg/http"
	pkgkafka "ChainPulse/pkg/kafka"
	"ChainPulse/pkg/logger"
	"ChainPulse/pkg/metrics"
	"ChainPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache builds the response cache: in-process only, or layered
// over Redis when enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	mem := cache.NewMemoryCache()
	if !cfg.Redis.Enabled {
		return mem, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithCredentials(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(mem, rc), nil
}

// ProvideClickHouseClient creates the ClickHouse connection pool. Schema
// creation is the store's job so it participates in the startup retry
// budget.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideMarketStore creates the ClickHouse-backed store.
func ProvideMarketStore(ch *pkgch.Client, log *logger.Logger) repository.MarketStore {
	return internalrepo.NewCHMarketStore(ch, log)
}

// ProvideMarketSource creates the rate-limited market data client.
func ProvideMarketSource(cfg *config.Config, cacheSvc cache.Service, log *logger.Logger, m repository.Metrics) repository.MarketSource {
	return coingecko.New(cfg, cacheSvc, log, coingecko.WithMetrics(m))
}

// ProvideEventPublisher creates the Kafka post-event publisher, or a
// no-op when no brokers are configured.
func ProvideEventPublisher(cfg *config.Config, log *logger.Logger) (repository.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka disabled, post events will be dropped")
		return internalrepo.NoopEventPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic, log), nil
}

// ProvideAnalyzer creates the trend/correlation analyzer.
func ProvideAnalyzer(cfg *config.Config, log *logger.Logger) *analytics.Analyzer {
	return analytics.NewAnalyzer(cfg.Triggers.VolumeTrendThreshold, log)
}

// ProvideClassifier creates the mood classifier.
func ProvideClassifier() *analytics.Classifier {
	return analytics.NewClassifier()
}

// ProvideMemeGenerator creates the phrase generator with its default
// random source.
func ProvideMemeGenerator() *analytics.MemeGenerator {
	return analytics.NewMemeGenerator(nil)
}

// ProvidePredictionTracker creates the prediction tracker.
func ProvidePredictionTracker(cfg *config.Config) *usecase.PredictionTracker {
	return usecase.NewPredictionTracker(cfg.Predictions.Retention)
}

// ProvideTriggerEngine creates the post/no-post decision engine.
func ProvideTriggerEngine(cfg *config.Config, analyzer *analytics.Analyzer, store repository.MarketStore, log *logger.Logger) *usecase.TriggerEngine {
	return usecase.NewTriggerEngine(cfg, analyzer, store, log)
}

// ProvideNarrativeGenerator creates the LLM-backed narrative generator.
func ProvideNarrativeGenerator(cfg *config.Config, log *logger.Logger) domservice.NarrativeGenerator {
	return narrative.NewGenerator(cfg, log)
}

// ProvidePublisher creates the outbound post publisher.
func ProvidePublisher(cfg *config.Config, log *logger.Logger) domservice.Publisher {
	if !cfg.Publisher.Enabled {
		log.Info("publishing disabled, posts will be logged only")
		return publisher.NewNoopPublisher(log)
	}
	return publisher.NewHTTPPublisher(cfg, log)
}

// ProvideEngine creates the cycle orchestrator.
func ProvideEngine(
	cfg *config.Config,
	source repository.MarketSource,
	store repository.MarketStore,
	events repository.EventPublisher,
	m repository.Metrics,
	analyzer *analytics.Analyzer,
	classifier *analytics.Classifier,
	memes *analytics.MemeGenerator,
	tracker *usecase.PredictionTracker,
	trigger *usecase.TriggerEngine,
	gen domservice.NarrativeGenerator,
	pub domservice.Publisher,
	log *logger.Logger,
) *usecase.Engine {
	return usecase.NewEngine(cfg, source, store, events, m,
		analyzer, classifier, memes, tracker, trigger, gen, pub, log)
}

// ProvideOpsHandler creates the HTTP handler for the ops API.
func ProvideOpsHandler(cfg *config.Config, log *logger.Logger, source repository.MarketSource, store repository.MarketStore, tracker *usecase.PredictionTracker) xhttp.Handler {
	return api.NewOpsHandler(cfg, log, source, store, tracker)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	engine *usecase.Engine,
	store repository.MarketStore,
	events repository.EventPublisher,
	cacheSvc cache.Service,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, engine, store, events, cacheSvc, handler)
}
