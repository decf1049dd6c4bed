package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mygenetics/reportnav"
	"github.com/mygenetics/reportnav/internal/config"
	"github.com/mygenetics/reportnav/pkg/adapters/graphfile"
	"github.com/mygenetics/reportnav/pkg/adapters/memory"
	"github.com/mygenetics/reportnav/pkg/adapters/openai"
	redisAdapter "github.com/mygenetics/reportnav/pkg/adapters/redis"
	"github.com/mygenetics/reportnav/pkg/adapters/sqlcontent"
	"github.com/mygenetics/reportnav/pkg/dsl"
	"github.com/mygenetics/reportnav/pkg/observability"
	"github.com/mygenetics/reportnav/pkg/persistence/middleware"
	"github.com/mygenetics/reportnav/pkg/ports"
	"github.com/mygenetics/reportnav/pkg/report"
	"github.com/rs/zerolog"
)

// Resources holds the connections opened while building a bot.
type Resources struct {
	closers []func() error
}

func (r *Resources) add(fn func() error) {
	r.closers = append(r.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// LoadGraph returns the graph declared in path, or the built-in report when
// path is empty.
func LoadGraph(path string) (*dsl.Graph, error) {
	if path == "" {
		return report.Graph()
	}
	return graphfile.Load(path)
}

// BuildBot wires a bot from configuration. metrics may be nil.
// The returned Resources must be closed once the bot is no longer used.
func BuildBot(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (*reportnav.Bot, *Resources, error) {
	res := &Resources{}
	bot, err := buildBot(ctx, cfg, logger, metrics, res)
	if err != nil {
		_ = res.Close()
		return nil, nil, err
	}
	return bot, res, nil
}

func buildBot(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics, res *Resources) (*reportnav.Bot, error) {
	graph, err := LoadGraph(cfg.GraphFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	noop, err := reportnav.ParseNoOpPolicy(cfg.NoOpPolicy)
	if err != nil {
		return nil, err
	}

	opts := []reportnav.Option{
		reportnav.WithGraph(graph),
		reportnav.WithLogger(logger),
		reportnav.WithNoOpPolicy(noop),
		reportnav.WithLockTTL(cfg.LockTTL),
		reportnav.WithMaxInputSize(cfg.MaxInputSize),
	}
	if metrics != nil {
		opts = append(opts, reportnav.WithMetrics(metrics))
	}
	if logger.GetLevel() <= zerolog.DebugLevel {
		opts = append(opts, reportnav.WithLifecycleHooks(createDebugHooks(logger)))
	}

	// Sessions, locks and rate limiting.
	var store ports.SessionStore
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := redisAdapter.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		res.add(client.Close)

		redisStore := redisAdapter.NewFromClient(client,
			redisAdapter.WithTTL(cfg.SessionTTL),
			redisAdapter.WithPrefix(cfg.RedisPrefix),
		)
		if err := redisStore.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis unreachable: %w", err)
		}
		store = redisStore
		opts = append(opts, reportnav.WithLocker(redisAdapter.NewLocker(client, cfg.RedisPrefix)))
		if cfg.RateLimit > 0 {
			opts = append(opts, reportnav.WithRateLimiter(redisAdapter.NewLimiter(client, cfg.RedisPrefix, cfg.RateLimit, cfg.RateWindow)))
		}
		logger.Info().Str("prefix", cfg.RedisPrefix).Msg("using redis session store")
	default:
		store = memory.NewStore(memory.WithTTL(cfg.SessionTTL))
		if cfg.RateLimit > 0 {
			opts = append(opts, reportnav.WithRateLimiter(memory.NewLimiter(cfg.RateLimit, cfg.RateWindow)))
		}
	}
	if cfg.RateLimit == 0 {
		opts = append(opts, reportnav.WithRateLimiter(nil))
	}

	redactor, err := newRedactor(cfg)
	if err != nil {
		return nil, err
	}
	mws, err := sessionMiddleware(cfg, redactor)
	if err != nil {
		return nil, err
	}
	if len(mws) > 0 {
		logger.Info().Int("layers", len(mws)).Msg("session store protection enabled")
	}
	opts = append(opts, reportnav.WithStore(middleware.Chain(store, mws...)))

	// Content.
	switch cfg.ContentBackend {
	case config.BackendSQLite, config.BackendPostgres:
		contentOpts := []sqlcontent.Option{sqlcontent.WithLogger(logger)}
		if redactor != nil {
			contentOpts = append(contentOpts, sqlcontent.WithMask(redactor.Redact))
		}
		content, err := sqlcontent.Open(ctx, sqlcontent.Dialect(cfg.ContentBackend), cfg.ContentDSN, contentOpts...)
		if err != nil {
			return nil, err
		}
		res.add(content.Close)

		seeded, err := content.Seed(ctx, graph.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to seed content: %w", err)
		}
		logger.Info().Str("backend", cfg.ContentBackend).Int("seeded", seeded).Msg("using sql content store")
		opts = append(opts, reportnav.WithContent(content))
		if cfg.InteractionLog {
			opts = append(opts, reportnav.WithInteractionLog(content))
		}
	}

	// Question answering.
	if cfg.OpenAI.APIKey != "" {
		answerer, err := openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL,
			openai.WithModel(cfg.OpenAI.Model),
			openai.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reportnav.WithAnswerer(answerer))
		logger.Info().Str("model", cfg.OpenAI.Model).Msg("questions answered by openai")
	}

	return reportnav.New(opts...)
}

// newRedactor compiles the masking patterns enabled by cfg.
// It returns nil when nothing is masked.
func newRedactor(cfg *config.Config) (*middleware.Redactor, error) {
	var patterns []string
	if cfg.RedactQuestions {
		patterns = append(patterns, middleware.DefaultPIIPatterns...)
	}
	patterns = append(patterns, cfg.RedactPatterns...)
	if len(patterns) == 0 {
		return nil, nil
	}
	return middleware.NewRedactor(patterns)
}

// sessionMiddleware returns the at-rest protections enabled by cfg.
// Redaction runs before encryption so sealed sessions are already masked.
func sessionMiddleware(cfg *config.Config, redactor *middleware.Redactor) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if redactor != nil {
		mws = append(mws, redactor.Middleware())
	}

	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, encrypt)
	}
	return mws, nil
}
