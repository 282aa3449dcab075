package statusgram

import (
	"errors"
	"log/slog"
	"time"
)

// sgConfig holds mutable state during Statusgram construction.
type sgConfig struct {
	backendURL      string
	slug            string
	apiKey          string
	surfaces        []Surface
	refreshInterval time.Duration
	healthPort      int
	stateFile       string
	telegramToken   string
	customSink      Sink
	logger          *slog.Logger
	version         string
}

// Option configures a [Statusgram] instance during construction.
//
// Option implements the functional options pattern. Options return an
// error if validation fails.
type Option func(*sgConfig) error

// WithBackend sets the monitoring backend base URL and status-page
// slug. Required.
func WithBackend(baseURL, slug string) Option {
	return func(cfg *sgConfig) error {
		if baseURL == "" {
			return errors.New("backend URL cannot be empty")
		}
		if slug == "" {
			return errors.New("status page slug cannot be empty")
		}
		cfg.backendURL = baseURL
		cfg.slug = slug
		return nil
	}
}

// WithAPIKey sets the backend credential. It is attached as a bearer
// header on JSON endpoints and as basic auth on the metrics endpoint.
// Without a key, requests go out unauthenticated and only public data
// is expected back.
func WithAPIKey(key string) Option {
	return func(cfg *sgConfig) error {
		cfg.apiKey = key
		return nil
	}
}

// WithSurface adds a single [Surface]. Can be called multiple times;
// at least one surface is required.
func WithSurface(s Surface) Option {
	return func(cfg *sgConfig) error {
		cfg.surfaces = append(cfg.surfaces, s)
		return nil
	}
}

// WithSurfaces adds multiple [Surface] values at once.
func WithSurfaces(surfaces ...Surface) Option {
	return func(cfg *sgConfig) error {
		cfg.surfaces = append(cfg.surfaces, surfaces...)
		return nil
	}
}

// WithRefreshInterval sets how often the backend is polled and the
// surfaces reconciled. Defaults to 60 seconds.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *sgConfig) error {
		if d < time.Second {
			return errors.New("refresh interval must be at least 1s")
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithHealthPort sets the port for the liveness endpoint. Defaults to
// 3000. Pass 0 to disable the listener entirely.
func WithHealthPort(port int) Option {
	return func(cfg *sgConfig) error {
		if port < 0 || port > 65535 {
			return errors.New("health port must be between 0 and 65535")
		}
		cfg.healthPort = port
		return nil
	}
}

// WithStateFile enables persisting per-surface message ids to the
// given path so a restarted process edits its existing messages
// instead of reposting. Without it, state lives in memory only.
func WithStateFile(path string) Option {
	return func(cfg *sgConfig) error {
		cfg.stateFile = path
		return nil
	}
}

// WithTelegramToken configures the built-in Telegram sink. Exactly one
// of WithTelegramToken and [WithSink] must be provided.
func WithTelegramToken(token string) Option {
	return func(cfg *sgConfig) error {
		if token == "" {
			return errors.New("telegram token cannot be empty")
		}
		cfg.telegramToken = token
		return nil
	}
}

// WithSink configures a custom chat-platform [Sink] instead of the
// built-in Telegram one.
func WithSink(s Sink) Option {
	return func(cfg *sgConfig) error {
		if s == nil {
			return errors.New("sink cannot be nil")
		}
		cfg.customSink = s
		return nil
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(cfg *sgConfig) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = l
		return nil
	}
}

// WithVersion sets the version tag rendered into every footer.
func WithVersion(v string) Option {
	return func(cfg *sgConfig) error {
		cfg.version = v
		return nil
	}
}
