package statusgram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/noopnet/statusgram/internal/health"
	"github.com/noopnet/statusgram/internal/kuma"
	"github.com/noopnet/statusgram/internal/reconcile"
	"github.com/noopnet/statusgram/internal/state"
	"github.com/noopnet/statusgram/internal/telegram"
	"github.com/noopnet/statusgram/internal/view"
)

const (
	defaultRefreshInterval = 60 * time.Second
	defaultHealthPort      = 3000
)

// Statusgram is the engine keeping chat surfaces synchronized with a
// monitoring backend.
//
// Each refresh cycle fetches the backend once, then renders and
// reconciles every configured surface against its previously posted
// message, editing in place rather than spamming new messages. It is
// created with [New] and started with [Statusgram.Start].
//
// The typical lifecycle is:
//
//	sg, err := statusgram.New(
//	    statusgram.WithBackend("https://uptime.example.net", "default"),
//	    statusgram.WithTelegramToken(token),
//	    statusgram.WithSurface(surface),
//	)
//	if err != nil {
//	    slog.Error("failed to create statusgram", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	sg.Start(ctx) // blocks until context cancelled
type Statusgram struct {
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

// New creates a [Statusgram] instance with the given options.
//
// A backend ([WithBackend]), at least one surface ([WithSurface]), and
// exactly one sink ([WithTelegramToken] or [WithSink]) are required.
// Other options have defaults: refresh interval 60s, health port 3000,
// no state file.
func New(opts ...Option) (*Statusgram, error) {
	cfg := &sgConfig{
		refreshInterval: defaultRefreshInterval,
		healthPort:      defaultHealthPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.backendURL == "" {
		return nil, errors.New("a backend is required (use WithBackend)")
	}
	if len(cfg.surfaces) == 0 {
		return nil, errors.New("at least one surface is required")
	}
	if cfg.telegramToken == "" && cfg.customSink == nil {
		return nil, errors.New("a message sink is required (use WithTelegramToken or WithSink)")
	}
	if cfg.telegramToken != "" && cfg.customSink != nil {
		return nil, errors.New("WithTelegramToken and WithSink are mutually exclusive")
	}

	// surface names key logs and the persisted state file
	seen := make(map[string]bool, len(cfg.surfaces))
	for _, s := range cfg.surfaces {
		if seen[s.name] {
			return nil, fmt.Errorf("duplicate surface name: %q", s.name)
		}
		seen[s.name] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Statusgram{
		backendURL:      cfg.backendURL,
		slug:            cfg.slug,
		apiKey:          cfg.apiKey,
		surfaces:        cfg.surfaces,
		refreshInterval: cfg.refreshInterval,
		healthPort:      cfg.healthPort,
		stateFile:       cfg.stateFile,
		telegramToken:   cfg.telegramToken,
		customSink:      cfg.customSink,
		logger:          logger,
		version:         cfg.version,
	}, nil
}

// Start runs the engine until the context is cancelled.
//
// On startup it connects the sink, restores persisted message ids,
// best-effort purges destinations that have no remembered message, and
// then runs the first full cycle immediately — subsequent cycles
// follow at the refresh interval. Errors inside a cycle are logged and
// never fatal: a failed backend fetch skips the cycle, a failed
// surface update leaves that surface to retry next cycle.
//
// Returns nil on graceful shutdown. Returns an error only for startup
// failures (bad backend URL, sink login, health port conflict).
func (sg *Statusgram) Start(ctx context.Context) error {
	sg.logger.Info("statusgram starting",
		"surface_count", len(sg.surfaces),
		"backend", sg.backendURL,
		"slug", sg.slug,
	)
	sg.logger.Info("refresh configured", "interval", sg.refreshInterval.String())

	if ctx.Err() != nil {
		return nil
	}

	source, err := kuma.NewSource(sg.backendURL, sg.slug, sg.apiKey)
	if err != nil {
		return fmt.Errorf("failed to configure backend: %w", err)
	}
	defer source.Close()

	sink, err := sg.buildSink()
	if err != nil {
		return err
	}
	rec := reconcile.New(sink, sg.logger)

	states, store, err := sg.restoreStates()
	if err != nil {
		return err
	}

	if sg.healthPort > 0 {
		hs := health.NewServer(sg.healthPort, sg.logger)
		if err := hs.Start(ctx); err != nil {
			return err
		}
		sg.logger.Info("health endpoint available", "port", sg.healthPort)
	}

	// clean start only where no previous message was restored; a
	// restored message must survive to be edited in place
	for _, st := range states {
		if st.LastMessageID == "" {
			rec.Purge(ctx, st)
		}
	}

	sg.runCycle(ctx, source, rec, states, store)

	ticker := time.NewTicker(sg.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sg.logger.Info("statusgram stopped")
			return nil
		case <-ticker.C:
			sg.runCycle(ctx, source, rec, states, store)
		}
	}
}

// buildSink connects the configured sink.
func (sg *Statusgram) buildSink() (reconcile.Sink, error) {
	if sg.customSink != nil {
		return sinkAdapter{sink: sg.customSink}, nil
	}
	tg, err := telegram.New(sg.telegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect sink: %w", err)
	}
	return tg, nil
}

// restoreStates builds the per-surface reconciliation state, seeded
// from the state file when one is configured.
func (sg *Statusgram) restoreStates() ([]*reconcile.State, *state.FileStore, error) {
	states := make([]*reconcile.State, len(sg.surfaces))
	for i, s := range sg.surfaces {
		states[i] = &reconcile.State{Destination: s.destination}
	}

	if sg.stateFile == "" {
		return states, nil, nil
	}

	store := state.NewFileStore(sg.stateFile)
	saved, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load state file: %w", err)
	}
	for i, s := range sg.surfaces {
		if id, ok := saved[s.name]; ok {
			states[i].LastMessageID = id
			sg.logger.Info("restored message id",
				"surface", s.name, "message_id", id)
		}
	}
	return states, store, nil
}

// runCycle performs one fetch→normalize→aggregate→render→reconcile
// pass across all surfaces.
//
// Surfaces are processed sequentially in configuration order, which
// keeps each surface's state transitions linearizable without locks:
// cycle n+1 cannot start before cycle n returns.
func (sg *Statusgram) runCycle(ctx context.Context, source *kuma.Source, rec *reconcile.Reconciler, states []*reconcile.State, store *state.FileStore) {
	cycleID := uuid.NewString()

	monitors, err := source.FetchMonitors(ctx)
	if err != nil {
		// skip the whole cycle; surfaces keep their previous render
		sg.logger.Error("backend fetch failed, skipping cycle",
			"cycle_id", cycleID,
			"error", err,
		)
		return
	}
	sg.logger.Debug("backend fetch completed",
		"cycle_id", cycleID,
		"monitor_count", len(monitors),
	)

	changed := false
	for i, s := range sg.surfaces {
		grouped := view.Aggregate(view.Filter(monitors, s.groups))
		payload := view.Render(grouped, s.presentation(source.StatusPageURL(), sg.version), time.Now())

		before := states[i].LastMessageID
		if err := rec.Sync(ctx, states[i], payload); err != nil {
			sg.logger.Warn("surface update failed",
				"cycle_id", cycleID,
				"surface", s.name,
				"error", err,
			)
		}
		if states[i].LastMessageID != before {
			changed = true
		}
	}

	if changed && store != nil {
		sg.persist(states, store)
	}
}

// persist writes the current message ids to the state file.
func (sg *Statusgram) persist(states []*reconcile.State, store *state.FileStore) {
	m := make(map[string]string, len(states))
	for i, s := range sg.surfaces {
		if states[i].LastMessageID != "" {
			m[s.name] = states[i].LastMessageID
		}
	}
	if err := store.Save(m); err != nil {
		sg.logger.Warn("failed to persist state file", "error", err)
	}
}

// Surfaces returns a copy of the configured surfaces.
func (sg *Statusgram) Surfaces() []Surface {
	cp := make([]Surface, len(sg.surfaces))
	copy(cp, sg.surfaces)
	return cp
}

// RefreshInterval returns the configured time between cycles.
func (sg *Statusgram) RefreshInterval() time.Duration {
	return sg.refreshInterval
}
