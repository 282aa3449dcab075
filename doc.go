// Package statusgram keeps chat-channel status messages synchronized
// with an Uptime-Kuma-style monitoring backend.
//
// Each configured surface (one chat destination with its own group
// filter and branding) gets a single message that is edited in place
// on every refresh cycle, so the channel shows one always-current
// status board instead of a scrolling feed.
//
// # Quick Start
//
//	surface, _ := statusgram.NewSurface("team", "-1001234567890",
//	    statusgram.WithGroups("Backend", "Frontend"),
//	    statusgram.WithAuthorName("Team Status"),
//	)
//
//	sg, _ := statusgram.New(
//	    statusgram.WithBackend("https://uptime.example.net", "default"),
//	    statusgram.WithTelegramToken(os.Getenv("TELEGRAM_TOKEN")),
//	    statusgram.WithSurface(surface),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	sg.Start(ctx) // blocks until context is cancelled
//
// # Backends
//
// The engine talks to the backend through an ordered list of candidate
// API shapes — the status-page pair (meta + heartbeats), flat monitor
// listings, and Prometheus text exposition — trying each in turn until
// one answers with a structurally valid body. Whatever shape answered,
// surfaces render from the same canonical records.
//
// # Sinks
//
// Telegram is built in ([WithTelegramToken]). Any other chat platform
// can be plugged in by implementing the [Sink] contract and passing it
// via [WithSink].
//
// # Failure behavior
//
// No error is fatal once the engine is running: an exhausted backend
// skips the cycle and leaves every surface's previous message
// untouched, and a failed send or edit on one surface never blocks the
// others. Operators see the classification in the logs; the chat
// audience just sees the board stop updating until the next good
// cycle.
package statusgram
