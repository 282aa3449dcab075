// Package reconcile keeps one chat message per surface synchronized
// with the latest rendered payload, editing in place where possible
// and posting fresh only when the remembered message is gone.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/noopnet/statusgram/internal/view"
)

// ErrMessageNotFound is returned by a [Sink] when the referenced
// message no longer exists at the destination (deleted externally, or
// the platform cannot address it anymore).
var ErrMessageNotFound = errors.New("message not found")

// Sink is the chat-platform collaborator contract. Implementations
// wrap one platform client; all decision logic stays here.
//
// Implementations must be safe for sequential reuse across cycles. A
// platform that cannot look a message up by id (Telegram's Bot API,
// for one) should report Fetch success and surface the stale id as
// [ErrMessageNotFound] from Edit instead.
type Sink interface {
	// Send posts a new message and returns its platform identifier.
	Send(ctx context.Context, destination string, p view.Payload) (string, error)

	// Fetch checks that a previously posted message still exists.
	// Returns ErrMessageNotFound when it does not.
	Fetch(ctx context.Context, destination, messageID string) error

	// Edit replaces the content of an existing message.
	// Returns ErrMessageNotFound when the message is gone.
	Edit(ctx context.Context, destination, messageID string, p view.Payload) error

	// Purge best-effort deletes recent bot messages at the
	// destination. Used once at startup; failures are ignored.
	Purge(ctx context.Context, destination string) error
}

// State is the mutable per-surface reconciliation state. LastMessageID
// is owned exclusively by [Reconciler.Sync]; empty means Unposted.
type State struct {
	// Destination is the chat location (e.g. a chat or channel id).
	Destination string

	// LastMessageID remembers the posted status message. Mutated at
	// most once per cycle, only inside Sync.
	LastMessageID string
}

// Reconciler applies rendered payloads to surfaces through a [Sink].
type Reconciler struct {
	sink   Sink
	logger *slog.Logger
}

// New creates a [Reconciler] posting through the given sink.
func New(sink Sink, logger *slog.Logger) *Reconciler {
	return &Reconciler{sink: sink, logger: logger}
}

// Sync reconciles one surface with its freshly rendered payload.
//
// Two states per surface: Unposted (no remembered message id) and
// Posted. From Unposted a successful send transitions to Posted with
// the returned id. From Posted the remembered message is fetched
// first; if it is gone (or the fetch errors), the surface is treated
// as Unposted for this cycle and a fresh message is sent. An edit that
// itself reports the message missing falls back to a fresh send the
// same way.
//
// Callers must not invoke Sync concurrently for the same state: the
// read-then-write of LastMessageID is only linearizable under
// sequential cycles.
func (r *Reconciler) Sync(ctx context.Context, st *State, p view.Payload) error {
	if st.LastMessageID != "" {
		err := r.sink.Fetch(ctx, st.Destination, st.LastMessageID)
		switch {
		case err == nil:
			editErr := r.sink.Edit(ctx, st.Destination, st.LastMessageID, p)
			if editErr == nil {
				return nil
			}
			if !errors.Is(editErr, ErrMessageNotFound) {
				// message presumably still exists; keep the id and
				// retry the edit next cycle
				return fmt.Errorf("edit message %s: %w", st.LastMessageID, editErr)
			}
			st.LastMessageID = ""
		case errors.Is(err, ErrMessageNotFound):
			st.LastMessageID = ""
		default:
			// fetch failure is indistinguishable from a deleted
			// message; repost rather than go silent
			r.logger.Warn("fetch of remembered message failed, reposting",
				"destination", st.Destination,
				"message_id", st.LastMessageID,
				"error", err)
			st.LastMessageID = ""
		}
	}

	id, err := r.sink.Send(ctx, st.Destination, p)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	st.LastMessageID = id
	return nil
}

// Purge best-effort clears recent bot messages at the surface's
// destination. Errors are logged and swallowed; a failed purge only
// means stale messages linger.
func (r *Reconciler) Purge(ctx context.Context, st *State) {
	if err := r.sink.Purge(ctx, st.Destination); err != nil {
		r.logger.Debug("startup purge failed",
			"destination", st.Destination,
			"error", err)
	}
}
