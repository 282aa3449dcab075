package statusgram

import (
	"context"
	"errors"
	"fmt"

	"github.com/noopnet/statusgram/internal/reconcile"
	"github.com/noopnet/statusgram/internal/view"
)

// ErrMessageNotFound is returned by [Sink] implementations when the
// referenced message no longer exists at the destination.
var ErrMessageNotFound = errors.New("message not found")

// Payload is one fully rendered surface update handed to a [Sink].
//
// How the fields map onto a platform message is up to the sink: a
// platform without accent colors or icons simply ignores those fields.
type Payload struct {
	// AuthorName is the heading above the status body.
	AuthorName string

	// AuthorIcon is an icon URL, for platforms that display one.
	AuthorIcon string

	// Color is the accent color as a hex string.
	Color string

	// Body is the grouped monitor listing. Bold spans are marked with
	// single asterisks; sinks translate them to platform markup.
	Body string

	// Footer carries the generation timestamp and version tag.
	Footer string

	// Link is the outbound status-page URL.
	Link string
}

// Sink is the chat-platform collaborator contract for custom
// destinations, configured via [WithSink]. The built-in Telegram sink
// ([WithTelegramToken]) implements the same contract internally.
//
// Implementations are called sequentially, never concurrently for the
// same destination.
type Sink interface {
	// Send posts a new message and returns its platform identifier.
	Send(ctx context.Context, destination string, p Payload) (string, error)

	// Fetch checks that a previously posted message still exists.
	// Returns [ErrMessageNotFound] when it does not.
	Fetch(ctx context.Context, destination, messageID string) error

	// Edit replaces the content of an existing message. Returns
	// [ErrMessageNotFound] when the message is gone.
	Edit(ctx context.Context, destination, messageID string, p Payload) error

	// Purge best-effort deletes recent bot messages at the
	// destination. Called once at startup; errors are ignored.
	Purge(ctx context.Context, destination string) error
}

// sinkAdapter bridges a public [Sink] to the reconciler's internal
// contract, converting payload types and the not-found sentinel.
type sinkAdapter struct {
	sink Sink
}

func (a sinkAdapter) Send(ctx context.Context, destination string, p view.Payload) (string, error) {
	return a.sink.Send(ctx, destination, publicPayload(p))
}

func (a sinkAdapter) Fetch(ctx context.Context, destination, messageID string) error {
	return mapNotFound(a.sink.Fetch(ctx, destination, messageID))
}

func (a sinkAdapter) Edit(ctx context.Context, destination, messageID string, p view.Payload) error {
	return mapNotFound(a.sink.Edit(ctx, destination, messageID, publicPayload(p)))
}

func (a sinkAdapter) Purge(ctx context.Context, destination string) error {
	return a.sink.Purge(ctx, destination)
}

func publicPayload(p view.Payload) Payload {
	return Payload{
		AuthorName: p.AuthorName,
		AuthorIcon: p.AuthorIcon,
		Color:      p.Color,
		Body:       p.Body,
		Footer:     p.Footer,
		Link:       p.Link,
	}
}

func mapNotFound(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMessageNotFound) {
		return fmt.Errorf("%w: %v", reconcile.ErrMessageNotFound, err)
	}
	return err
}
