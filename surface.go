package statusgram

import (
	"errors"

	"github.com/noopnet/statusgram/internal/kuma"
	"github.com/noopnet/statusgram/internal/view"
)

// presentation defaults, matching the original NoopNet bot branding
// knobs.
const (
	defaultAuthorName = "Status"
	defaultColor      = "#ff7a00"
)

// Surface represents one chat destination kept synchronized with the
// monitor snapshot.
//
// Surface is immutable after creation via [NewSurface]. The only
// mutable piece of a surface — the remembered message id — lives in
// the reconciler, not here, so Surface values can be shared freely.
//
// Surfaces are configured using the functional options pattern with
// [SurfaceOption] functions such as [WithGroups], [WithAuthorName],
// [WithAuthorIcon], [WithColor], [WithLink], and [WithGlyphs].
type Surface struct {
	name        string
	destination string
	groups      []string
	authorName  string
	authorIcon  string
	color       string
	link        string
	glyphs      map[kuma.Status]string
}

// NewSurface creates a [Surface] with the given name, chat
// destination, and options.
//
// name identifies the surface in logs and in the persisted state file,
// so it must be unique per engine. destination is the chat location in
// whatever form the configured sink expects (for Telegram, a numeric
// chat id as a decimal string).
func NewSurface(name, destination string, opts ...SurfaceOption) (Surface, error) {
	if name == "" {
		return Surface{}, errors.New("surface name cannot be empty")
	}
	if destination == "" {
		return Surface{}, errors.New("surface destination cannot be empty")
	}

	cfg := &surfaceConfig{
		authorName: defaultAuthorName,
		color:      defaultColor,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Surface{}, err
		}
	}

	return Surface{
		name:        name,
		destination: destination,
		groups:      append([]string(nil), cfg.groups...),
		authorName:  cfg.authorName,
		authorIcon:  cfg.authorIcon,
		color:       cfg.color,
		link:        cfg.link,
		glyphs:      cfg.glyphs,
	}, nil
}

// Name returns the surface's identifier.
func (s Surface) Name() string {
	return s.name
}

// Destination returns the chat location the surface posts to.
func (s Surface) Destination() string {
	return s.destination
}

// Groups returns a copy of the group allow-list. Empty means the
// surface displays all monitors.
func (s Surface) Groups() []string {
	return append([]string(nil), s.groups...)
}

// presentation builds the renderer parameters for this surface.
// defaultLink and version come from the engine.
func (s Surface) presentation(defaultLink, version string) view.Presentation {
	link := s.link
	if link == "" {
		link = defaultLink
	}
	return view.Presentation{
		AuthorName: s.authorName,
		AuthorIcon: s.authorIcon,
		Color:      s.color,
		Link:       link,
		Version:    version,
		Glyphs:     s.glyphs,
	}
}
