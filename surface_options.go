package statusgram

import (
	"errors"
	"net/url"
	"strings"

	"github.com/noopnet/statusgram/internal/kuma"
)

// surfaceConfig holds mutable state during Surface construction.
type surfaceConfig struct {
	groups     []string
	authorName string
	authorIcon string
	color      string
	link       string
	glyphs     map[kuma.Status]string
}

// SurfaceOption configures a [Surface] during construction.
type SurfaceOption func(*surfaceConfig) error

// WithGroups restricts the surface to monitors whose group is in the
// given allow-list. Matching is case-insensitive. Without this option
// the surface displays every monitor the backend reports.
func WithGroups(groups ...string) SurfaceOption {
	return func(cfg *surfaceConfig) error {
		for _, g := range groups {
			g = strings.TrimSpace(g)
			if g != "" {
				cfg.groups = append(cfg.groups, g)
			}
		}
		return nil
	}
}

// WithAuthorName sets the heading shown above the status body.
// Defaults to "Status".
func WithAuthorName(name string) SurfaceOption {
	return func(cfg *surfaceConfig) error {
		if name == "" {
			return errors.New("author name cannot be empty")
		}
		cfg.authorName = name
		return nil
	}
}

// WithAuthorIcon sets an icon URL for sinks that can display one.
func WithAuthorIcon(rawURL string) SurfaceOption {
	return func(cfg *surfaceConfig) error {
		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Scheme == "" {
			return errors.New("author icon must be an absolute URL")
		}
		cfg.authorIcon = rawURL
		return nil
	}
}

// WithColor sets the accent color as a hex string like "#ff7a00", for
// sinks that support one. Defaults to "#ff7a00".
func WithColor(hex string) SurfaceOption {
	return func(cfg *surfaceConfig) error {
		if !strings.HasPrefix(hex, "#") || (len(hex) != 7 && len(hex) != 4) {
			return errors.New("color must be a hex string like #ff7a00")
		}
		cfg.color = hex
		return nil
	}
}

// WithLink overrides the outbound link on the rendered message. When
// unset, the backend's status page URL is used.
func WithLink(rawURL string) SurfaceOption {
	return func(cfg *surfaceConfig) error {
		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Scheme == "" {
			return errors.New("link must be an absolute URL")
		}
		cfg.link = rawURL
		return nil
	}
}

// WithGlyphs overrides the four status symbols (up, down, pending,
// unknown) rendered in front of each monitor line. Empty strings keep
// the default for that status.
func WithGlyphs(up, down, pending, unknown string) SurfaceOption {
	return func(cfg *surfaceConfig) error {
		glyphs := make(map[kuma.Status]string, 4)
		if up != "" {
			glyphs[kuma.StatusUp] = up
		}
		if down != "" {
			glyphs[kuma.StatusDown] = down
		}
		if pending != "" {
			glyphs[kuma.StatusPending] = pending
		}
		if unknown != "" {
			glyphs[kuma.StatusUnknown] = unknown
		}
		if len(glyphs) > 0 {
			cfg.glyphs = glyphs
		}
		return nil
	}
}
