package config

import (
	"fmt"

	"github.com/noopnet/statusgram"
)

// BuildSurfaces converts a validated [Config] into SDK surfaces.
//
// This bridges the declarative YAML format to the programmatic API:
// each SurfaceConfig becomes a [statusgram.Surface] built with the
// corresponding functional options.
func BuildSurfaces(cfg *Config) ([]statusgram.Surface, error) {
	surfaces := make([]statusgram.Surface, 0, len(cfg.Surfaces))

	for i, sc := range cfg.Surfaces {
		opts := []statusgram.SurfaceOption{}

		if len(sc.Groups) > 0 {
			opts = append(opts, statusgram.WithGroups(sc.Groups...))
		}
		if sc.AuthorName != "" {
			opts = append(opts, statusgram.WithAuthorName(sc.AuthorName))
		}
		if sc.AuthorIcon != "" {
			opts = append(opts, statusgram.WithAuthorIcon(sc.AuthorIcon))
		}
		if sc.Color != "" {
			opts = append(opts, statusgram.WithColor(sc.Color))
		}
		if sc.Link != "" {
			opts = append(opts, statusgram.WithLink(sc.Link))
		}
		if len(sc.Glyphs) > 0 {
			opts = append(opts, statusgram.WithGlyphs(
				sc.Glyphs["up"], sc.Glyphs["down"], sc.Glyphs["pending"], sc.Glyphs["unknown"],
			))
		}

		surface, err := statusgram.NewSurface(sc.Name, sc.ChatID, opts...)
		if err != nil {
			return nil, fmt.Errorf("surfaces[%d] (%s): %w", i, sc.Name, err)
		}
		surfaces = append(surfaces, surface)
	}

	return surfaces, nil
}
