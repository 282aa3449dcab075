package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/noopnet/statusgram/internal/kuma"
)

// emptyBody is posted when the filtered record set is empty. The
// surface must never go blank, otherwise the audience cannot tell an
// empty status page from a broken bot.
const emptyBody = "No monitors found."

// footerTimeFormat fixes the human-readable timestamp in the footer.
const footerTimeFormat = "02.01.2006, 15:04:05"

// DefaultGlyphs are the symbols used when a presentation configures
// none. A glyph is a pure function of the four-valued status, never of
// raw backend codes.
var DefaultGlyphs = map[kuma.Status]string{
	kuma.StatusUp:      "🟢",
	kuma.StatusDown:    "🔴",
	kuma.StatusPending: "🟡",
	kuma.StatusUnknown: "⚪",
}

// Presentation holds the static rendering parameters of one surface.
// Immutable configuration; construction-time only.
type Presentation struct {
	// AuthorName is the heading shown above the status body.
	AuthorName string

	// AuthorIcon is an icon URL for sinks that can display one.
	AuthorIcon string

	// Color is the accent color (hex, e.g. "#ff7a00") for sinks that
	// support one.
	Color string

	// Link is the outbound link to the backend's status page.
	Link string

	// Version is the static tag appended to the footer.
	Version string

	// Glyphs overrides [DefaultGlyphs] per status. Missing entries
	// fall back to the defaults.
	Glyphs map[kuma.Status]string
}

// Payload is one fully rendered surface update, ready for a sink.
type Payload struct {
	AuthorName string
	AuthorIcon string
	Color      string
	Body       string
	Footer     string
	Link       string
}

// Render builds the presentation payload for one surface from a
// grouped record set.
//
// The body is built group by group: a bold header line, then one line
// per monitor with its status glyph, name, uptime percentage to two
// decimals (or a dash when absent) and ping in milliseconds (or a
// dash). now is passed in explicitly so rendering stays a pure
// function; the footer carries it in a fixed human-readable format
// together with the version tag.
func Render(g Grouped, p Presentation, now time.Time) Payload {
	var b strings.Builder
	for _, group := range g.Order {
		fmt.Fprintf(&b, "*%s*\n", group)
		for _, m := range g.ByGroup[group] {
			fmt.Fprintf(&b, "%s  *%s*  •  %s  •  %s\n",
				p.glyph(m.Status), m.Name, formatUptime(m.Uptime), formatPing(m.Ping))
		}
		b.WriteString("\n")
	}

	body := strings.TrimRight(b.String(), "\n")
	if body == "" {
		body = emptyBody
	}

	footer := fmt.Sprintf("Last updated: %s", now.Format(footerTimeFormat))
	if p.Version != "" {
		footer += "\n" + p.Version
	}

	return Payload{
		AuthorName: p.AuthorName,
		AuthorIcon: p.AuthorIcon,
		Color:      p.Color,
		Body:       body,
		Footer:     footer,
		Link:       p.Link,
	}
}

// glyph resolves the symbol for a status, falling back to the default
// set for statuses the presentation does not override.
func (p Presentation) glyph(s kuma.Status) string {
	if g, ok := p.Glyphs[s]; ok {
		return g
	}
	return DefaultGlyphs[s]
}

func formatUptime(pct *float64) string {
	if pct == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", *pct)
}

func formatPing(ms *float64) string {
	if ms == nil {
		return "Ping —"
	}
	return fmt.Sprintf("Ping %.0f ms", *ms)
}
