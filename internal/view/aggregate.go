// Package view turns normalized monitor records into the presentation
// payload posted to a chat surface: filtering, deterministic grouping,
// and text rendering.
package view

import (
	"sort"
	"strings"

	"github.com/noopnet/statusgram/internal/kuma"
)

// Grouped is a filtered, sorted view of monitor records ready for
// rendering. Groups iterates in lexicographic order via Order; within
// a group, monitors are ordered by name.
type Grouped struct {
	// Order lists the group labels in render order.
	Order []string

	// ByGroup maps each group label to its ordered monitors.
	ByGroup map[string][]kuma.Monitor
}

// Filter returns the monitors whose group is in the allow-list,
// matched case-insensitively. An empty allow-list means no filter:
// all monitors pass.
func Filter(monitors []kuma.Monitor, groups []string) []kuma.Monitor {
	if len(groups) == 0 {
		return monitors
	}

	allowed := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		allowed[strings.ToLower(g)] = struct{}{}
	}

	out := make([]kuma.Monitor, 0, len(monitors))
	for _, m := range monitors {
		if _, ok := allowed[strings.ToLower(m.Group)]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Aggregate sorts and groups monitor records.
//
// Sort key: group first (case-sensitive lexicographic, the fallback
// group sorting with the rest), then name. The ordering is
// deterministic and stable across runs for identical input so that
// successive renders differ only where the data does. Filtering
// happens before grouping (see [Filter]), so empty groups never
// appear.
func Aggregate(monitors []kuma.Monitor) Grouped {
	sorted := make([]kuma.Monitor, len(monitors))
	copy(sorted, monitors)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Group != sorted[j].Group {
			return sorted[i].Group < sorted[j].Group
		}
		return sorted[i].Name < sorted[j].Name
	})

	g := Grouped{ByGroup: make(map[string][]kuma.Monitor)}
	for _, m := range sorted {
		if _, ok := g.ByGroup[m.Group]; !ok {
			g.Order = append(g.Order, m.Group)
		}
		g.ByGroup[m.Group] = append(g.ByGroup[m.Group], m)
	}
	return g
}
