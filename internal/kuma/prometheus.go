package kuma

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// monitorStatusPattern matches one monitor_status sample line in a
// Prometheus text exposition: monitor_status{label="value",...} <code>
var monitorStatusPattern = regexp.MustCompile(`(?m)^monitor_status\{([^}]*)\}\s+(-?\d+)\s*$`)

// labelPattern matches one label="value" pair inside a sample's label
// set. Escaped quotes inside values are accepted.
var labelPattern = regexp.MustCompile(`(\w+)="((?:[^"\\]|\\.)*)"`)

// normalizePrometheus scans a Prometheus text exposition for
// monitor_status samples and converts them into canonical monitors.
//
// The trailing integer is the status code under the usual numeric
// convention. Identity and metadata come from the label set:
// monitor_name (display name, doubles as the id), monitor_group, and
// the optional ping / uptime numeric labels.
//
// A body that never mentions the monitor_status family is not a
// monitoring exposition at all and is malformed; a body that carries
// the family (HELP/TYPE lines) with zero samples is a valid empty set.
func normalizePrometheus(body []byte) ([]Monitor, error) {
	text := string(body)
	if !strings.Contains(text, "monitor_status") {
		return nil, &MalformedResponseError{
			Shape: ShapePrometheusText,
			Err:   fmt.Errorf("monitor_status metric family not found"),
		}
	}

	samples := monitorStatusPattern.FindAllStringSubmatch(text, -1)
	out := make([]Monitor, 0, len(samples))
	for i, sample := range samples {
		labels := parseLabels(sample[1])

		code, err := strconv.Atoi(sample[2])
		if err != nil {
			return nil, &MalformedResponseError{
				Shape: ShapePrometheusText,
				Err:   fmt.Errorf("invalid status code %q: %w", sample[2], err),
			}
		}

		id := labels["monitor_name"]
		if id == "" {
			id = labels["monitor_url"]
		}
		if id == "" {
			id = strconv.Itoa(i)
		}
		rec := Monitor{
			ID:     id,
			Name:   labels["monitor_name"],
			Group:  labels["monitor_group"],
			Status: ClassifyCode(code),
		}
		if rec.Name == "" {
			rec.Name = fallbackName(id)
		}
		if rec.Group == "" {
			rec.Group = DefaultGroup
		}
		if v, ok := parseFloatLabel(labels, "ping"); ok {
			rec.Ping = v
		}
		if v, ok := parseFloatLabel(labels, "uptime"); ok {
			pct := *v * 100
			rec.Uptime = &pct
		}
		out = append(out, rec)
	}

	sortByID(out)
	return out, nil
}

// parseLabels decodes the label set of one sample into a map.
func parseLabels(s string) map[string]string {
	labels := make(map[string]string)
	for _, m := range labelPattern.FindAllStringSubmatch(s, -1) {
		labels[m[1]] = unescapeLabelValue(m[2])
	}
	return labels
}

// unescapeLabelValue reverses the Prometheus label value escapes
// (\\, \" and \n).
func unescapeLabelValue(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				out = append(out, '\n')
			default:
				out = append(out, s[i])
			}
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func parseFloatLabel(labels map[string]string, key string) (*float64, bool) {
	raw, ok := labels[key]
	if !ok {
		return nil, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
