package kuma

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Shape identifies one of the known backend response formats. The
// resolver selects the shape per candidate endpoint; the payload is
// never sniffed at runtime.
type Shape string

const (
	// ShapeStatusPageMerge joins a status-page group/meta listing with
	// a heartbeat/uptime listing by monitor id (two requests).
	ShapeStatusPageMerge Shape = "status-page-merge"

	// ShapeFlatList is a single response carrying a JSON array of flat
	// monitor records, or an object wrapping one under "monitors".
	ShapeFlatList Shape = "flat-list"

	// ShapePrometheusText is a Prometheus text exposition scanned for
	// monitor_status samples.
	ShapePrometheusText Shape = "prometheus-text"
)

// uptimeWindowSuffix is the uptimeList key convention for the 24-hour
// uptime fraction: "{id}_24".
const uptimeWindowSuffix = "_24"

// statusPageMeta mirrors GET /api/status-page/{slug}.
type statusPageMeta struct {
	PublicGroupList []struct {
		Name        string `json:"name"`
		MonitorList []struct {
			ID   flexID `json:"id"`
			Name string `json:"name"`
		} `json:"monitorList"`
	} `json:"publicGroupList"`
}

// flexID decodes a monitor id that may arrive as a JSON number or a
// string. Ids are opaque; a numeric one is kept in its decimal form.
type flexID struct {
	value string
}

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		f.value = n.String()
		return nil
	}
	return fmt.Errorf("id must be a number or string, got %s", string(data))
}

// statusPageHeartbeats mirrors GET /api/status-page/heartbeat/{slug}.
// Heartbeat sequences are ordered oldest to newest.
type statusPageHeartbeats struct {
	HeartbeatList map[string][]heartbeat `json:"heartbeatList"`
	UptimeList    map[string]float64     `json:"uptimeList"`
}

type heartbeat struct {
	Status int      `json:"status"`
	Ping   *float64 `json:"ping"`
}

// normalizeStatusPage merges the status-page meta and heartbeat bodies
// into canonical monitors.
//
// The join is by id: every id present in the heartbeat listing yields
// a record, taking its most recent heartbeat as the live sample and
// looking up the 24h uptime fraction under "{id}_24". Ids absent from
// the meta listing still produce a record with the fallback name and
// group.
func normalizeStatusPage(metaBody, hbBody []byte) ([]Monitor, error) {
	var meta statusPageMeta
	if err := json.Unmarshal(metaBody, &meta); err != nil {
		return nil, &MalformedResponseError{Shape: ShapeStatusPageMerge, Err: err}
	}

	var hb statusPageHeartbeats
	if err := json.Unmarshal(hbBody, &hb); err != nil {
		return nil, &MalformedResponseError{Shape: ShapeStatusPageMerge, Err: err}
	}

	type metaEntry struct{ name, group string }
	metaByID := make(map[string]metaEntry)
	for _, g := range meta.PublicGroupList {
		for _, m := range g.MonitorList {
			metaByID[m.ID.value] = metaEntry{name: m.Name, group: g.Name}
		}
	}

	out := make([]Monitor, 0, len(hb.HeartbeatList))
	for id, beats := range hb.HeartbeatList {
		rec := Monitor{
			ID:     id,
			Name:   fallbackName(id),
			Group:  DefaultGroup,
			Status: StatusUnknown,
		}
		if me, ok := metaByID[id]; ok {
			if me.name != "" {
				rec.Name = me.name
			}
			if me.group != "" {
				rec.Group = me.group
			}
		}
		if len(beats) > 0 {
			latest := beats[len(beats)-1]
			rec.Status = ClassifyCode(latest.Status)
			rec.Ping = latest.Ping
		}
		if frac, ok := hb.UptimeList[id+uptimeWindowSuffix]; ok {
			pct := frac * 100
			rec.Uptime = &pct
		}
		out = append(out, rec)
	}

	sortByID(out)
	return out, nil
}

// flatMonitor is one element of a flat-list response. The backend is
// loose about field types here: ids arrive as numbers or strings, and
// status as a numeric code or a label.
type flatMonitor struct {
	ID     flexID     `json:"id"`
	Name   string     `json:"name"`
	Group  string     `json:"group"`
	Status flatStatus `json:"status"`
	Ping   *float64   `json:"ping"`
	Uptime *float64   `json:"uptime"`
}

// flatStatus decodes a status field that may be a number or a string
// and classifies it immediately.
type flatStatus struct {
	value Status
	set   bool
}

func (f *flatStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		f.value = ClassifyCode(code)
		f.set = true
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		f.value = ClassifyLabel(label)
		f.set = true
		return nil
	}
	return fmt.Errorf("status must be a number or string, got %s", string(data))
}

// normalizeFlatList converts a monitor-list/overview body into
// canonical monitors. The body may be a bare JSON array or an object
// with a "monitors" array.
func normalizeFlatList(body []byte) ([]Monitor, error) {
	var flat []flatMonitor
	if err := json.Unmarshal(body, &flat); err != nil {
		var wrapped struct {
			Monitors []flatMonitor `json:"monitors"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, &MalformedResponseError{Shape: ShapeFlatList, Err: err}
		}
		if wrapped.Monitors == nil {
			return nil, &MalformedResponseError{Shape: ShapeFlatList, Err: fmt.Errorf("missing monitors array")}
		}
		flat = wrapped.Monitors
	}

	out := make([]Monitor, 0, len(flat))
	for i, fm := range flat {
		id := fm.ID.value
		if id == "" {
			id = strconv.Itoa(i)
		}
		rec := Monitor{
			ID:     id,
			Name:   fm.Name,
			Group:  fm.Group,
			Status: StatusUnknown,
			Ping:   fm.Ping,
		}
		if rec.Name == "" {
			rec.Name = fallbackName(id)
		}
		if rec.Group == "" {
			rec.Group = DefaultGroup
		}
		if fm.Status.set {
			rec.Status = fm.Status.value
		}
		if fm.Uptime != nil {
			pct := *fm.Uptime * 100
			rec.Uptime = &pct
		}
		out = append(out, rec)
	}

	sortByID(out)
	return out, nil
}

// sortByID orders monitors by id so that normalization is
// deterministic regardless of map iteration order. Numeric ids sort
// numerically, mixed ids fall back to lexicographic.
func sortByID(ms []Monitor) {
	sort.Slice(ms, func(i, j int) bool {
		a, errA := strconv.Atoi(ms[i].ID)
		b, errB := strconv.Atoi(ms[j].ID)
		if errA == nil && errB == nil {
			return a < b
		}
		return strings.Compare(ms[i].ID, ms[j].ID) < 0
	})
}
