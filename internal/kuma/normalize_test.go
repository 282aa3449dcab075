package kuma

import (
	"errors"
	"reflect"
	"testing"
)

const metaBody = `{
	"publicGroupList": [
		{"name": "Backend", "monitorList": [{"id": 7, "name": "API"}]},
		{"name": "Frontend", "monitorList": [{"id": 9, "name": "Web"}]}
	]
}`

func float(v float64) *float64 { return &v }

func TestNormalizeStatusPage_MergesMetaHeartbeatAndUptime(t *testing.T) {
	hbBody := `{
		"heartbeatList": {"7": [{"status": 0, "ping": 100}, {"status": 1, "ping": 42}]},
		"uptimeList": {"7_24": 0.9987}
	}`

	got, err := normalizeStatusPage([]byte(metaBody), []byte(hbBody))
	if err != nil {
		t.Fatalf("normalizeStatusPage() error = %v", err)
	}

	want := []Monitor{{
		ID:     "7",
		Name:   "API",
		Group:  "Backend",
		Status: StatusUp, // latest heartbeat wins, not the older failure
		Ping:   float(42),
		Uptime: float(99.87),
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeStatusPage() = %+v, want %+v", got, want)
	}
}

func TestNormalizeStatusPage_IdMissingFromMetaGetsFallbacks(t *testing.T) {
	hbBody := `{
		"heartbeatList": {"12": [{"status": 1, "ping": 42}]},
		"uptimeList": {"12_24": 0.9987}
	}`

	got, err := normalizeStatusPage([]byte(metaBody), []byte(hbBody))
	if err != nil {
		t.Fatalf("normalizeStatusPage() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d monitors, want 1", len(got))
	}
	m := got[0]
	if m.Name != "Monitor 12" {
		t.Errorf("Name = %q, want %q", m.Name, "Monitor 12")
	}
	if m.Group != DefaultGroup {
		t.Errorf("Group = %q, want %q", m.Group, DefaultGroup)
	}
	if m.Status != StatusUp || m.Ping == nil || *m.Ping != 42 || m.Uptime == nil || *m.Uptime != 99.87 {
		t.Errorf("live fields changed by missing meta: %+v", m)
	}
}

func TestNormalizeStatusPage_OptionalFieldsAbsent(t *testing.T) {
	hbBody := `{
		"heartbeatList": {"7": [{"status": 2}]},
		"uptimeList": {}
	}`

	got, err := normalizeStatusPage([]byte(metaBody), []byte(hbBody))
	if err != nil {
		t.Fatalf("normalizeStatusPage() error = %v", err)
	}
	m := got[0]
	if m.Status != StatusPending {
		t.Errorf("Status = %v, want %v", m.Status, StatusPending)
	}
	if m.Ping != nil {
		t.Errorf("Ping = %v, want nil", *m.Ping)
	}
	if m.Uptime != nil {
		t.Errorf("Uptime = %v, want nil", *m.Uptime)
	}
}

func TestNormalizeStatusPage_StringIdsJoin(t *testing.T) {
	meta := `{"publicGroupList": [{"name": "Web", "monitorList": [{"id": "web-1", "name": "Frontend"}]}]}`
	hbBody := `{
		"heartbeatList": {"web-1": [{"status": 1, "ping": 12}]},
		"uptimeList": {"web-1_24": 1}
	}`

	got, err := normalizeStatusPage([]byte(meta), []byte(hbBody))
	if err != nil {
		t.Fatalf("normalizeStatusPage() error = %v", err)
	}

	want := []Monitor{{
		ID:     "web-1",
		Name:   "Frontend",
		Group:  "Web",
		Status: StatusUp,
		Ping:   float(12),
		Uptime: float(100),
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeStatusPage() = %+v, want %+v", got, want)
	}
}

func TestNormalizeStatusPage_EmptyHeartbeatListIsValid(t *testing.T) {
	got, err := normalizeStatusPage([]byte(metaBody), []byte(`{"heartbeatList": {}, "uptimeList": {}}`))
	if err != nil {
		t.Fatalf("normalizeStatusPage() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d monitors, want 0", len(got))
	}
}

func TestNormalizeStatusPage_Idempotent(t *testing.T) {
	// multiple ids force the map-iteration path to prove ordering is
	// deterministic
	hbBody := `{
		"heartbeatList": {
			"7": [{"status": 1, "ping": 42}],
			"2": [{"status": 0}],
			"31": [{"status": 2, "ping": 10}]
		},
		"uptimeList": {"7_24": 0.5}
	}`

	first, err := normalizeStatusPage([]byte(metaBody), []byte(hbBody))
	if err != nil {
		t.Fatalf("normalizeStatusPage() error = %v", err)
	}
	second, err := normalizeStatusPage([]byte(metaBody), []byte(hbBody))
	if err != nil {
		t.Fatalf("normalizeStatusPage() second error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
	// numeric ids sort numerically
	if first[0].ID != "2" || first[1].ID != "7" || first[2].ID != "31" {
		t.Errorf("ids not in deterministic order: %s, %s, %s", first[0].ID, first[1].ID, first[2].ID)
	}
}

func TestNormalizeStatusPage_MalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		meta string
		hb   string
	}{
		{"meta not json", "not json", `{"heartbeatList": {}}`},
		{"heartbeats not json", metaBody, "<html>502</html>"},
		{"meta wrong type", `{"publicGroupList": "nope"}`, `{"heartbeatList": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeStatusPage([]byte(tt.meta), []byte(tt.hb))
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Errorf("error = %v, want MalformedResponseError", err)
			}
		})
	}
}

func TestNormalizeFlatList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Monitor
	}{
		{
			name: "bare array with numeric status",
			body: `[{"id": 1, "name": "API", "group": "Backend", "status": 1, "ping": 42, "uptime": 0.9987}]`,
			want: []Monitor{{ID: "1", Name: "API", Group: "Backend", Status: StatusUp, Ping: float(42), Uptime: float(99.87)}},
		},
		{
			name: "wrapped monitors object",
			body: `{"monitors": [{"id": 2, "name": "Web", "status": 0}]}`,
			want: []Monitor{{ID: "2", Name: "Web", Group: DefaultGroup, Status: StatusDown}},
		},
		{
			name: "string status matched case-insensitively",
			body: `[{"id": 3, "name": "DB", "status": "Pending"}]`,
			want: []Monitor{{ID: "3", Name: "DB", Group: DefaultGroup, Status: StatusPending}},
		},
		{
			name: "unrecognized string status is unknown",
			body: `[{"id": 4, "name": "Cache", "status": "degraded"}]`,
			want: []Monitor{{ID: "4", Name: "Cache", Group: DefaultGroup, Status: StatusUnknown}},
		},
		{
			name: "missing name gets fallback",
			body: `[{"id": 5, "status": 1}]`,
			want: []Monitor{{ID: "5", Name: "Monitor 5", Group: DefaultGroup, Status: StatusUp}},
		},
		{
			name: "string id",
			body: `[{"id": "web-1", "name": "Web", "status": 1}]`,
			want: []Monitor{{ID: "web-1", Name: "Web", Group: DefaultGroup, Status: StatusUp}},
		},
		{
			name: "quoted numeric id",
			body: `[{"id": "7", "name": "API", "status": 1}]`,
			want: []Monitor{{ID: "7", Name: "API", Group: DefaultGroup, Status: StatusUp}},
		},
		{
			name: "empty array is valid",
			body: `[]`,
			want: []Monitor{},
		},
		{
			name: "empty monitors object is valid",
			body: `{"monitors": []}`,
			want: []Monitor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeFlatList([]byte(tt.body))
			if err != nil {
				t.Fatalf("normalizeFlatList() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeFlatList() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeFlatList_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "oops"},
		{"object without monitors", `{"status": "ok"}`},
		{"monitors not an array", `{"monitors": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeFlatList([]byte(tt.body))
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Errorf("error = %v, want MalformedResponseError", err)
			}
		})
	}
}
