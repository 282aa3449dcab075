package view

import (
	"reflect"
	"testing"

	"github.com/noopnet/statusgram/internal/kuma"
)

func mon(name, group string, status kuma.Status) kuma.Monitor {
	return kuma.Monitor{ID: name, Name: name, Group: group, Status: status}
}

func TestFilter(t *testing.T) {
	monitors := []kuma.Monitor{
		mon("API", "Backend", kuma.StatusUp),
		mon("Web", "Frontend", kuma.StatusUp),
		mon("DB", "Backend", kuma.StatusDown),
		mon("Cron", kuma.DefaultGroup, kuma.StatusUp),
	}

	tests := []struct {
		name   string
		groups []string
		want   []string
	}{
		{"empty filter passes everything", nil, []string{"API", "Web", "DB", "Cron"}},
		{"single group", []string{"Backend"}, []string{"API", "DB"}},
		{"case-insensitive match", []string{"bAcKeNd"}, []string{"API", "DB"}},
		{"multiple groups", []string{"frontend", "backend"}, []string{"API", "Web", "DB"}},
		{"fallback group is filterable", []string{"ungrouped"}, []string{"Cron"}},
		{"no match yields empty", []string{"Storage"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(monitors, tt.groups)
			names := make([]string, 0, len(got))
			for _, m := range got {
				names = append(names, m.Name)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("Filter(%v) = %v, want %v", tt.groups, names, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	monitors := []kuma.Monitor{
		mon("Web", "Frontend", kuma.StatusUp),
		mon("DB", "Backend", kuma.StatusDown),
		mon("Cron", kuma.DefaultGroup, kuma.StatusUp),
		mon("API", "Backend", kuma.StatusUp),
	}

	g := Aggregate(monitors)

	wantOrder := []string{"Backend", "Frontend", kuma.DefaultGroup}
	if !reflect.DeepEqual(g.Order, wantOrder) {
		t.Errorf("Order = %v, want %v", g.Order, wantOrder)
	}

	backend := g.ByGroup["Backend"]
	if len(backend) != 2 || backend[0].Name != "API" || backend[1].Name != "DB" {
		t.Errorf("Backend group = %+v, want API then DB", backend)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	monitors := []kuma.Monitor{
		mon("Web", "Frontend", kuma.StatusUp),
		mon("API", "Backend", kuma.StatusUp),
		mon("DB", "Backend", kuma.StatusDown),
	}

	first := Aggregate(monitors)
	second := Aggregate(monitors)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation not deterministic:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	monitors := []kuma.Monitor{
		mon("Web", "Frontend", kuma.StatusUp),
		mon("API", "Backend", kuma.StatusUp),
	}

	Aggregate(monitors)
	if monitors[0].Name != "Web" || monitors[1].Name != "API" {
		t.Errorf("input reordered: %+v", monitors)
	}
}

func TestFilterBeforeAggregate_NoEmptyGroups(t *testing.T) {
	monitors := []kuma.Monitor{
		mon("API", "Backend", kuma.StatusUp),
		mon("Web", "Frontend", kuma.StatusUp),
	}

	g := Aggregate(Filter(monitors, []string{"Backend"}))
	if len(g.Order) != 1 || g.Order[0] != "Backend" {
		t.Errorf("Order = %v, want only Backend", g.Order)
	}
	if _, ok := g.ByGroup["Frontend"]; ok {
		t.Error("filtered-out group still present in ByGroup")
	}
}
