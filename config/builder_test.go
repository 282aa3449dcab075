package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildSurfaces(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	surfaces, err := BuildSurfaces(cfg)
	if err != nil {
		t.Fatalf("BuildSurfaces() error = %v", err)
	}
	if len(surfaces) != 1 {
		t.Fatalf("got %d surfaces, want 1", len(surfaces))
	}

	s := surfaces[0]
	if s.Name() != "team" {
		t.Errorf("Name() = %q, want team", s.Name())
	}
	if s.Destination() != "-1001234567890" {
		t.Errorf("Destination() = %q", s.Destination())
	}
	if got, want := s.Groups(), []string{"Team", "Players"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
}

func TestBuildSurfaces_OptionErrorNamesSurface(t *testing.T) {
	cfg := &Config{
		Surfaces: []SurfaceConfig{
			{Name: "ops", ChatID: "-100", Link: "https://example.net/status"},
			{Name: "broken", ChatID: "-200", AuthorIcon: "http://bad host/icon.png"},
		},
	}

	// exercise the builder directly; Parse would have rejected this
	_, err := BuildSurfaces(cfg)
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("BuildSurfaces() error = %v, want the failing surface named", err)
	}
}
