// Package kuma fetches and normalizes monitor state from an
// Uptime-Kuma-style monitoring backend.
//
// A [Source] carries an ordered list of candidate API shapes. On every
// fetch the candidates are tried in sequence until one yields a
// structurally valid response; transport failures and malformed bodies
// on one candidate are recovered by moving on to the next. Whatever
// shape answered, the result is the same canonical []Monitor.
package kuma

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Candidate is one endpoint descriptor in a source's fallback chain:
// which shape to expect, which URLs to hit, and how a configured
// credential is attached.
type Candidate struct {
	Shape Shape
	URLs  []string
	auth  authMode
}

// Source is an immutable descriptor of one monitoring backend: base
// address, status-page slug, and credential. Construct with
// [NewSource]; fetch with [Source.FetchMonitors].
type Source struct {
	base       string
	slug       string
	client     *Client
	hasKey     bool
	candidates []Candidate
}

// NewSource creates a [Source] for the given backend.
//
// base must be an http(s) URL; a trailing slash is stripped. slug
// selects the status page and may not be empty. apiKey may be empty
// for backends with public status pages.
func NewSource(base, slug, apiKey string) (*Source, error) {
	base = strings.TrimRight(base, "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend url scheme must be http or https, got %q", parsed.Scheme)
	}
	if slug == "" {
		return nil, errors.New("status page slug cannot be empty")
	}

	s := &Source{
		base:   base,
		slug:   slug,
		client: NewClient(apiKey),
		hasKey: apiKey != "",
	}
	s.candidates = resolve(base, slug)
	return s, nil
}

// resolve builds the ordered candidate list for a backend. Pure
// function of the configuration; the status-page pair is preferred
// because it is the only shape carrying group metadata.
func resolve(base, slug string) []Candidate {
	esc := url.PathEscape(slug)
	return []Candidate{
		{
			Shape: ShapeStatusPageMerge,
			URLs: []string{
				base + "/api/status-page/" + esc,
				base + "/api/status-page/heartbeat/" + esc,
			},
			auth: authBearer,
		},
		{
			Shape: ShapeFlatList,
			URLs:  []string{base + "/api/monitor/list"},
			auth:  authBearer,
		},
		{
			Shape: ShapeFlatList,
			URLs:  []string{base + "/api/monitor/overview"},
			auth:  authBearer,
		},
		{
			Shape: ShapePrometheusText,
			URLs:  []string{base + "/metrics"},
			auth:  authBasic,
		},
	}
}

// Candidates returns a copy of the source's candidate chain, in try
// order.
func (s *Source) Candidates() []Candidate {
	cp := make([]Candidate, len(s.candidates))
	copy(cp, s.candidates)
	return cp
}

// StatusPageURL returns the human-facing status page address, used as
// the default outbound link on rendered surfaces.
func (s *Source) StatusPageURL() string {
	return s.base + "/status/" + url.PathEscape(s.slug)
}

// FetchMonitors tries the candidate endpoints in order and returns the
// normalized monitors from the first one that answers with a
// structurally valid body.
//
// [*TransportError] and [*MalformedResponseError] on one candidate are
// recovered by trying the next. A 401 with no credential configured
// short-circuits the chain ([ErrUnauthorized]) since the remaining
// candidates would fail identically. When every candidate fails the
// result is an [*ExhaustedError] carrying the per-candidate errors in
// try order.
func (s *Source) FetchMonitors(ctx context.Context) ([]Monitor, error) {
	var attempts []error

	for _, cand := range s.candidates {
		monitors, err := s.fetchCandidate(ctx, cand)
		if err == nil {
			return monitors, nil
		}
		if errors.Is(err, ErrUnauthorized) && !s.hasKey {
			return nil, err
		}
		attempts = append(attempts, err)
	}

	return nil, &ExhaustedError{Attempts: attempts}
}

// fetchCandidate performs the request(s) for one candidate and
// normalizes the result according to its shape.
func (s *Source) fetchCandidate(ctx context.Context, cand Candidate) ([]Monitor, error) {
	bodies := make([][]byte, 0, len(cand.URLs))
	for _, u := range cand.URLs {
		body, err := s.client.get(ctx, u, cand.auth)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	switch cand.Shape {
	case ShapeStatusPageMerge:
		return normalizeStatusPage(bodies[0], bodies[1])
	case ShapeFlatList:
		return normalizeFlatList(bodies[0])
	case ShapePrometheusText:
		return normalizePrometheus(bodies[0])
	default:
		return nil, fmt.Errorf("unknown shape %q", cand.Shape)
	}
}

// Close releases the source's idle backend connections.
func (s *Source) Close() {
	s.client.Close()
}
