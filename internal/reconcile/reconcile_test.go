package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/noopnet/statusgram/internal/view"
)

// fakeSink scripts sink behavior per call and records the calls made.
type fakeSink struct {
	calls []string

	sendErr  error
	fetchErr error
	editErr  error
	purgeErr error

	nextID      int
	lastPayload view.Payload
}

func (f *fakeSink) Send(ctx context.Context, destination string, p view.Payload) (string, error) {
	f.calls = append(f.calls, "send")
	f.lastPayload = p
	if f.sendErr != nil {
		return "", f.sendErr
	}
	// fresh ids start above any id the tests seed into State, so a
	// repost is distinguishable from the remembered message
	f.nextID++
	return strconv.Itoa(f.nextID + 100), nil
}

func (f *fakeSink) Fetch(ctx context.Context, destination, messageID string) error {
	f.calls = append(f.calls, "fetch "+messageID)
	return f.fetchErr
}

func (f *fakeSink) Edit(ctx context.Context, destination, messageID string, p view.Payload) error {
	f.calls = append(f.calls, "edit "+messageID)
	f.lastPayload = p
	return f.editErr
}

func (f *fakeSink) Purge(ctx context.Context, destination string) error {
	f.calls = append(f.calls, "purge")
	return f.purgeErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSync_UnpostedSendsAndRemembersID(t *testing.T) {
	sink := &fakeSink{}
	r := New(sink, testLogger())
	st := &State{Destination: "-100123"}

	if err := r.Sync(context.Background(), st, view.Payload{Body: "body"}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if st.LastMessageID != "101" {
		t.Errorf("LastMessageID = %q, want %q", st.LastMessageID, "101")
	}
	if len(sink.calls) != 1 || sink.calls[0] != "send" {
		t.Errorf("calls = %v, want a single send", sink.calls)
	}
}

func TestSync_PostedEditsInPlace(t *testing.T) {
	sink := &fakeSink{}
	r := New(sink, testLogger())
	st := &State{Destination: "-100123", LastMessageID: "42"}

	if err := r.Sync(context.Background(), st, view.Payload{Body: "updated"}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if st.LastMessageID != "42" {
		t.Errorf("LastMessageID = %q, want unchanged %q", st.LastMessageID, "42")
	}
	want := []string{"fetch 42", "edit 42"}
	if len(sink.calls) != 2 || sink.calls[0] != want[0] || sink.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", sink.calls, want)
	}
	if sink.lastPayload.Body != "updated" {
		t.Errorf("edited payload body = %q, want %q", sink.lastPayload.Body, "updated")
	}
}

func TestSync_MissingMessageFallsBackToSend(t *testing.T) {
	sink := &fakeSink{fetchErr: ErrMessageNotFound}
	r := New(sink, testLogger())
	st := &State{Destination: "-100123", LastMessageID: "42"}

	if err := r.Sync(context.Background(), st, view.Payload{Body: "body"}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if st.LastMessageID == "42" || st.LastMessageID == "" {
		t.Errorf("LastMessageID = %q, want a fresh id", st.LastMessageID)
	}
	want := []string{"fetch 42", "send"}
	if len(sink.calls) != 2 || sink.calls[0] != want[0] || sink.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", sink.calls, want)
	}
}

func TestSync_EditReportsMissingFallsBackToSend(t *testing.T) {
	sink := &fakeSink{editErr: ErrMessageNotFound}
	r := New(sink, testLogger())
	st := &State{Destination: "-100123", LastMessageID: "42"}

	if err := r.Sync(context.Background(), st, view.Payload{Body: "body"}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if st.LastMessageID == "42" || st.LastMessageID == "" {
		t.Errorf("LastMessageID = %q, want a fresh id", st.LastMessageID)
	}
	want := []string{"fetch 42", "edit 42", "send"}
	if len(sink.calls) != 3 {
		t.Fatalf("calls = %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Errorf("calls = %v, want %v", sink.calls, want)
			break
		}
	}
}

func TestSync_EditFailureKeepsID(t *testing.T) {
	sink := &fakeSink{editErr: errors.New("rate limited")}
	r := New(sink, testLogger())
	st := &State{Destination: "-100123", LastMessageID: "42"}

	err := r.Sync(context.Background(), st, view.Payload{Body: "body"})
	if err == nil {
		t.Fatal("Sync() error = nil, want edit failure")
	}
	// the message presumably still exists; next cycle retries the edit
	if st.LastMessageID != "42" {
		t.Errorf("LastMessageID = %q, want retained %q", st.LastMessageID, "42")
	}
	for _, c := range sink.calls {
		if c == "send" {
			t.Errorf("calls = %v, must not send after a non-missing edit failure", sink.calls)
		}
	}
}

func TestSync_SendFailureStaysUnposted(t *testing.T) {
	sink := &fakeSink{sendErr: errors.New("destination unavailable")}
	r := New(sink, testLogger())
	st := &State{Destination: "-100123"}

	err := r.Sync(context.Background(), st, view.Payload{Body: "body"})
	if err == nil {
		t.Fatal("Sync() error = nil, want send failure")
	}
	if st.LastMessageID != "" {
		t.Errorf("LastMessageID = %q, want empty after failed send", st.LastMessageID)
	}
}

func TestSync_FetchTransportFailureReposts(t *testing.T) {
	sink := &fakeSink{fetchErr: errors.New("connection reset")}
	r := New(sink, testLogger())
	st := &State{Destination: "-100123", LastMessageID: "42"}

	if err := r.Sync(context.Background(), st, view.Payload{Body: "body"}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if st.LastMessageID == "42" || st.LastMessageID == "" {
		t.Errorf("LastMessageID = %q, want a fresh id", st.LastMessageID)
	}
}

func TestPurge_SwallowsErrors(t *testing.T) {
	sink := &fakeSink{purgeErr: errors.New("forbidden")}
	r := New(sink, testLogger())

	// must not panic or propagate
	r.Purge(context.Background(), &State{Destination: "-100123"})
	if len(sink.calls) != 1 || sink.calls[0] != "purge" {
		t.Errorf("calls = %v, want a single purge", sink.calls)
	}
}
