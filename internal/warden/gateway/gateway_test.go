package gateway_test

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"doorwarden/internal/warden/gateway"
	"doorwarden/internal/warden/session"
	"doorwarden/internal/warden/types"
)

type fakeSubmitter struct {
	outcome  types.Outcome
	err      error
	attempts []types.AccessAttempt
}

func (f *fakeSubmitter) Submit(_ context.Context, att types.AccessAttempt) (types.Outcome, error) {
	f.attempts = append(f.attempts, att)
	return f.outcome, f.err
}

type replyRecorder struct {
	texts []string
	err   error
}

func (r *replyRecorder) reply(text string) error {
	r.texts = append(r.texts, text)
	return r.err
}

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestHandleText_ActiveSession_ForwardsTrimmedAttempt(t *testing.T) {
	sub := &fakeSubmitter{outcome: types.OutcomeGranted}
	rec := &replyRecorder{}
	g := gateway.New(sub, silentLogger())

	g.HandleText(context.Background(), "  1234\n", "U1", rec.reply)

	if len(sub.attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(sub.attempts))
	}
	if sub.attempts[0].Text != "1234" {
		t.Errorf("expected trimmed text, got %q", sub.attempts[0].Text)
	}
	if sub.attempts[0].SenderID != "U1" {
		t.Errorf("expected sender U1, got %q", sub.attempts[0].SenderID)
	}
	if len(rec.texts) != 0 {
		t.Errorf("outcome travels via the sink, not the reply path; got replies %v", rec.texts)
	}
}

func TestHandleText_NoSession_RepliesNotice(t *testing.T) {
	sub := &fakeSubmitter{err: session.ErrNoActiveSession}
	rec := &replyRecorder{}
	g := gateway.New(sub, silentLogger())

	g.HandleText(context.Background(), "1234", "U1", rec.reply)

	if len(rec.texts) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(rec.texts))
	}
	if !strings.Contains(rec.texts[0], "sensor") {
		t.Errorf("expected the approach-the-sensor notice, got %q", rec.texts[0])
	}
}

func TestHandleText_NoSession_NilReply_NoPanic(t *testing.T) {
	sub := &fakeSubmitter{err: session.ErrNoActiveSession}
	g := gateway.New(sub, silentLogger())

	g.HandleText(context.Background(), "1234", "U1", nil)
}

func TestHandleText_ReplyFailure_Swallowed(t *testing.T) {
	sub := &fakeSubmitter{err: session.ErrNoActiveSession}
	rec := &replyRecorder{err: errors.New("transport down")}
	g := gateway.New(sub, silentLogger())

	g.HandleText(context.Background(), "1234", "U1", rec.reply)

	if len(rec.texts) != 1 {
		t.Errorf("expected the reply to be attempted once, got %d", len(rec.texts))
	}
}
