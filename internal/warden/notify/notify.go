// Package notify delivers best-effort outbound alerts to the remote party.
// Every caller treats delivery failure as log-and-continue; a dropped
// notification never affects the access sequence that triggered it.
package notify

import (
	"context"
	"log"
)

// Sink pushes a message to a user outside any inbound reply path.
type Sink interface {
	Push(ctx context.Context, userID, text string) error
}

// LogSink writes notifications to the process log.  Used in dev mode and in
// tests, where no messaging transport is configured.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Push(_ context.Context, userID, text string) error {
	s.logger.Printf("notify %s: %s", userID, text)
	return nil
}

func (s *LogSink) Reply(_ context.Context, replyToken, text string) error {
	s.logger.Printf("reply %s: %s", replyToken, text)
	return nil
}
