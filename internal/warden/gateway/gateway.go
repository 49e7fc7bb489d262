// Package gateway routes inbound chat text into the session coordinator.
// The decision is one-way: when a session is awaiting a password the text is
// an attempt and the outcome travels back through the notification sink, not
// the inbound reply path; otherwise the sender gets a fixed notice on the
// reply path and nothing else happens.
package gateway

import (
	"context"
	"errors"
	"log"
	"strings"

	"doorwarden/internal/warden/session"
	"doorwarden/internal/warden/types"
)

const idleNotice = "No motion detected yet. Approach the sensor, then send the password."

// Submitter is the coordinator surface the gateway needs.
type Submitter interface {
	Submit(ctx context.Context, att types.AccessAttempt) (types.Outcome, error)
}

// ReplyFunc answers on the inbound message's reply path.
type ReplyFunc func(text string) error

type Gateway struct {
	sessions Submitter
	logger   *log.Logger
}

func New(sessions Submitter, logger *log.Logger) *Gateway {
	return &Gateway{sessions: sessions, logger: logger}
}

// HandleText feeds one inbound message into the access flow.  Text is
// trimmed of surrounding whitespace; no other validation is applied.
func (g *Gateway) HandleText(ctx context.Context, text, senderID string, reply ReplyFunc) {
	att := types.AccessAttempt{Text: strings.TrimSpace(text), SenderID: senderID}

	outcome, err := g.sessions.Submit(ctx, att)
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		if reply == nil {
			return
		}
		if err := reply(idleNotice); err != nil {
			g.logger.Printf("reply to %s: %v", senderID, err)
		}
	case err != nil:
		g.logger.Printf("attempt from %s: %v", senderID, err)
	default:
		g.logger.Printf("attempt from %s: %s", senderID, outcome)
	}
}
