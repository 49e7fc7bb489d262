package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"doorwarden/internal/warden/gateway"
)

// WebhookParser verifies the webhook signature and decodes events.  The LINE
// SDK client satisfies this; tests can substitute their own.
type WebhookParser interface {
	ParseRequest(r *http.Request) ([]*linebot.Event, error)
}

// Replier answers on an inbound message's reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

type Dependencies struct {
	Logger  *log.Logger
	Addr    string
	Parser  WebhookParser
	Replier Replier
	Gateway *gateway.Gateway
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	parser     WebhookParser
	replier    Replier
	gateway    *gateway.Gateway
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:  d.Logger,
		mux:     mux,
		parser:  d.Parser,
		replier: d.Replier,
		gateway: d.Gateway,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /callback", s.handleCallback)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleIndex is the liveness endpoint.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("doorwarden running"))
}

// handleCallback receives the signed webhook body.  Signature verification
// is the SDK's job; a body that fails it gets a 400 and no session impact.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	events, err := s.parser.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			writeError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "unreadable webhook body")
		return
	}

	for _, ev := range events {
		if ev.Type != linebot.EventTypeMessage {
			continue
		}
		msg, ok := ev.Message.(*linebot.TextMessage)
		if !ok {
			continue
		}

		var senderID string
		if ev.Source != nil {
			senderID = ev.Source.UserID
		}
		replyToken := ev.ReplyToken

		s.gateway.HandleText(r.Context(), msg.Text, senderID, func(text string) error {
			return s.replier.Reply(r.Context(), replyToken, text)
		})
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: msg})
}
