package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/webagent/core/protocol"
	"github.com/tailored-agentic-units/webagent/kernel"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Procedure paths of the agent service.
const (
	ServiceName      = "webagent.v1.AgentService"
	RunTurnProcedure = "/" + ServiceName + "/RunTurn"
	HistoryProcedure = "/" + ServiceName + "/History"
	ChatPath         = "/ws"
)

const shutdownTimeout = 5 * time.Second

// Agent is the kernel surface the server needs. *kernel.Kernel satisfies it.
type Agent interface {
	Run(ctx context.Context, sessionID, text string) (*kernel.Result, error)
	History(sessionID string) ([]protocol.Message, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for connection and request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server serves an Agent over Connect and WebSocket.
type Server struct {
	agent  Agent
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a Server for agent.
func New(agent Agent, opts ...Option) *Server {
	s := &Server{
		agent:  agent,
		logger: slog.Default(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.Handle(RunTurnProcedure, connect.NewUnaryHandler(RunTurnProcedure, s.runTurn))
	s.mux.Handle(HistoryProcedure, connect.NewUnaryHandler(HistoryProcedure, s.history))
	s.mux.HandleFunc(ChatPath, s.handleChat)

	return s
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webagent server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) runTurn(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	fields := req.Msg.GetFields()
	sessionID := fields["session_id"].GetStringValue()
	text := fields["text"].GetStringValue()
	if strings.TrimSpace(text) == "" {
		return nil, toConnectError(ErrMissingText)
	}

	result, err := s.agent.Run(ctx, sessionID, text)
	if err != nil {
		s.logger.Warn("turn failed", "session_id", sessionID, "error", err)
		return nil, toConnectError(err)
	}

	msg, err := structpb.NewStruct(map[string]any{
		"session_id":  result.SessionID,
		"text":        result.Response,
		"round_trips": result.RoundTrips,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func (s *Server) history(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	sessionID := req.Msg.GetFields()["session_id"].GetStringValue()
	if sessionID == "" {
		return nil, toConnectError(ErrMissingSession)
	}

	messages, err := s.agent.History(sessionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	list, err := encodeMessages(messages)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(sessionID),
		"messages":   structpb.NewListValue(list),
	}}
	return connect.NewResponse(msg), nil
}

// encodeMessages converts messages to a structpb list through their JSON
// form, so the wire shape matches protocol.Message's JSON encoding.
func encodeMessages(messages []protocol.Message) (*structpb.ListValue, error) {
	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages: %w", err)
	}
	var generic []any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to encode messages: %w", err)
	}
	return structpb.NewList(generic)
}

func decodeMessages(list *structpb.ListValue) ([]protocol.Message, error) {
	data, err := json.Marshal(list.AsSlice())
	if err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	var messages []protocol.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
